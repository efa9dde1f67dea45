package parser

import (
	"strings"

	"github.com/Mirshida/sf-dta/internal/grid"
	"github.com/Mirshida/sf-dta/internal/model"
)

// Interval-state aliases as they appear on hand-maintained cards. The first
// matching table wins; a token in none of them drops the whole row.
var (
	greenAliases  = []string{"G", "G+G", "G*", "G G", "FY", "F", "G+F", "U", "T", "G + G", "G + F", "ON"}
	yellowAliases = []string{"Y", "SY"}
	redAliases    = []string{"R", "RH", "OFF", "FR"}
)

// movementExclusions drop pedestrian, rail and crossing rows from the
// phasing section before any state parsing.
var movementExclusions = []string{"PEDS ", "PED ", "XING ", "MUNI ", "TRAIN ", "FLASHING ", " MUNI", "RAIL"}

func isExcludedMovement(label string) bool {
	if label == "" || label == "MUNI" {
		return true
	}
	for _, kw := range movementExclusions {
		if strings.Contains(label, kw) {
			return true
		}
	}
	return false
}

func normalizeState(token string) (model.IntervalState, bool) {
	if token == "" {
		return "", true
	}
	for _, alias := range greenAliases {
		if token == alias {
			return model.StateGreen, true
		}
	}
	for _, alias := range yellowAliases {
		if token == alias {
			return model.StateYellow, true
		}
	}
	for _, alias := range redAliases {
		if token == alias {
			return model.StateRed, true
		}
	}
	return "", false
}

// fillStateGaps fills blank cells from the nearest non-blank neighbor,
// forward then backward: a movement's state persists across reporting gaps.
func fillStateGaps(states []model.IntervalState) {
	for i := 1; i < len(states); i++ {
		if states[i] == "" && states[i-1] != "" {
			states[i] = states[i-1]
		}
	}
	for i := len(states) - 2; i >= 0; i-- {
		if states[i] == "" && states[i+1] != "" {
			states[i] = states[i+1]
		}
	}
}

// ParseMovementGrid reads the movement-group rows between the STREET header
// and the period header, normalizes each interval cell to G/Y/R, fills gaps
// and validates the grid against the interval count fixed by the operating
// periods.
func ParseMovementGrid(s grid.Sheet, card *model.SignalCard) error {
	if card.PhaseHeader.Row < 0 {
		return model.NewParsingError("cannot parse the phasing data: phase section not located")
	}
	if card.PeriodHeader.Row < 0 {
		return model.NewParsingError("cannot parse the phasing data: signal interval section not located")
	}
	if card.FirstStateCol < 0 {
		return model.NewParsingError("cannot parse the phasing data: first interval column not located")
	}
	if card.LastStateCol < 0 {
		return model.NewParsingError("cannot parse the phasing data: last interval column not located")
	}

	var movements []string
	var rows [][]model.IntervalState

	for i := card.PhaseHeader.Row + 1; i < card.PeriodHeader.Row; i++ {
		labelCell, err := s.Cell(i, card.PhaseHeader.Col)
		if err != nil {
			continue
		}
		label := strings.ToUpper(strings.TrimSpace(cellText(labelCell)))
		if isExcludedMovement(label) {
			continue
		}

		states := make([]model.IntervalState, 0, card.LastStateCol-card.FirstStateCol+1)
		valid := true
		for j := card.FirstStateCol; j <= card.LastStateCol; j++ {
			c, err := s.Cell(i, j)
			if err != nil {
				c = grid.Cell{}
			}
			token := strings.ToUpper(strings.TrimSpace(cellText(c)))
			state, ok := normalizeState(token)
			if !ok {
				// One unreadable token poisons the row, not the card.
				valid = false
				break
			}
			states = append(states, state)
		}
		if !valid {
			continue
		}
		allBlank := true
		for _, st := range states {
			if st != "" {
				allBlank = false
				break
			}
		}
		if allBlank {
			continue
		}

		movements = append(movements, label)
		rows = append(rows, states)
	}

	if len(rows) == 0 {
		return model.NewParsingError("cannot parse the phasing data")
	}
	if len(rows[0]) == 0 {
		return model.NewParsingError("cannot parse the phasing data: the number of phase intervals is zero")
	}
	if len(rows) <= 1 {
		return model.NewParsingError("signal has less than two group movements")
	}
	for i := 0; i < len(rows)-1; i++ {
		if len(rows[i]) != len(rows[i+1]) {
			return model.NewParsingError("cannot parse the phasing data: different number of phasing steps for different movements")
		}
	}
	if card.NumTimeIntervals() != len(rows[0]) {
		return model.NewParsingError("the number of phase states %d is not the same with the number of signal intervals %d",
			len(rows[0]), card.NumTimeIntervals())
	}

	for i := range rows {
		fillStateGaps(rows[i])
		for j, st := range rows[i] {
			if st == "" {
				return model.NewParsingError("group movement %s: cannot interpret the phase status in interval %d", movements[i], j+1)
			}
		}
	}

	g, err := model.NewMovementGrid(movements, rows)
	if err != nil {
		return model.NewParsingError("cannot parse the phasing data: %v", err)
	}
	card.Grid = g
	return nil
}
