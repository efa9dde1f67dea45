package parser

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Mirshida/sf-dta/internal/grid"
	"github.com/Mirshida/sf-dta/internal/model"
)

// The signal-interval section holds at most this many CSO data rows below the
// header. Reading a fixed window instead of stopping at the first empty line
// picks up every CSO on cards with gaps between rows.
const periodDataRows = 10

// coerceCSO renders the leading CSO cell: numeric cells become their integer
// string, text cells are used verbatim.
func coerceCSO(c grid.Cell) string {
	if c.Kind == grid.Number {
		return strconv.Itoa(int(c.Number))
	}
	return strings.TrimSpace(c.Text)
}

// numericText renders a cycle/offset cell for float parsing and dash checks.
func numericText(c grid.Cell) string {
	if c.Kind == grid.Number {
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	}
	return strings.TrimSpace(c.Text)
}

// ParseOperatingPeriods reads the CSO rows below the period header: for each
// row the CSO code, cycle and offset (with the dash/FREE actuation fallbacks)
// and the raw interval durations. Reading a row's durations stops at the
// first blank cell, which also fixes the card's shared interval count and
// last state column.
func ParseOperatingPeriods(s grid.Sheet, card *model.SignalCard) error {
	if card.PeriodHeader.Row < 0 || card.FirstStateCol < 0 {
		return nil
	}
	startRow, startCol := card.PeriodHeader.Row, card.PeriodHeader.Col

	for i := startRow + 1; i < startRow+1+periodDataRows; i++ {
		lead, err := s.Cell(i, startCol)
		if err != nil {
			if errors.Is(err, grid.ErrCellNotFound) {
				break
			}
			return err
		}
		if lead.IsBlank() {
			continue
		}
		leadText := strings.TrimSpace(cellText(lead))
		if strings.Contains(leadText, "NOTE") || strings.Contains(leadText, "*") {
			break
		}

		var row []grid.Cell
		for j := startCol; j < card.FirstStateCol; j++ {
			c, err := s.Cell(i, j)
			if err != nil {
				if errors.Is(err, grid.ErrCellNotFound) {
					break
				}
				return err
			}
			if !c.IsBlank() {
				row = append(row, c)
			}
		}

		// The row should carry CSO, CYCLE, OFFSET; short rows default the
		// missing trailing fields to dashes.
		cso := coerceCSO(row[0])
		var cycleText, offsetText string
		switch len(row) {
		case 3:
			cycleText = numericText(row[1])
			offsetText = numericText(row[2])
		case 2:
			cycleText = numericText(row[1])
			offsetText = "-"
		case 1:
			cycleText = "-"
			offsetText = "-"
		default:
			return model.NewParsingError("cannot parse the cso,cycle,offset from row %d: %d values", i, len(row))
		}

		period := model.NewOperatingPeriod(cso)
		switch {
		case strings.HasSuffix(cso, "-") && len(cso) == 3 && cycleText != "--":
			period.Offset = 0
			if strings.HasSuffix(cso, "--") {
				period.Cycle = 0
				period.Actuated = true
			} else {
				cycle, err := strconv.ParseFloat(cycleText, 64)
				if err != nil {
					return model.NewParsingError("could not parse the cycle from row %d: %v", i, err)
				}
				period.Cycle = cycle
			}
		case strings.HasSuffix(cso, "--") && len(cso) == 4 && cycleText == "--":
			period.Offset = 0
			period.Actuated = true
		case strings.EqualFold(cso, "FREE"):
			period.Actuated = true
		default:
			if strings.Contains(cycleText, "-") {
				period.Actuated = true
			} else {
				cycle, err := strconv.ParseFloat(cycleText, 64)
				if err != nil {
					return model.NewParsingError("could not parse the cso,cycle,offset from row %d: %v", i, err)
				}
				period.Cycle = cycle
			}
			if strings.Contains(offsetText, "-") {
				period.Offset = 0
			} else {
				offset, err := strconv.ParseFloat(offsetText, 64)
				if err != nil {
					return model.NewParsingError("could not parse the cso,cycle,offset from row %d: %v", i, err)
				}
				period.Offset = offset
			}
		}

		durations, lastCol, err := readIntervalDurations(s, i, card.FirstStateCol, cso)
		if err != nil {
			return err
		}
		if card.LastStateCol < 0 {
			card.LastStateCol = lastCol
		}
		period.Durations = durations
		card.AddPeriod(period)
	}
	return nil
}

// readIntervalDurations reads duration cells until the first blank or the
// sheet edge and returns them with the last populated column.
func readIntervalDurations(s grid.Sheet, row, firstCol int, cso string) ([]float64, int, error) {
	var durations []float64
	j := firstCol
	for {
		c, err := s.Cell(row, j)
		if err != nil {
			if errors.Is(err, grid.ErrCellNotFound) {
				return durations, j - 1, nil
			}
			return nil, 0, err
		}
		if c.IsBlank() {
			return durations, j - 1, nil
		}
		if c.Kind != grid.Number {
			return nil, 0, model.NewTimingError("the signal intervals are not numbers in row with CSO=%s: %q at %d,%d", cso, cellText(c), row, j)
		}
		durations = append(durations, c.Number)
		j++
	}
}
