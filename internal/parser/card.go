package parser

import (
	"log/slog"

	"github.com/Mirshida/sf-dta/internal/grid"
	"github.com/Mirshida/sf-dta/internal/model"
)

// ParseCard parses one signal-card sheet into a SignalCard: anchor location,
// operating periods, weekday clock windows and the movement state grid. Any
// error is a card-level failure; the caller logs it and moves on.
func ParseCard(s grid.Sheet, fileName string, log *slog.Logger) (*model.SignalCard, error) {
	card := model.NewSignalCard(fileName)

	topLeft, err := FindTopLeft(s)
	if err != nil {
		return nil, err
	}
	card.TopLeft = topLeft
	card.Name = IntersectionName(s, topLeft)

	phaseHeader, hasPhaseHeader, err := FindPhaseHeader(s, topLeft)
	if err != nil {
		return nil, model.NewParsingError("unable to find the start of the phasing section in %s", fileName)
	}
	if hasPhaseHeader {
		card.PhaseHeader = phaseHeader
	}

	if row, ok := FindPedPhaseRow(s, topLeft); ok {
		card.PedPhaseRow = row
		card.HasPedPhase = true
	}

	periodHeader, ok, err := FindPeriodHeader(s, topLeft)
	if err != nil {
		return nil, err
	}
	if ok {
		card.PeriodHeader = periodHeader
	}

	if !hasPhaseHeader {
		return nil, model.NewParsingError("cannot locate the first column of the phasing data because the phase section has not been identified")
	}
	col, err := FindFirstStateColumn(s, card.PhaseHeader)
	if err != nil {
		return nil, err
	}
	card.FirstStateCol = col

	if err := ParseOperatingPeriods(s, card); err != nil {
		return nil, err
	}
	if err := ParseOperatingTimes(s, card, log); err != nil {
		return nil, err
	}
	if err := ParseMovementGrid(s, card); err != nil {
		return nil, err
	}
	return card, nil
}
