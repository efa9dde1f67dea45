package parser

import (
	"errors"
	"strings"

	"github.com/Mirshida/sf-dta/internal/grid"
	"github.com/Mirshida/sf-dta/internal/model"
)

// Bounded search windows. Cards drift a few rows between districts, so every
// scan is windowed rather than open-ended.
const (
	topLeftWindow   = 10
	streetScanRows  = 40
	pedScanRows     = 60
	periodScanRows  = 80
	stateColumnScan = 10
)

const phaseSectionKeyword = "STREET"

// pedRowKeywords mark pedestrian/rail rows inside the phasing section. The
// trailing spaces are deliberate: they distinguish "PED " from "PEDESTAL".
var pedRowKeywords = []string{"PEDS ", "PED ", "XING ", "MUNI ", "TRAIN ", "FLASHING "}

// cellText returns the cell rendered the way a human reads it: text verbatim,
// numbers via their raw representation.
func cellText(c grid.Cell) string {
	switch c.Kind {
	case grid.Text:
		return c.Text
	case grid.Number:
		return c.Text
	default:
		return ""
	}
}

// FindTopLeft locates the first non-blank cell in the top-left window, which
// holds the intersection name.
func FindTopLeft(s grid.Sheet) (grid.Coord, error) {
	for i := 0; i < topLeftWindow; i++ {
		for j := 0; j < topLeftWindow; j++ {
			c, err := s.Cell(i, j)
			if err != nil {
				continue
			}
			if !c.IsBlank() {
				return grid.Coord{Row: i, Col: j}, nil
			}
		}
	}
	return grid.Coord{}, model.NewParsingError("cannot find the top left cell containing the intersection name")
}

// IntersectionName reads the raw intersection name at the anchor.
func IntersectionName(s grid.Sheet, topLeft grid.Coord) string {
	c, err := s.Cell(topLeft.Row, topLeft.Col)
	if err != nil {
		return ""
	}
	return strings.ToUpper(cellText(c))
}

// FindPhaseHeader scans down from the anchor for the STREET keyword that
// starts the phase-sequencing section. Running off the sheet returns ok=false;
// exhausting the window inside the sheet is a parsing failure.
func FindPhaseHeader(s grid.Sheet, topLeft grid.Coord) (grid.Coord, bool, error) {
	for row := 0; row < streetScanRows; row++ {
		coord := grid.Coord{Row: topLeft.Row + row, Col: topLeft.Col}
		c, err := s.Cell(coord.Row, coord.Col)
		if err != nil {
			if errors.Is(err, grid.ErrCellNotFound) {
				return grid.Coord{}, false, nil
			}
			return grid.Coord{}, false, err
		}
		value := strings.ToUpper(strings.TrimSpace(cellText(c)))
		if strings.HasPrefix(value, phaseSectionKeyword) {
			return coord, true, nil
		}
	}
	return grid.Coord{}, false, model.NewParsingError("cannot find the start of the phasing section")
}

// FindPedPhaseRow scans down for a pedestrian-phase row. Pedestrian rows are
// optional, so a miss is not a failure.
func FindPedPhaseRow(s grid.Sheet, topLeft grid.Coord) (int, bool) {
	for row := 0; row < pedScanRows; row++ {
		c, err := s.Cell(topLeft.Row+row, topLeft.Col)
		if err != nil {
			return 0, false
		}
		value := strings.ToUpper(strings.TrimSpace(cellText(c)))
		for _, kw := range pedRowKeywords {
			if strings.Contains(value, kw) {
				return topLeft.Row + row, true
			}
		}
	}
	return 0, false
}

// FindPeriodHeader scans down for the row holding the CSO or DIAL keyword
// that starts the signal-interval section.
func FindPeriodHeader(s grid.Sheet, topLeft grid.Coord) (grid.Coord, bool, error) {
	for row := 0; row < periodScanRows; row++ {
		coord := grid.Coord{Row: topLeft.Row + row, Col: topLeft.Col}
		c, err := s.Cell(coord.Row, coord.Col)
		if err != nil {
			if errors.Is(err, grid.ErrCellNotFound) {
				return grid.Coord{}, false, nil
			}
			return grid.Coord{}, false, err
		}
		value := strings.ToUpper(strings.TrimSpace(cellText(c)))
		if strings.Contains(value, "CSO") || strings.Contains(value, "DIAL") {
			return coord, true, nil
		}
	}
	return grid.Coord{}, false, model.NewParsingError("cannot find the start of the signal interval section marked by CSO or DIAL")
}

// FindFirstStateColumn locates the column holding interval 1, identified by a
// numeric 1 in the phase-header row.
func FindFirstStateColumn(s grid.Sheet, phaseHeader grid.Coord) (int, error) {
	for col := phaseHeader.Col + 1; col < phaseHeader.Col+stateColumnScan; col++ {
		c, err := s.Cell(phaseHeader.Row, col)
		if err != nil {
			continue
		}
		if c.Kind == grid.Number && c.Number == 1 {
			return col, nil
		}
	}
	return 0, model.NewParsingError("cannot locate the first column of the phasing data identified by the keyword 1 in the STREET row")
}
