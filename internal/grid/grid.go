package grid

import (
	"errors"
	"strconv"
	"strings"
)

// ErrCellNotFound is returned when a coordinate lies outside the sheet bounds.
var ErrCellNotFound = errors.New("cell outside sheet bounds")

// Kind classifies a cell value.
type Kind int

const (
	Empty Kind = iota
	Text
	Number
)

// Cell is a single spreadsheet cell value. Number cells carry the raw value,
// which for time-of-day cells is a spreadsheet date serial.
type Cell struct {
	Kind   Kind
	Text   string
	Number float64
}

// IsBlank reports whether the cell is empty or whitespace-only text.
func (c Cell) IsBlank() bool {
	if c.Kind == Empty {
		return true
	}
	if c.Kind == Text {
		return strings.TrimSpace(c.Text) == ""
	}
	return false
}

// Coord addresses a cell by zero-based row and column.
type Coord struct {
	Row int
	Col int
}

// Sheet provides cell lookup by row/column coordinates.
type Sheet interface {
	// Cell returns the value at the coordinate, or ErrCellNotFound when the
	// coordinate is outside the sheet bounds. Blank cells inside the bounds
	// are returned as Empty cells, not as errors.
	Cell(row, col int) (Cell, error)
}

// MemorySheet is an in-memory Sheet used by tests and small fixtures.
type MemorySheet struct {
	rows [][]Cell
	cols int
}

// NewMemorySheet builds a sheet from literal rows. Supported element types:
// string, float64, int and nil (empty cell).
func NewMemorySheet(rows [][]any) *MemorySheet {
	s := &MemorySheet{}
	for _, row := range rows {
		cells := make([]Cell, 0, len(row))
		for _, v := range row {
			switch val := v.(type) {
			case nil:
				cells = append(cells, Cell{})
			case string:
				if strings.TrimSpace(val) == "" {
					cells = append(cells, Cell{})
				} else {
					cells = append(cells, Cell{Kind: Text, Text: val})
				}
			case float64:
				cells = append(cells, Cell{Kind: Number, Number: val, Text: strconv.FormatFloat(val, 'f', -1, 64)})
			case int:
				cells = append(cells, Cell{Kind: Number, Number: float64(val), Text: strconv.Itoa(val)})
			default:
				cells = append(cells, Cell{})
			}
		}
		if len(cells) > s.cols {
			s.cols = len(cells)
		}
		s.rows = append(s.rows, cells)
	}
	return s
}

// Cell implements Sheet.
func (s *MemorySheet) Cell(row, col int) (Cell, error) {
	if row < 0 || col < 0 || row >= len(s.rows) || col >= s.cols {
		return Cell{}, ErrCellNotFound
	}
	if col >= len(s.rows[row]) {
		return Cell{}, nil
	}
	return s.rows[row][col], nil
}
