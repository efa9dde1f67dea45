package grid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelSheet adapts the first worksheet of an xlsx workbook to the Sheet
// interface. The whole sheet is materialized up front with raw cell values so
// that numeric cells (including date serials) keep their underlying value.
type ExcelSheet struct {
	name string
	rows [][]string
	cols int
}

// OpenWorkbook opens the workbook at path and loads its first sheet.
func OpenWorkbook(path string) (*ExcelSheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	name := sheets[0]

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", name, err)
	}

	s := &ExcelSheet{name: name, rows: rows}
	for _, row := range rows {
		if len(row) > s.cols {
			s.cols = len(row)
		}
	}
	return s, nil
}

// Name returns the worksheet name.
func (s *ExcelSheet) Name() string {
	return s.name
}

// Cell implements Sheet.
func (s *ExcelSheet) Cell(row, col int) (Cell, error) {
	if row < 0 || col < 0 || row >= len(s.rows) || col >= s.cols {
		return Cell{}, ErrCellNotFound
	}
	if col >= len(s.rows[row]) {
		return Cell{}, nil
	}
	raw := s.rows[row][col]
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{}, nil
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Cell{Kind: Number, Number: v, Text: trimmed}, nil
	}
	return Cell{Kind: Text, Text: raw}, nil
}
