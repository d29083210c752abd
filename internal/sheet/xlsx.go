// =============================================================================
// OC Consolidator - XLSX Reader
// =============================================================================
//
// This module decodes XLSX workbooks into a Grid. Only the first sheet is
// read; any additional sheets are ignored.
//
// CELL TYPING:
//   Cells stored as shared or inline strings (and formula string results)
//   become text cells even when they look numeric, so "0012" stays "0012".
//   Every other non-empty cell whose raw value parses as a float becomes a
//   number cell. Dates are stored by Excel as serial numbers and therefore
//   arrive here as numbers.
//
// =============================================================================

package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnreadableFile is returned when the bytes are empty or are not a
// spreadsheet container.
var ErrUnreadableFile = errors.New("unreadable spreadsheet file")

// =============================================================================
// READER
// =============================================================================

// Read decodes XLSX bytes and returns the grid of the first sheet.
//
// PARAMETERS:
//   - data: The raw file content.
//
// RETURNS:
//   - The Grid of the first sheet.
//   - An error wrapping ErrUnreadableFile when the content cannot be decoded.
func Read(data []byte) (Grid, error) {
	if len(data) == 0 {
		return Grid{}, fmt.Errorf("%w: file is empty", ErrUnreadableFile)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Grid{}, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return Grid{}, fmt.Errorf("%w: workbook has no sheets", ErrUnreadableFile)
	}

	rawRows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return Grid{}, fmt.Errorf("%w: failed to read rows: %v", ErrUnreadableFile, err)
	}

	grid := Grid{
		Sheet:    sheetName,
		Date1904: uses1904(f),
		Rows:     make([]Row, len(rawRows)),
	}

	for i, raw := range rawRows {
		row := make(Row, len(raw))
		for j, value := range raw {
			row[j] = decodeCell(f, sheetName, i, j, value)
		}
		grid.Rows[i] = row
	}

	return grid, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// decodeCell types a single raw value using the cell's stored type.
func decodeCell(f *excelize.File, sheetName string, rowIndex, colIndex int, value string) Cell {
	if strings.TrimSpace(value) == "" {
		return Cell{}
	}

	axis, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+1)
	if err != nil {
		return TextCell(value)
	}

	cellType, err := f.GetCellType(sheetName, axis)
	if err != nil {
		return TextCell(value)
	}

	switch cellType {
	case excelize.CellTypeSharedString,
		excelize.CellTypeInlineString,
		excelize.CellTypeFormula,
		excelize.CellTypeBool,
		excelize.CellTypeError:
		return TextCell(value)
	}

	if n, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
		return NumberCell(n)
	}
	return TextCell(value)
}

// uses1904 reports whether the workbook uses the 1904 date system.
func uses1904(f *excelize.File) bool {
	props, err := f.GetWorkbookProps()
	if err != nil || props.Date1904 == nil {
		return false
	}
	return *props.Date1904
}
