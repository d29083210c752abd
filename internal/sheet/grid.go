// =============================================================================
// OC Consolidator - Spreadsheet Grid
// =============================================================================
//
// A Grid is the raw, untyped content of one sheet: ordered rows of cells that
// are either empty, text, or a native number. Rows may be ragged; reading
// past the end of a row yields an empty cell.
//
// No semantic validation happens at this level. Header detection, column
// mapping and value normalization all operate on top of a Grid.
//
// =============================================================================

package sheet

import (
	"strconv"
	"strings"
)

// =============================================================================
// CELL
// =============================================================================

// CellKind tells how a cell was stored in the source file.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell is a single heterogeneous spreadsheet value.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// TextCell builds a text cell, or an empty cell when s is blank.
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell builds a numeric cell.
func NumberCell(n float64) Cell {
	return Cell{Kind: CellNumber, Number: n}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// String renders the cell as text. Numbers use the shortest representation
// without trailing zeros, so 100 renders as "100" and 12.5 as "12.5".
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return ""
	}
}

// =============================================================================
// ROW AND GRID
// =============================================================================

// Row is an ordered sequence of cells.
type Row []Cell

// IsEmpty reports whether every cell of the row is empty.
func (r Row) IsEmpty() bool {
	return r.NonEmptyCount() == 0
}

// NonEmptyCount returns how many cells hold a value.
func (r Row) NonEmptyCount() int {
	count := 0
	for _, cell := range r {
		if !cell.IsEmpty() {
			count++
		}
	}
	return count
}

// Cell returns the cell at col, or an empty cell when col is out of range.
func (r Row) Cell(col int) Cell {
	if col < 0 || col >= len(r) {
		return Cell{}
	}
	return r[col]
}

// Grid is the decoded content of the first sheet of a workbook.
type Grid struct {
	// Sheet is the name of the sheet that was read. Empty for CSV input.
	Sheet string

	// Date1904 is true when the workbook counts serial dates from 1904.
	Date1904 bool

	Rows []Row
}

// Row returns the row at index, or nil when index is out of range.
func (g Grid) Row(index int) Row {
	if index < 0 || index >= len(g.Rows) {
		return nil
	}
	return g.Rows[index]
}

// Cell returns the cell at (row, col), or an empty cell when out of range.
func (g Grid) Cell(row, col int) Cell {
	return g.Row(row).Cell(col)
}

// Len returns the number of rows.
func (g Grid) Len() int {
	return len(g.Rows)
}
