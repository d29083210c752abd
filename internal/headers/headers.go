// Package headers finds the header row of an order spreadsheet and maps its
// columns to canonical fields using synonym dictionaries.
package headers

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ginjaninja78/oc-consolidator/internal/sheet"
)

// DefaultScanRows is how many leading rows Locate inspects by default.
const DefaultScanRows = 20

// minHeaderCells is the minimum number of non-empty cells a header row has.
const minHeaderCells = 3

// HeaderNotFoundError means no row within the scan window looked like a header.
type HeaderNotFoundError struct {
	ScannedRows int
	Groups      int
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("header row not found in the first %d rows (need at least %d of %d known columns)",
		e.ScannedRows, threshold(e.Groups), e.Groups)
}

// MissingColumnsError lists required fields no column mapped to.
type MissingColumnsError struct {
	Fields []Field
}

func (e *MissingColumnsError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return "required columns not found: " + strings.Join(names, ", ")
}

// Mapping is the column index of every field found in the header row.
type Mapping map[Field]int

// Index returns the column of f.
func (m Mapping) Index(f Field) (int, bool) {
	col, ok := m[f]
	return col, ok
}

// Require returns a *MissingColumnsError naming every absent field, in the
// order given.
func (m Mapping) Require(fields ...Field) error {
	var missing []Field
	for _, f := range fields {
		if _, ok := m[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Fields: missing}
	}
	return nil
}

// Normalize uppercases s, strips accents, trims it and collapses inner
// whitespace, so "  número  oc " becomes "NUMERO OC".
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(strings.ToUpper(stripped)), " ")
}

// Locate returns the index of the first row within the first maxRows rows
// that matches at least half of the dictionary's groups (rounded up) and has
// at least three non-empty cells. maxRows <= 0 means DefaultScanRows.
func Locate(grid sheet.Grid, dict Dictionary, maxRows int) (int, error) {
	if maxRows <= 0 {
		maxRows = DefaultScanRows
	}
	limit := min(maxRows, grid.Len())
	groups := compile(dict)
	need := threshold(len(groups))

	for i := 0; i < limit; i++ {
		row := grid.Row(i)
		if row.NonEmptyCount() < minHeaderCells {
			continue
		}

		cells := normalizedCells(row)
		matched := 0
		for _, g := range groups {
			if g.matchesAny(cells) {
				matched++
			}
		}
		if matched >= need {
			return i, nil
		}
	}

	return -1, &HeaderNotFoundError{ScannedRows: limit, Groups: len(groups)}
}

// MapColumns maps each field of dict to the first header cell whose
// normalized text equals one of its spellings. Unmatched fields are absent.
func MapColumns(header sheet.Row, dict Dictionary) Mapping {
	cells := normalizedCells(header)
	mapping := make(Mapping, len(dict))

	for _, g := range compile(dict) {
		for col, text := range cells {
			if text != "" && g.spellings[text] {
				mapping[g.field] = col
				break
			}
		}
	}

	return mapping
}

type compiledGroup struct {
	field     Field
	spellings map[string]bool
}

func (g compiledGroup) matchesAny(cells []string) bool {
	for _, text := range cells {
		if text != "" && g.spellings[text] {
			return true
		}
	}
	return false
}

func compile(dict Dictionary) []compiledGroup {
	groups := make([]compiledGroup, len(dict))
	for i, group := range dict {
		set := make(map[string]bool, len(group.Spelling))
		for _, s := range group.Spelling {
			set[Normalize(s)] = true
		}
		groups[i] = compiledGroup{field: group.Field, spellings: set}
	}
	return groups
}

func normalizedCells(row sheet.Row) []string {
	cells := make([]string, len(row))
	for i, cell := range row {
		cells[i] = Normalize(cell.String())
	}
	return cells
}

// threshold is ceil(groups / 2).
func threshold(groups int) int {
	return (groups + 1) / 2
}
