// =============================================================================
// OC Consolidator - Value Normalization
// =============================================================================
//
// This module turns raw spreadsheet cells into typed record values. The rules
// follow the Chilean conventions the order spreadsheets are written in:
//
//   - Dates are day-month-year ("05-03-2024" is the 5th of March).
//   - Text amounts use "." as thousands separator and "," as decimal
//     separator ("$1.234.567,89").
//   - Native numeric cells are taken as they are. Dates exported to CSV as
//     excel serials ("45356") are decoded like numeric cells.
//
// None of these functions fail. Unparseable dates fall back to today and
// unparseable amounts fall back to zero; the extractor's retention rules then
// decide whether the row survives.
//
// =============================================================================

package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/oc-consolidator/internal/sheet"
	"github.com/ginjaninja78/oc-consolidator/internal/types"
)

// =============================================================================
// DATE NORMALIZATION
// =============================================================================

var (
	// D-M-YYYY or DD/MM/YYYY, optionally followed by a time of day.
	dayMonthYear = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})[-/](\d{4})(?:\s+.*)?$`)

	// YYYY-MM-DD, optionally followed by a time of day.
	isoDate = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:[T\s].*)?$`)

	// An excel serial written out as text, as CSV exports do.
	serialText = regexp.MustCompile(`^\d{5}(?:\.\d+)?$`)
)

// Text serials outside this window (1950s to 2110s) are not dates.
const (
	minTextSerial = 20000
	maxTextSerial = 80000
)

// NormalizeDate converts a date cell to "YYYY-MM-DD".
//
// PARAMETERS:
//   - cell: The raw cell.
//   - date1904: Whether the workbook counts serial dates from 1904.
//   - today: The fallback date for empty or unparseable values.
//
// RETURNS:
//   - The ISO date string.
//   - Whether the cell was parsed (false means today was used).
func NormalizeDate(cell sheet.Cell, date1904 bool, today time.Time) (string, bool) {
	fallback := today.Format(types.DateLayout)

	switch cell.Kind {
	case sheet.CellNumber:
		if cell.Number <= 0 {
			return fallback, false
		}
		t, err := excelize.ExcelDateToTime(cell.Number, date1904)
		if err != nil {
			return fallback, false
		}
		return t.Format(types.DateLayout), true

	case sheet.CellText:
		text := strings.TrimSpace(cell.Text)
		if serialText.MatchString(text) {
			return serialTextDate(text, date1904, fallback)
		}
		if m := dayMonthYear.FindStringSubmatch(text); m != nil {
			if d, ok := buildDate(m[3], m[2], m[1]); ok {
				return d, true
			}
			return fallback, false
		}
		if m := isoDate.FindStringSubmatch(text); m != nil {
			if d, ok := buildDate(m[1], m[2], m[3]); ok {
				return d, true
			}
		}
	}

	return fallback, false
}

func serialTextDate(text string, date1904 bool, fallback string) (string, bool) {
	serial, err := strconv.ParseFloat(text, 64)
	if err != nil || serial < minTextSerial || serial >= maxTextSerial {
		return fallback, false
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return fallback, false
	}
	return t.Format(types.DateLayout), true
}

// buildDate validates the parts and formats them. "31-02-2024" is rejected
// rather than rolled over into March.
func buildDate(year, month, day string) (string, bool) {
	y, errY := strconv.Atoi(year)
	m, errM := strconv.Atoi(month)
	d, errD := strconv.Atoi(day)
	if errY != nil || errM != nil || errD != nil {
		return "", false
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return "", false
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m {
		return "", false
	}
	return t.Format(types.DateLayout), true
}

// =============================================================================
// AMOUNT NORMALIZATION
// =============================================================================

// NormalizeAmount converts an amount cell to a decimal.
//
// Numeric cells are used directly. Text cells lose their currency markers
// and whitespace; every "." is then dropped as a thousands separator and ","
// becomes the decimal point. What remains must be a plain number, otherwise
// the amount is zero.
//
// EXAMPLES:
//   "$1.234.567,89"     -> 1234567.89
//   "CLP 50.000"        -> 50000
//   "50.000 (2 cuotas)" -> 0
//   "abc"               -> 0
func NormalizeAmount(cell sheet.Cell) (decimal.Decimal, bool) {
	switch cell.Kind {
	case sheet.CellNumber:
		return decimal.NewFromFloat(cell.Number), true

	case sheet.CellText:
		cleaned := currencyMarker.ReplaceAllString(cell.Text, "")
		cleaned = strings.Join(strings.Fields(cleaned), "")
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
		if !plainAmount.MatchString(cleaned) {
			return decimal.Zero, false
		}
		amount, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Zero, false
		}
		return amount, true
	}

	return decimal.Zero, false
}

var (
	// Currency symbols and codes seen in the order spreadsheets. US$ must
	// match before $.
	currencyMarker = regexp.MustCompile(`(?i)US\$|USD|CLP|EUR|\$|€`)

	plainAmount = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// =============================================================================
// TEXT NORMALIZATION
// =============================================================================

// NormalizeText stringifies and trims a cell. Numbers render without
// trailing zeros; empty cells are "".
func NormalizeText(cell sheet.Cell) string {
	return strings.TrimSpace(cell.String())
}
