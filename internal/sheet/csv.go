// =============================================================================
// OC Consolidator - CSV Reader
// =============================================================================
//
// Some teams export the order spreadsheets as delimited text instead of XLSX.
// This module decodes such files into the same Grid the XLSX reader produces,
// so header detection and extraction do not care where the data came from.
//
// Every non-blank CSV value becomes a text cell. Amounts and dates are then
// handled by the text normalization rules (day-month-year dates, "." as
// thousands separator, "," as decimal separator).
//
// =============================================================================

package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/oc-consolidator/internal/config"
)

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// ReadCSV decodes delimited text into a Grid.
//
// PARAMETERS:
//   - data: The raw file content.
//   - settings: Delimiter and encoding settings.
//
// RETURNS:
//   - The decoded Grid.
//   - An error wrapping ErrUnreadableFile when the content is empty or malformed.
func ReadCSV(data []byte, settings config.CSVSettings) (Grid, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Grid{}, fmt.Errorf("%w: file is empty", ErrUnreadableFile)
	}

	reader := csv.NewReader(decodingReader(bytes.NewReader(data), settings.Encoding))
	configureReader(reader, settings)

	records, err := reader.ReadAll()
	if err != nil {
		return Grid{}, fmt.Errorf("%w: failed to read CSV: %v", ErrUnreadableFile, err)
	}

	grid := Grid{Rows: make([]Row, len(records))}
	for i, record := range records {
		row := make(Row, len(record))
		for j, value := range record {
			row[j] = TextCell(value)
		}
		grid.Rows[i] = row
	}

	return grid, nil
}

// Decode picks the reader from the file name extension. ".csv" and ".txt"
// are read as delimited text; everything else is treated as XLSX.
func Decode(name string, data []byte, settings config.CSVSettings) (Grid, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return ReadCSV(data, settings)
	default:
		return Read(data)
	}
}

// ReadFile loads a spreadsheet from disk and decodes it with Decode.
func ReadFile(path string, settings config.CSVSettings) (Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Grid{}, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return Decode(path, data, settings)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// configureReader applies the delimiter settings to the CSV reader.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Spreadsheet exports are frequently ragged and loosely quoted.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// decodingReader converts legacy single-byte encodings to UTF-8 and strips
// a UTF-8 byte order mark.
func decodingReader(r io.Reader, encoding string) io.Reader {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(encoding), "_", "-")) {
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case "WINDOWS-1252", "CP1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder())
	default:
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	}
}
