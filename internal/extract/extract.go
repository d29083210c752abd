// =============================================================================
// OC Consolidator - Record Extraction
// =============================================================================
//
// This module walks the data rows of a grid (everything after the header row)
// and builds typed records using a header mapping.
//
// PER-ROW PROCESSING:
//   1. Skip rows whose cells are all empty
//   2. Read every mapped field (a field without a column reads as empty)
//   3. Normalize dates, amounts and text
//   4. Keep the row only if it passes the retention rule:
//        main:   orderNumber, supplierName and amount > 0
//        detail: orderNumber and costCenterCode
//
// Rows that fail the retention rule never abort extraction. They are left out
// of the records and listed in Rejected with the reason, so callers may keep
// ignoring them or surface them for audit.
//
// =============================================================================

package extract

import (
	"context"
	"strings"
	"time"

	"github.com/ginjaninja78/oc-consolidator/internal/headers"
	"github.com/ginjaninja78/oc-consolidator/internal/sheet"
	"github.com/ginjaninja78/oc-consolidator/internal/types"
)

// ctxCheckEvery is how many rows are processed between cancellation checks.
const ctxCheckEvery = 256

// Rejection reasons.
const (
	ReasonMissingOrderNumber    = "missing order number"
	ReasonMissingSupplier       = "missing supplier name"
	ReasonNonPositiveAmount     = "amount must be greater than zero"
	ReasonMissingCostCenterCode = "missing cost center code"
)

// =============================================================================
// RESULT STRUCTURES
// =============================================================================

// MainResult is the outcome of extracting a main spreadsheet.
type MainResult struct {
	Records  []types.MainRecord
	Rejected []types.RejectedRow

	// Scanned is the number of non-empty data rows examined.
	Scanned int

	// DefaultedDates counts retained records whose date fell back to today.
	DefaultedDates int
}

// DetailResult is the outcome of extracting a detail spreadsheet.
type DetailResult struct {
	Records  []types.DetailRecord
	Rejected []types.RejectedRow
	Scanned  int
}

// =============================================================================
// EXTRACTOR
// =============================================================================

// Extractor builds records from grids. The zero value is not usable; call New.
type Extractor struct {
	now func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock overrides the source of "today" used for date fallbacks.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// New returns an Extractor using the system clock.
func New(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Main extracts main records from grid, starting at row index startRow.
//
// PARAMETERS:
//   - ctx: Checked periodically; extraction stops when it is done.
//   - grid: The decoded spreadsheet.
//   - mapping: Column mapping built from the header row.
//   - startRow: 0-based index of the first data row.
//
// RETURNS:
//   - The retained records and the rejected rows.
//   - ctx.Err() if the context ended before the grid was exhausted.
func (e *Extractor) Main(ctx context.Context, grid sheet.Grid, mapping headers.Mapping, startRow int) (MainResult, error) {
	var result MainResult
	today := e.now()

	start := max(startRow, 0)
	for i := start; i < grid.Len(); i++ {
		if (i-start)%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return result, err
			}
		}

		row := grid.Row(i)
		if row.IsEmpty() {
			continue
		}
		result.Scanned++

		field := func(f headers.Field) sheet.Cell {
			col, ok := mapping.Index(f)
			if !ok {
				return sheet.Cell{}
			}
			return row.Cell(col)
		}

		date, parsed := NormalizeDate(field(headers.FieldDate), grid.Date1904, today)
		amount, _ := NormalizeAmount(field(headers.FieldAmount))

		record := types.MainRecord{
			OrderNumber:     NormalizeText(field(headers.FieldOrderNumber)),
			OrderName:       NormalizeText(field(headers.FieldOrderName)),
			Date:            date,
			CostCenterLabel: NormalizeText(field(headers.FieldCostCenterLabel)),
			SupplierName:    NormalizeText(field(headers.FieldSupplierName)),
			PaymentTerms:    NormalizeText(field(headers.FieldPaymentTerms)),
			Amount:          amount,
			SourceRow:       i + 1,
		}

		var reasons []string
		if record.OrderNumber == "" {
			reasons = append(reasons, ReasonMissingOrderNumber)
		}
		if record.SupplierName == "" {
			reasons = append(reasons, ReasonMissingSupplier)
		}
		if !record.Amount.IsPositive() {
			reasons = append(reasons, ReasonNonPositiveAmount)
		}
		if len(reasons) > 0 {
			result.Rejected = append(result.Rejected, types.RejectedRow{Row: i + 1, Reason: strings.Join(reasons, "; ")})
			continue
		}

		if !parsed {
			result.DefaultedDates++
		}
		result.Records = append(result.Records, record)
	}

	return result, nil
}

// Detail extracts detail records from grid, starting at row index startRow.
// It follows the same contract as Main.
func (e *Extractor) Detail(ctx context.Context, grid sheet.Grid, mapping headers.Mapping, startRow int) (DetailResult, error) {
	var result DetailResult

	start := max(startRow, 0)
	for i := start; i < grid.Len(); i++ {
		if (i-start)%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return result, err
			}
		}

		row := grid.Row(i)
		if row.IsEmpty() {
			continue
		}
		result.Scanned++

		field := func(f headers.Field) string {
			col, ok := mapping.Index(f)
			if !ok {
				return ""
			}
			return NormalizeText(row.Cell(col))
		}

		record := types.DetailRecord{
			OrderNumber:     field(headers.FieldOrderNumber),
			CostCenterCode:  field(headers.FieldCostCenterCode),
			CostAccountName: field(headers.FieldCostAccountName),
			Description:     field(headers.FieldDescription),
			SourceRow:       i + 1,
		}

		var reasons []string
		if record.OrderNumber == "" {
			reasons = append(reasons, ReasonMissingOrderNumber)
		}
		if record.CostCenterCode == "" {
			reasons = append(reasons, ReasonMissingCostCenterCode)
		}
		if len(reasons) > 0 {
			result.Rejected = append(result.Rejected, types.RejectedRow{Row: i + 1, Reason: strings.Join(reasons, "; ")})
			continue
		}

		result.Records = append(result.Records, record)
	}

	return result, nil
}
