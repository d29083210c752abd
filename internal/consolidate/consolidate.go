// =============================================================================
// OC Consolidator - Consolidation Engine
// =============================================================================
//
// This module merges main records and detail records that share an order
// number into exactly one ConsolidatedRecord per distinct order number.
//
// ALGORITHM:
//   1. Group detail records by order number, remembering first-seen order
//   2. Deduplicate main records by order number; the LAST occurrence wins,
//      but the record keeps the position of the FIRST occurrence
//   3. Build one record per main order number with its detail group;
//      cost-center code and account come from the first detail
//   4. Synthesize a placeholder record for every order number that only
//      appears in the detail file
//   5. Flag detail groups whose cost-center codes disagree (first wins)
//
// OUTPUT ORDER:
//   Main-derived records in main-file order, then detail-only records in
//   detail-file order.
//
// =============================================================================

package consolidate

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/oc-consolidator/internal/types"
)

// PlaceholderAmount is the non-zero sentinel amount given to records that
// have no main row, so amount-positivity checks downstream accept them.
var PlaceholderAmount = decimal.NewFromInt(1)

// =============================================================================
// ENGINE
// =============================================================================

// Engine consolidates records. It holds no state between calls.
type Engine struct {
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the source of the placeholder date.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New returns an Engine using the system clock.
func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Consolidate merges mains and details.
//
// PARAMETERS:
//   - mains: Main records in main-file order.
//   - details: Detail records in detail-file order.
//
// RETURNS:
//   - One ConsolidatedRecord per distinct non-empty order number.
func (e *Engine) Consolidate(mains []types.MainRecord, details []types.DetailRecord) []types.ConsolidatedRecord {
	// =========================================================================
	// STEP 1: GROUP DETAILS
	// =========================================================================

	detailGroups := make(map[string][]types.DetailRecord)
	detailOrder := []string{}

	for _, d := range details {
		if d.OrderNumber == "" {
			continue
		}
		if _, exists := detailGroups[d.OrderNumber]; !exists {
			detailOrder = append(detailOrder, d.OrderNumber)
		}
		detailGroups[d.OrderNumber] = append(detailGroups[d.OrderNumber], d)
	}

	// =========================================================================
	// STEP 2: DEDUPLICATE MAINS (LAST WINS)
	// =========================================================================

	latest := make(map[string]types.MainRecord)
	mainOrder := []string{}

	for _, m := range mains {
		if m.OrderNumber == "" {
			continue
		}
		if _, exists := latest[m.OrderNumber]; !exists {
			mainOrder = append(mainOrder, m.OrderNumber)
		}
		latest[m.OrderNumber] = m
	}

	consolidated := make([]types.ConsolidatedRecord, 0, len(mainOrder)+len(detailOrder))

	// =========================================================================
	// STEP 3: MAIN-DERIVED RECORDS
	// =========================================================================

	for _, key := range mainOrder {
		record := types.ConsolidatedRecord{
			MainRecord: latest[key],
			Details:    []types.DetailRecord{},
		}
		attachDetails(&record, detailGroups[key])
		consolidated = append(consolidated, record)
	}

	// =========================================================================
	// STEP 4: DETAIL-ONLY PLACEHOLDERS
	// =========================================================================

	today := e.now().Format(types.DateLayout)

	for _, key := range detailOrder {
		if _, isMain := latest[key]; isMain {
			continue
		}

		group := detailGroups[key]
		name := group[0].Description
		if name == "" {
			name = fmt.Sprintf("Orden %s", key)
		}

		record := types.ConsolidatedRecord{
			MainRecord: types.MainRecord{
				OrderNumber:     key,
				OrderName:       name,
				Date:            today,
				CostCenterLabel: types.PlaceholderText,
				SupplierName:    types.PlaceholderText,
				PaymentTerms:    types.PlaceholderText,
				Amount:          PlaceholderAmount,
			},
			Placeholder: true,
		}
		attachDetails(&record, group)
		consolidated = append(consolidated, record)
	}

	return consolidated
}

// Consolidate is a convenience wrapper around New().Consolidate.
func Consolidate(mains []types.MainRecord, details []types.DetailRecord) []types.ConsolidatedRecord {
	return New().Consolidate(mains, details)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// attachDetails sets the detail group, the first-detail cost-center fields,
// and the conflict flag.
func attachDetails(record *types.ConsolidatedRecord, group []types.DetailRecord) {
	if len(group) == 0 {
		record.Details = []types.DetailRecord{}
		return
	}

	record.Details = group
	record.CostCenterCode = group[0].CostCenterCode
	record.CostAccountName = group[0].CostAccountName
	record.ConflictingCostCenters = distinctCodes(group)
}

// distinctCodes returns the distinct cost-center codes of group in first-seen
// order, or nil when there is only one.
func distinctCodes(group []types.DetailRecord) []string {
	seen := make(map[string]bool, len(group))
	var codes []string
	for _, d := range group {
		if !seen[d.CostCenterCode] {
			seen[d.CostCenterCode] = true
			codes = append(codes, d.CostCenterCode)
		}
	}
	if len(codes) < 2 {
		return nil
	}
	return codes
}
