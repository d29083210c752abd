// =============================================================================
// OC Consolidator - Shared Types
// =============================================================================
//
// This package contains the record types shared by the extraction,
// consolidation and upsert stages. Keeping them here avoids import cycles
// between:
//   - extract
//   - consolidate
//   - upsert
//   - importer
//
// =============================================================================

package types

import (
	"github.com/shopspring/decimal"
)

// PlaceholderText fills text fields of records synthesized from detail rows
// alone. Downstream reviewers search for this literal.
const PlaceholderText = "POR DEFINIR"

// DateLayout is the ISO layout every normalized date uses.
const DateLayout = "2006-01-02"

// =============================================================================
// SOURCE RECORDS
// =============================================================================

// MainRecord is one retained row of the main order spreadsheet.
type MainRecord struct {
	// OrderNumber is the business key. Never empty once extracted.
	OrderNumber string `json:"order_number"`

	OrderName string `json:"order_name,omitempty"`

	// Date is always formatted with DateLayout.
	Date string `json:"date"`

	// CostCenterLabel is the free-text work-site ("obra") name.
	CostCenterLabel string `json:"cost_center_label"`

	SupplierName string `json:"supplier_name"`

	// PaymentTerms is kept as written; see ClassifyPaymentTerms.
	PaymentTerms string `json:"payment_terms"`

	// Amount is strictly positive once extracted.
	Amount decimal.Decimal `json:"amount"`

	// SourceRow is the 1-based spreadsheet row the record came from.
	SourceRow int `json:"source_row"`
}

// DetailRecord is one retained row of the detail spreadsheet.
type DetailRecord struct {
	OrderNumber     string `json:"order_number"`
	CostCenterCode  string `json:"cost_center_code"`
	CostAccountName string `json:"cost_account_name"`
	Description     string `json:"description,omitempty"`
	SourceRow       int    `json:"source_row"`
}

// =============================================================================
// CONSOLIDATED RECORD
// =============================================================================

// ConsolidatedRecord merges the main record and every detail record sharing
// one order number. Exactly one exists per distinct order number.
type ConsolidatedRecord struct {
	MainRecord

	// Details holds every detail row for the key, in detail-file order.
	Details []DetailRecord `json:"details"`

	// CostCenterCode and CostAccountName come from the first detail row.
	CostCenterCode  string `json:"cost_center_code"`
	CostAccountName string `json:"cost_account_name"`

	// Placeholder marks records synthesized without a main row.
	// Their main fields need manual review.
	Placeholder bool `json:"placeholder"`

	// ConflictingCostCenters lists the distinct cost-center codes of the
	// detail group when they disagree. Empty when consistent.
	ConflictingCostCenters []string `json:"conflicting_cost_centers,omitempty"`
}

// HasDetails reports whether at least one detail row joined the record.
func (r ConsolidatedRecord) HasDetails() bool {
	return len(r.Details) > 0
}

// NeedsReview reports whether a human should look at the record before it
// is trusted.
func (r ConsolidatedRecord) NeedsReview() bool {
	return r.Placeholder || len(r.ConflictingCostCenters) > 0
}

// =============================================================================
// REJECTED ROWS
// =============================================================================

// RejectedRow records a spreadsheet row that was dropped during extraction.
type RejectedRow struct {
	// Row is the 1-based spreadsheet row number.
	Row int `json:"row"`

	Reason string `json:"reason"`
}
