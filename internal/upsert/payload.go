// =============================================================================
// OC Consolidator - Order Payloads
// =============================================================================
//
// This module converts consolidated records into the payload shape accepted
// by the order store's upsert endpoints. The same payload is used for the
// batch call and for each individual fallback call.
//
// =============================================================================

package upsert

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/oc-consolidator/internal/types"
)

// OrderLine is one detail line of an order payload.
type OrderLine struct {
	CostCenterCode  string `json:"cost_center_code" validate:"required"`
	CostAccountName string `json:"cost_account_name"`
	Description     string `json:"description,omitempty"`
}

// OrderPayload is the upsert payload for one purchase order. The store keys
// it by OrderNumber.
type OrderPayload struct {
	OrderNumber      string                 `json:"order_number" validate:"required"`
	OrderName        string                 `json:"order_name"`
	Date             string                 `json:"date" validate:"required,datetime=2006-01-02"`
	CostCenterLabel  string                 `json:"cost_center_label"`
	SupplierName     string                 `json:"supplier_name" validate:"required"`
	PaymentTerms     string                 `json:"payment_terms"`
	PaymentTermsKind types.PaymentTermsKind `json:"payment_terms_kind" validate:"omitempty,oneof=cash net_days credit unknown"`
	PaymentDays      int                    `json:"payment_days,omitempty" validate:"gte=0"`
	Amount           decimal.Decimal        `json:"amount" validate:"gt=0"`
	CostCenterCode   string                 `json:"cost_center_code,omitempty"`
	CostAccountName  string                 `json:"cost_account_name,omitempty"`
	NeedsReview      bool                   `json:"needs_review"`
	Lines            []OrderLine            `json:"lines" validate:"dive"`
}

// BuildPayload converts a consolidated record to its upsert payload.
//
// PARAMETERS:
//   - record: The consolidated record.
//
// RETURNS:
//   - The payload, with payment terms classified and one line per detail.
func BuildPayload(record types.ConsolidatedRecord) OrderPayload {
	terms := types.ClassifyPaymentTerms(record.PaymentTerms)

	lines := make([]OrderLine, 0, len(record.Details))
	for _, d := range record.Details {
		lines = append(lines, OrderLine{
			CostCenterCode:  d.CostCenterCode,
			CostAccountName: d.CostAccountName,
			Description:     d.Description,
		})
	}

	return OrderPayload{
		OrderNumber:      record.OrderNumber,
		OrderName:        record.OrderName,
		Date:             record.Date,
		CostCenterLabel:  record.CostCenterLabel,
		SupplierName:     record.SupplierName,
		PaymentTerms:     record.PaymentTerms,
		PaymentTermsKind: terms.Kind,
		PaymentDays:      terms.Days,
		Amount:           record.Amount,
		CostCenterCode:   record.CostCenterCode,
		CostAccountName:  record.CostAccountName,
		NeedsReview:      record.NeedsReview(),
		Lines:            lines,
	}
}

// BuildPayloads converts records in order.
func BuildPayloads(records []types.ConsolidatedRecord) []OrderPayload {
	payloads := make([]OrderPayload, len(records))
	for i, r := range records {
		payloads[i] = BuildPayload(r)
	}
	return payloads
}
