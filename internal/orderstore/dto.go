package orderstore

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/oc-consolidator/internal/types"
)

// OrderView is the API representation of a stored order.
type OrderView struct {
	ID               int64           `json:"id"`
	OrderNumber      string          `json:"order_number"`
	OrderName        string          `json:"order_name"`
	Date             string          `json:"date"`
	CostCenterLabel  string          `json:"cost_center_label"`
	SupplierName     string          `json:"supplier_name"`
	PaymentTerms     string          `json:"payment_terms"`
	PaymentTermsKind string          `json:"payment_terms_kind"`
	PaymentDays      int             `json:"payment_days,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	CostCenterCode   string          `json:"cost_center_code"`
	CostAccountName  string          `json:"cost_account_name"`
	NeedsReview      bool            `json:"needs_review"`
	Lines            []LineView      `json:"lines"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// LineView is the API representation of an order line.
type LineView struct {
	Position        int    `json:"position"`
	CostCenterCode  string `json:"cost_center_code"`
	CostAccountName string `json:"cost_account_name"`
	Description     string `json:"description,omitempty"`
}

// ToView maps a stored order to its API representation.
func ToView(o *PurchaseOrder) OrderView {
	lines := make([]LineView, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, LineView{
			Position:        l.Position,
			CostCenterCode:  l.CostCenterCode,
			CostAccountName: l.CostAccountName,
			Description:     l.Description,
		})
	}
	return OrderView{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		OrderName:        o.OrderName,
		Date:             o.OrderDate.Format(types.DateLayout),
		CostCenterLabel:  o.CostCenterLabel,
		SupplierName:     o.SupplierName,
		PaymentTerms:     o.PaymentTerms,
		PaymentTermsKind: o.PaymentTermsKind,
		PaymentDays:      o.PaymentDays,
		Amount:           o.Amount,
		CostCenterCode:   o.CostCenterCode,
		CostAccountName:  o.CostAccountName,
		NeedsReview:      o.NeedsReview,
		Lines:            lines,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}
