package orderstore

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrder is the durable order entity, unique by OrderNumber.
type PurchaseOrder struct {
	ID               int64               `gorm:"primaryKey;autoIncrement"`
	OrderNumber      string              `gorm:"column:order_number;not null;uniqueIndex:idx_purchase_orders_order_number"`
	OrderName        string              `gorm:"column:order_name;not null;default:''"`
	OrderDate        time.Time           `gorm:"column:order_date;type:date;not null"`
	CostCenterLabel  string              `gorm:"column:cost_center_label;not null;default:''"`
	SupplierName     string              `gorm:"column:supplier_name;not null"`
	PaymentTerms     string              `gorm:"column:payment_terms;not null;default:''"`
	PaymentTermsKind string              `gorm:"column:payment_terms_kind;not null;default:'unknown'"`
	PaymentDays      int                 `gorm:"column:payment_days;not null;default:0"`
	Amount           decimal.Decimal     `gorm:"column:amount;type:numeric(18,2);not null"`
	CostCenterCode   string              `gorm:"column:cost_center_code;not null;default:''"`
	CostAccountName  string              `gorm:"column:cost_account_name;not null;default:''"`
	NeedsReview      bool                `gorm:"column:needs_review;not null;default:false"`
	Lines            []PurchaseOrderLine `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time           `gorm:"column:created_at"`
	UpdatedAt        time.Time           `gorm:"column:updated_at"`
}

// TableName pins the table name.
func (PurchaseOrder) TableName() string { return "purchase_orders" }

// PurchaseOrderLine is one detail line, ordered by Position.
type PurchaseOrderLine struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	PurchaseOrderID int64  `gorm:"column:purchase_order_id;not null;index"`
	Position        int    `gorm:"column:position;not null"`
	CostCenterCode  string `gorm:"column:cost_center_code;not null"`
	CostAccountName string `gorm:"column:cost_account_name;not null;default:''"`
	Description     string `gorm:"column:description;not null;default:''"`
}

// TableName pins the table name.
func (PurchaseOrderLine) TableName() string { return "purchase_order_lines" }
