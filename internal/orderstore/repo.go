package orderstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Repository handles purchase order persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to purchase order operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByOrderNumber loads an order and its lines.
func (r *Repository) FindByOrderNumber(ctx context.Context, orderNumber string) (*PurchaseOrder, error) {
	var order PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumberWithTx loads an order without its lines using the
// provided transaction.
func (r *Repository) FindByOrderNumberWithTx(tx *gorm.DB, orderNumber string) (*PurchaseOrder, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var order PurchaseOrder
	if err := tx.Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateWithTx inserts order together with its lines.
func (r *Repository) CreateWithTx(tx *gorm.DB, order *PurchaseOrder) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if order == nil {
		return fmt.Errorf("order is required")
	}
	return tx.Create(order).Error
}

// UpdateWithTx overwrites the order's columns and replaces its lines.
func (r *Repository) UpdateWithTx(tx *gorm.DB, order *PurchaseOrder) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if order == nil || order.ID == 0 {
		return fmt.Errorf("persisted order is required")
	}

	lines := order.Lines
	if err := tx.Omit("Lines").Save(order).Error; err != nil {
		return err
	}
	if err := tx.Where("purchase_order_id = ?", order.ID).Delete(&PurchaseOrderLine{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].ID = 0
		lines[i].PurchaseOrderID = order.ID
	}
	return tx.Create(&lines).Error
}

// CountNeedingReview counts orders flagged for manual correction.
func (r *Repository) CountNeedingReview(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&PurchaseOrder{}).Where("needs_review = ?", true).Count(&count).Error
	return count, err
}
