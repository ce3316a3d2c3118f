package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmcart/farmcart-backend/pkg/db/models"
	pkgerrors "github.com/farmcart/farmcart-backend/pkg/errors"
)

// Adjustment pairs a product with a signed quantity change.
type Adjustment struct {
	ProductID uuid.UUID
	Quantity  int
}

// Service guards every stock mutation behind atomic conditional updates so
// concurrent orders can never drive a count negative.
type Service interface {
	GetStock(ctx context.Context, productID uuid.UUID) (int, error)
	// Deduct removes qty units inside tx, failing with an
	// insufficient-stock error when not enough remain.
	Deduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	// Restock returns qty units inside tx.
	Restock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	// RestockAll applies every adjustment inside tx.
	RestockAll(ctx context.Context, tx *gorm.DB, adjustments []Adjustment) error
	// IncrementPurchaseCounts bumps the purchase counter on each product.
	IncrementPurchaseCounts(ctx context.Context, tx *gorm.DB, adjustments []Adjustment) error
}

type service struct {
	db *gorm.DB
}

// NewService builds an inventory service bound to the provided DB.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	return &service{db: db}, nil
}

func (s *service) GetStock(ctx context.Context, productID uuid.UUID) (int, error) {
	var item models.InventoryItem
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found").
				WithDetails(map[string]any{"product_id": productID.String()})
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}
	return item.AvailableQty, nil
}

func (s *service) Deduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	result := tx.WithContext(ctx).Exec(
		`UPDATE inventory_items
		 SET available_qty = available_qty - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE product_id = ? AND available_qty >= ?`,
		qty, productID, qty,
	)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "deduct stock")
	}
	if result.RowsAffected == 0 {
		var available int
		if err := tx.WithContext(ctx).
			Model(&models.InventoryItem{}).
			Where("product_id = ?", productID).
			Select("available_qty").
			Scan(&available).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read available stock")
		}
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{
				"product_id": productID.String(),
				"requested":  qty,
				"available":  available,
			})
	}
	return nil
}

func (s *service) Restock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	result := tx.WithContext(ctx).Exec(
		`UPDATE inventory_items
		 SET available_qty = available_qty + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE product_id = ?`,
		qty, productID,
	)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "restock")
	}
	if result.RowsAffected == 0 {
		// Product row may have been removed from the catalog; restocking a
		// missing row is not an error the caller can act on.
		return nil
	}
	return nil
}

func (s *service) RestockAll(ctx context.Context, tx *gorm.DB, adjustments []Adjustment) error {
	for _, adj := range adjustments {
		if err := s.Restock(ctx, tx, adj.ProductID, adj.Quantity); err != nil {
			return fmt.Errorf("restock product %s: %w", adj.ProductID, err)
		}
	}
	return nil
}

func (s *service) IncrementPurchaseCounts(ctx context.Context, tx *gorm.DB, adjustments []Adjustment) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	for _, adj := range adjustments {
		if adj.Quantity <= 0 {
			continue
		}
		result := tx.WithContext(ctx).Exec(
			`UPDATE products
			 SET purchase_count = purchase_count + ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`,
			adj.Quantity, adj.ProductID,
		)
		if result.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "increment purchase count")
		}
	}
	return nil
}
