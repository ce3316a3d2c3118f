package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmcart/farmcart-backend/pkg/db/models"
	"github.com/farmcart/farmcart-backend/pkg/enums"
	"github.com/farmcart/farmcart-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds the orders repository on the shared connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Create(order).Error
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListBuyerOrders(ctx context.Context, input ListBuyerOrdersInput) ([]models.Order, string, error) {
	limit := pagination.LimitWithBuffer(input.Page.Limit)
	normalized := pagination.NormalizeLimit(input.Page.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Items").
		Where("buyer_id = ?", input.BuyerID)
	if input.Status != nil {
		query = query.Where("status = ?", *input.Status)
	}
	if input.DateFrom != nil {
		query = query.Where("created_at >= ?", *input.DateFrom)
	}
	if input.DateTo != nil {
		query = query.Where("created_at < ?", *input.DateTo)
	}
	if input.Page.Cursor != "" {
		cursor, err := pagination.ParseCursor(input.Page.Cursor)
		if err != nil {
			return nil, "", err
		}
		if cursor != nil {
			query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
		}
	}

	var rows []models.Order
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: next.CreatedAt,
			ID:        next.ID,
		})
	}
	return rows, nextCursor, nil
}

func (r *repository) UpdateOrderGuarded(ctx context.Context, order *models.Order, expectedVersion int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND version = ?", order.ID, expectedVersion).
		Select("status", "per_seller_status", "status_history", "version", "updated_at").
		Updates(models.Order{
			Status:          order.Status,
			PerSellerStatus: order.PerSellerStatus,
			StatusHistory:   order.StatusHistory,
			Version:         expectedVersion + 1,
			UpdatedAt:       time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	order.Version = expectedVersion + 1
	return true, nil
}

func (r *repository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Order{}, "id = ?", id).Error
}

func (r *repository) FindPendingOrdersBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	var rows []models.Order
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ? AND created_at < ?", enums.OrderStatusPending, cutoff).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) DeleteCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	db := r.db.WithContext(ctx)
	err := db.Exec(
		"DELETE FROM order_items WHERE order_id IN (SELECT id FROM orders WHERE status = ? AND updated_at < ?)",
		enums.OrderStatusCancelled, cutoff,
	).Error
	if err != nil {
		return 0, err
	}
	result := db.Where("status = ? AND updated_at < ?", enums.OrderStatusCancelled, cutoff).
		Delete(&models.Order{})
	return result.RowsAffected, result.Error
}
