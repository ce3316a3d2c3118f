package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmcart/farmcart-backend/pkg/db/models"
)

// Repository provides persistence for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListBuyerOrders(ctx context.Context, input ListBuyerOrdersInput) ([]models.Order, string, error)

	// UpdateOrderGuarded writes the status columns only if the row's
	// version still equals expectedVersion. It reports whether the
	// write landed.
	UpdateOrderGuarded(ctx context.Context, order *models.Order, expectedVersion int64) (bool, error)

	DeleteOrder(ctx context.Context, id uuid.UUID) error
	FindPendingOrdersBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
	DeleteCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
