package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/farmcart/farmcart-backend/pkg/enums"
	"github.com/farmcart/farmcart-backend/pkg/types"
)

// Order is a buyer's order spanning one or more farms.
//
// Status is the aggregate value derived from PerSellerStatus; it is never
// written directly by callers. Version backs optimistic concurrency on
// status updates.
type Order struct {
	ID               uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber      int64                 `gorm:"column:order_number;->"`
	BuyerID          uuid.UUID             `gorm:"column:buyer_id;type:uuid;not null"`
	Status           enums.OrderStatus     `gorm:"column:status;type:text;not null;default:'pending'"`
	PerSellerStatus  types.PerSellerStatus `gorm:"column:per_seller_status;type:jsonb;serializer:json"`
	StatusHistory    types.StatusHistory   `gorm:"column:status_history;type:jsonb;serializer:json"`
	DeliveryMethod   enums.DeliveryMethod  `gorm:"column:delivery_method;type:text;not null;default:'delivery'"`
	SubtotalCents    int64                 `gorm:"column:subtotal_cents;not null"`
	DeliveryFeeCents int64                 `gorm:"column:delivery_fee_cents;not null;default:0"`
	ServiceFeeCents  int64                 `gorm:"column:service_fee_cents;not null;default:0"`
	TotalCents       int64                 `gorm:"column:total_cents;not null"`
	Notes            *string               `gorm:"column:notes"`
	Version          int64                 `gorm:"column:version;not null;default:1"`
	Items            []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
