package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is a denormalized line on an order. Product name, unit, and
// price are snapshotted at creation so later catalog edits do not rewrite
// order history.
type OrderItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	FarmID         uuid.UUID `gorm:"column:farm_id;type:uuid;not null;index"`
	SellerKey      string    `gorm:"column:seller_key;not null"`
	SellerName     string    `gorm:"column:seller_name;not null"`
	ProductName    string    `gorm:"column:product_name;not null"`
	ImageURL       *string   `gorm:"column:image_url"`
	Unit           string    `gorm:"column:unit;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
