package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents a farm's listing.
type Product struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FarmID        uuid.UUID      `gorm:"column:farm_id;type:uuid;not null;index"`
	Name          string         `gorm:"column:name;not null"`
	Description   *string        `gorm:"column:description"`
	ImageURL      *string        `gorm:"column:image_url"`
	Unit          string         `gorm:"column:unit;not null"`
	PriceCents    int64          `gorm:"column:price_cents;not null"`
	Tags          pq.StringArray `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	PurchaseCount int64          `gorm:"column:purchase_count;not null;default:0"`
	IsActive      bool           `gorm:"column:is_active;not null;default:true"`
	Inventory     *InventoryItem `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
