package models

import (
	"time"

	"github.com/google/uuid"
)

// Farm is a seller on the marketplace. ContactEmail doubles as the
// seller key on orders, after encoding.
type Farm struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerUserID  uuid.UUID `gorm:"column:owner_user_id;type:uuid;not null;index"`
	ContactEmail string    `gorm:"column:contact_email;not null;uniqueIndex"`
	DisplayName  string    `gorm:"column:display_name;not null"`
	Region       *string   `gorm:"column:region"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
