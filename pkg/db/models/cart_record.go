package models

import (
	"time"

	"github.com/google/uuid"
)

// CartRecord holds the pre-checkout accumulation for one auth code. It carries
// no identity of its own beyond the owner and is deleted once checkout converts
// its lines into subscriptions.
type CartRecord struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AuthCodeID uuid.UUID  `gorm:"column:auth_code_id;type:uuid;not null;uniqueIndex"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
