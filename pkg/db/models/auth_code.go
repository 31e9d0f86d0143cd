package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthCode is the permanent identity token representing one customer. It never
// expires; deleting it cascades deletion of its subscriptions.
type AuthCode struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code          string         `gorm:"column:code;not null;uniqueIndex"`
	Name          string         `gorm:"column:name;not null"`
	Email         string         `gorm:"column:email;not null;uniqueIndex"`
	IsActive      bool           `gorm:"column:is_active;not null;default:true"`
	Subscriptions []Subscription `gorm:"foreignKey:AuthCodeID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
