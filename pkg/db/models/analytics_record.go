package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarquezdev/subvault-backend/pkg/enums"
)

// AnalyticsRecord is one materialized revenue row per subscription, maintained
// by the backfill and repair batch procedures.
type AnalyticsRecord struct {
	ID             uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SubscriptionID uuid.UUID                `gorm:"column:subscription_id;type:uuid;not null;uniqueIndex"`
	AuthCodeID     uuid.UUID                `gorm:"column:auth_code_id;type:uuid;not null;index"`
	ProductID      uuid.UUID                `gorm:"column:product_id;type:uuid;not null"`
	Tier           enums.SharingTier        `gorm:"column:tier;type:sharing_tier;not null"`
	Duration       enums.DurationCode       `gorm:"column:duration;type:duration_code;not null"`
	Status         enums.SubscriptionStatus `gorm:"column:status;type:subscription_status;not null"`
	Revenue        decimal.Decimal          `gorm:"column:revenue;type:numeric(12,2);not null"`
	RecordedAt     time.Time                `gorm:"column:recorded_at;not null"`
	CreatedAt      time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
