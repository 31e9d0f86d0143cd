package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarquezdev/subvault-backend/pkg/enums"
)

// PricingPlan is a per-product, per-tier base amount used for catalog display.
// The subscription-level calculator is table-driven and independent of these rows.
type PricingPlan struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID     uuid.UUID         `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_pricing_plans_product_tier"`
	Tier          enums.SharingTier `gorm:"column:tier;type:sharing_tier;not null;uniqueIndex:ux_pricing_plans_product_tier"`
	Enabled       bool              `gorm:"column:enabled;not null;default:true"`
	MonthlyAmount decimal.Decimal   `gorm:"column:monthly_amount;type:numeric(12,2);not null"`
	YearlyAmount  decimal.Decimal   `gorm:"column:yearly_amount;type:numeric(12,2);not null"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
