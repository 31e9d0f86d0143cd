package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarquezdev/subvault-backend/pkg/enums"
)

// Product is a catalog listing for a third-party service whose accounts are
// sold. Owned by catalog management; immutable from this service's perspective.
// The list price is informational only and never feeds lifecycle math.
type Product struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string                `gorm:"column:name;not null"`
	Category     enums.ProductCategory `gorm:"column:category;type:product_category;not null;default:'other'"`
	ListPrice    decimal.Decimal       `gorm:"column:list_price;type:numeric(12,2);not null;default:0"`
	Description  *string               `gorm:"column:description"`
	IsActive     bool                  `gorm:"column:is_active;not null;default:true"`
	PricingPlans []PricingPlan         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
