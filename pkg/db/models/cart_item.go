package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarquezdev/subvault-backend/pkg/enums"
)

// CartItem is one candidate purchase line, keyed by product within its cart.
// The unit price is the effective price snapshot at the time of the last add.
type CartItem struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID      uuid.UUID          `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:ux_cart_items_cart_product"`
	ProductID   uuid.UUID          `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_cart_items_cart_product"`
	Tier        enums.SharingTier  `gorm:"column:tier;type:sharing_tier;not null"`
	Duration    enums.DurationCode `gorm:"column:duration;type:duration_code;not null"`
	Quantity    int                `gorm:"column:quantity;not null;default:1"`
	CustomPrice *decimal.Decimal   `gorm:"column:custom_price;type:numeric(12,2)"`
	UnitPrice   decimal.Decimal    `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Product     *Product           `gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// LineTotal is the effective unit price multiplied by quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
