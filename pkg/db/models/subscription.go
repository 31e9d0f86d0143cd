package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarquezdev/subvault-backend/pkg/enums"
)

// Subscription is the central entity: time-bound access to one third-party
// account, owned by an AuthCode. Status is materialized by the sweep and is a
// pure function of expiry_date and the clock, except cancelled which is sticky.
// Account credentials are sealed at rest and only opened for the owner.
type Subscription struct {
	ID          uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AuthCodeID  uuid.UUID                `gorm:"column:auth_code_id;type:uuid;not null;index"`
	ProductID   uuid.UUID                `gorm:"column:product_id;type:uuid;not null;index"`
	Tier        enums.SharingTier        `gorm:"column:tier;type:sharing_tier;not null"`
	Duration    enums.DurationCode       `gorm:"column:duration;type:duration_code;not null"`
	StartDate   time.Time                `gorm:"column:start_date;not null"`
	ExpiryDate  time.Time                `gorm:"column:expiry_date;not null;index"`
	Status      enums.SubscriptionStatus `gorm:"column:status;type:subscription_status;not null;default:'active'"`
	AutoRenew   bool                     `gorm:"column:auto_renew;not null;default:false"`
	CustomPrice *decimal.Decimal         `gorm:"column:custom_price;type:numeric(12,2)"`
	Currency    enums.CurrencyCode       `gorm:"column:currency;type:currency_code;not null;default:'USD'"`
	UsernameEnc []byte                   `gorm:"column:username_enc;type:bytea"`
	PasswordEnc []byte                   `gorm:"column:password_enc;type:bytea"`
	Notes       *string                  `gorm:"column:notes"`
	AuthCode    *AuthCode                `gorm:"foreignKey:AuthCodeID"`
	Product     *Product                 `gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
