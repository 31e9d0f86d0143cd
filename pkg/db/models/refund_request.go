package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarquezdev/subvault-backend/pkg/enums"
)

// RefundRequest is a customer's refund claim against one subscription. Rows are
// never deleted; the table is the audit trail for money leaving the business.
type RefundRequest struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SubscriptionID uuid.UUID           `gorm:"column:subscription_id;type:uuid;not null;index"`
	AuthCodeID     uuid.UUID           `gorm:"column:auth_code_id;type:uuid;not null;index"`
	Reason         enums.RefundReason  `gorm:"column:reason;type:refund_reason;not null"`
	Description    string              `gorm:"column:description;not null"`
	Status         enums.RefundStatus  `gorm:"column:status;type:refund_status;not null;default:'pending'"`
	AdminNotes     *string             `gorm:"column:admin_notes"`
	RefundAmount   *decimal.Decimal    `gorm:"column:refund_amount;type:numeric(12,2)"`
	RefundMethod   *enums.RefundMethod `gorm:"column:refund_method;type:refund_method"`
	ProcessedAt    *time.Time          `gorm:"column:processed_at"`
	Subscription   *Subscription       `gorm:"foreignKey:SubscriptionID"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
