package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarquezdev/subvault-backend/pkg/enums"
)

// SubscriptionCreatedEvent announces a newly provisioned subscription.
type SubscriptionCreatedEvent struct {
	AuthCodeID uuid.UUID `json:"auth_code_id"`
	ProductID  uuid.UUID `json:"product_id"`
	ExpiryDate time.Time `json:"expiry_date"`
}

// SubscriptionStatusEvent carries lifecycle transitions detected by the
// status sweep (expiring soon, expired).
type SubscriptionStatusEvent struct {
	AuthCodeID uuid.UUID `json:"auth_code_id"`
	ExpiryDate time.Time `json:"expiry_date"`
}

// SubscriptionCancelledEvent announces an admin cancellation.
type SubscriptionCancelledEvent struct {
	AuthCodeID uuid.UUID `json:"auth_code_id"`
}

// RefundRequestedEvent announces a customer opening a refund request.
type RefundRequestedEvent struct {
	SubscriptionID uuid.UUID          `json:"subscription_id"`
	AuthCodeID     uuid.UUID          `json:"auth_code_id"`
	Reason         enums.RefundReason `json:"reason"`
}

// RefundDecisionEvent carries review outcomes (approved, rejected, completed).
type RefundDecisionEvent struct {
	SubscriptionID uuid.UUID          `json:"subscription_id"`
	AuthCodeID     uuid.UUID          `json:"auth_code_id"`
	Status         enums.RefundStatus `json:"status"`
	RefundAmount   *decimal.Decimal   `json:"refund_amount,omitempty"`
}
