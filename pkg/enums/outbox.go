package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateSubscription  OutboxAggregateType = "subscription"
	AggregateRefundRequest OutboxAggregateType = "refund_request"
	AggregateAuthCode      OutboxAggregateType = "auth_code"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateSubscription,
	AggregateRefundRequest,
	AggregateAuthCode,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventSubscriptionCreated      OutboxEventType = "subscription_created"
	EventSubscriptionExpiringSoon OutboxEventType = "subscription_expiring_soon"
	EventSubscriptionExpired      OutboxEventType = "subscription_expired"
	EventSubscriptionCancelled    OutboxEventType = "subscription_cancelled"
	EventRefundRequested          OutboxEventType = "refund_requested"
	EventRefundApproved           OutboxEventType = "refund_approved"
	EventRefundRejected           OutboxEventType = "refund_rejected"
	EventRefundCompleted          OutboxEventType = "refund_completed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventSubscriptionCreated,
	EventSubscriptionExpiringSoon,
	EventSubscriptionExpired,
	EventSubscriptionCancelled,
	EventRefundRequested,
	EventRefundApproved,
	EventRefundRejected,
	EventRefundCompleted,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
