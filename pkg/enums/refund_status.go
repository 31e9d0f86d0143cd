package enums

import "fmt"

// RefundStatus tracks a refund request through its review workflow.
// rejected and completed are terminal.
type RefundStatus string

const (
	RefundStatusPending     RefundStatus = "pending"
	RefundStatusUnderReview RefundStatus = "under_review"
	RefundStatusApproved    RefundStatus = "approved"
	RefundStatusRejected    RefundStatus = "rejected"
	RefundStatusCompleted   RefundStatus = "completed"
)

var validRefundStatuses = []RefundStatus{
	RefundStatusPending,
	RefundStatusUnderReview,
	RefundStatusApproved,
	RefundStatusRejected,
	RefundStatusCompleted,
}

// String implements fmt.Stringer.
func (r RefundStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RefundStatus.
func (r RefundStatus) IsValid() bool {
	for _, candidate := range validRefundStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the workflow permits no further transition.
func (r RefundStatus) IsTerminal() bool {
	return r == RefundStatusRejected || r == RefundStatusCompleted
}

// CanTransitionTo reports whether the workflow allows moving from r to next.
func (r RefundStatus) CanTransitionTo(next RefundStatus) bool {
	switch r {
	case RefundStatusPending:
		return next == RefundStatusUnderReview || next == RefundStatusApproved || next == RefundStatusRejected
	case RefundStatusUnderReview:
		return next == RefundStatusApproved || next == RefundStatusRejected
	case RefundStatusApproved:
		return next == RefundStatusCompleted
	default:
		return false
	}
}

// ParseRefundStatus converts raw input into a RefundStatus.
func ParseRefundStatus(value string) (RefundStatus, error) {
	for _, candidate := range validRefundStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid refund status %q", value)
}
