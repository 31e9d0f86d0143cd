package enums

import "fmt"

// RefundReason is the customer-supplied category on a refund request.
type RefundReason string

const (
	RefundReasonNotWorking        RefundReason = "not_working"
	RefundReasonTechnicalIssues   RefundReason = "technical_issues"
	RefundReasonNotSuitable       RefundReason = "not_suitable"
	RefundReasonDuplicatePurchase RefundReason = "duplicate_purchase"
	RefundReasonBillingError      RefundReason = "billing_error"
	RefundReasonChangeOfMind      RefundReason = "change_of_mind"
	RefundReasonOther             RefundReason = "other"
)

var validRefundReasons = []RefundReason{
	RefundReasonNotWorking,
	RefundReasonTechnicalIssues,
	RefundReasonNotSuitable,
	RefundReasonDuplicatePurchase,
	RefundReasonBillingError,
	RefundReasonChangeOfMind,
	RefundReasonOther,
}

// String implements fmt.Stringer.
func (r RefundReason) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RefundReason.
func (r RefundReason) IsValid() bool {
	for _, candidate := range validRefundReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRefundReason converts raw input into a RefundReason.
func ParseRefundReason(value string) (RefundReason, error) {
	for _, candidate := range validRefundReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid refund reason %q", value)
}
