package enums

import "fmt"

// RefundMethod is how an approved refund is paid out.
type RefundMethod string

const (
	RefundMethodOriginalPayment RefundMethod = "original_payment"
	RefundMethodBankTransfer    RefundMethod = "bank_transfer"
	RefundMethodStoreCredit     RefundMethod = "store_credit"
)

var validRefundMethods = []RefundMethod{
	RefundMethodOriginalPayment,
	RefundMethodBankTransfer,
	RefundMethodStoreCredit,
}

// String implements fmt.Stringer.
func (m RefundMethod) String() string {
	return string(m)
}

// IsValid reports whether the value is a known RefundMethod.
func (m RefundMethod) IsValid() bool {
	for _, candidate := range validRefundMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseRefundMethod converts raw input into a RefundMethod.
func ParseRefundMethod(value string) (RefundMethod, error) {
	for _, candidate := range validRefundMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid refund method %q", value)
}
