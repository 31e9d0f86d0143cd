package enums

import "fmt"

// DurationCode is the billing period token attached to a subscription. It drives
// both the price multiplier and the expiry computation.
type DurationCode string

const (
	DurationOneMonth    DurationCode = "1_month"
	DurationThreeMonths DurationCode = "3_months"
	DurationSixMonths   DurationCode = "6_months"
	DurationOneYear     DurationCode = "1_year"
	DurationTwoYears    DurationCode = "2_years"
	DurationLifetime    DurationCode = "lifetime"
)

var validDurationCodes = []DurationCode{
	DurationOneMonth,
	DurationThreeMonths,
	DurationSixMonths,
	DurationOneYear,
	DurationTwoYears,
	DurationLifetime,
}

// String implements fmt.Stringer.
func (d DurationCode) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DurationCode.
func (d DurationCode) IsValid() bool {
	for _, candidate := range validDurationCodes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDurationCode converts raw input into a DurationCode.
func ParseDurationCode(value string) (DurationCode, error) {
	for _, candidate := range validDurationCodes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid duration code %q", value)
}

// DurationCodes returns every valid duration in ascending length order.
func DurationCodes() []DurationCode {
	codes := make([]DurationCode, len(validDurationCodes))
	copy(codes, validDurationCodes)
	return codes
}
