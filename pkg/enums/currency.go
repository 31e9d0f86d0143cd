package enums

import "fmt"

// CurrencyCode identifies a display currency. All stored amounts are
// denominated in the base currency (USD); everything else is derived at
// presentation time from the static rate table.
type CurrencyCode string

const (
	CurrencyUSD CurrencyCode = "USD"
	CurrencyEUR CurrencyCode = "EUR"
	CurrencyGBP CurrencyCode = "GBP"
	CurrencyNGN CurrencyCode = "NGN"
	CurrencyPKR CurrencyCode = "PKR"
	CurrencyINR CurrencyCode = "INR"
	CurrencyCAD CurrencyCode = "CAD"
)

// BaseCurrency is the single denomination for persisted monetary values.
const BaseCurrency = CurrencyUSD

var validCurrencyCodes = []CurrencyCode{
	CurrencyUSD,
	CurrencyEUR,
	CurrencyGBP,
	CurrencyNGN,
	CurrencyPKR,
	CurrencyINR,
	CurrencyCAD,
}

// String implements fmt.Stringer.
func (c CurrencyCode) String() string {
	return string(c)
}

// IsValid reports whether the currency is recognized.
func (c CurrencyCode) IsValid() bool {
	for _, candidate := range validCurrencyCodes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCurrencyCode converts a raw string into a CurrencyCode.
func ParseCurrencyCode(value string) (CurrencyCode, error) {
	for _, candidate := range validCurrencyCodes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}

// CurrencyCodes returns every supported currency.
func CurrencyCodes() []CurrencyCode {
	codes := make([]CurrencyCode, len(validCurrencyCodes))
	copy(codes, validCurrencyCodes)
	return codes
}
