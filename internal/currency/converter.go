// Package currency converts base-currency amounts into display currencies and
// formats them for presentation. Conversion is purely presentational: persisted
// amounts stay in the base currency and every display value is re-derivable
// from the static rate table.
package currency

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/dmarquezdev/subvault-backend/pkg/enums"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
)

// rateByCode is the multiplicative rate relative to the base currency.
// The base currency rate is exactly 1.
var rateByCode = map[enums.CurrencyCode]decimal.Decimal{
	enums.CurrencyUSD: decimal.NewFromInt(1),
	enums.CurrencyEUR: decimal.RequireFromString("0.92"),
	enums.CurrencyGBP: decimal.RequireFromString("0.79"),
	enums.CurrencyNGN: decimal.RequireFromString("1600"),
	enums.CurrencyPKR: decimal.RequireFromString("278"),
	enums.CurrencyINR: decimal.RequireFromString("83"),
	enums.CurrencyCAD: decimal.RequireFromString("1.36"),
}

var symbolByCode = map[enums.CurrencyCode]string{
	enums.CurrencyUSD: "$",
	enums.CurrencyEUR: "€",
	enums.CurrencyGBP: "£",
	enums.CurrencyNGN: "₦",
	enums.CurrencyPKR: "₨",
	enums.CurrencyINR: "₹",
	enums.CurrencyCAD: "CA$",
}

var nameByCode = map[enums.CurrencyCode]string{
	enums.CurrencyUSD: "US Dollar",
	enums.CurrencyEUR: "Euro",
	enums.CurrencyGBP: "British Pound",
	enums.CurrencyNGN: "Nigerian Naira",
	enums.CurrencyPKR: "Pakistani Rupee",
	enums.CurrencyINR: "Indian Rupee",
	enums.CurrencyCAD: "Canadian Dollar",
}

var printer = message.NewPrinter(language.English)

// Rate returns the multiplicative rate for the given currency.
func Rate(code enums.CurrencyCode) (decimal.Decimal, error) {
	rate, ok := rateByCode[code]
	if !ok {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "unknown currency")
	}
	return rate, nil
}

// Symbol returns the display symbol, falling back to the base currency symbol.
func Symbol(code enums.CurrencyCode) string {
	if symbol, ok := symbolByCode[code]; ok {
		return symbol
	}
	return symbolByCode[enums.BaseCurrency]
}

// DisplayName returns the human-readable currency name.
func DisplayName(code enums.CurrencyCode) string {
	if name, ok := nameByCode[code]; ok {
		return name
	}
	return nameByCode[enums.BaseCurrency]
}

// Convert derives the display amount for the target currency. Converting to
// the base currency returns the amount unchanged.
func Convert(amount decimal.Decimal, target enums.CurrencyCode) (decimal.Decimal, error) {
	rate, err := Rate(target)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate).Round(2), nil
}

// SafeAmount normalizes a raw float into a formattable amount. NaN and
// infinities collapse to zero so formatting never renders garbage.
func SafeAmount(value float64) decimal.Decimal {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(value)
}

// Format renders an amount with two fixed decimal places, thousands
// separators, and an optional symbol prefix. A nil amount formats as zero.
func Format(amount *decimal.Decimal, code enums.CurrencyCode, withSymbol bool) string {
	value := decimal.Zero
	if amount != nil {
		value = *amount
	}
	float, _ := value.Round(2).Float64()
	formatted := printer.Sprintf("%v", number.Decimal(float,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
	if withSymbol {
		return Symbol(code) + formatted
	}
	return formatted
}

// ConvertAndFormat converts a base amount into the target currency and formats
// it. Unknown targets fall back to the base currency so the read path never
// fails on a bad preference value.
func ConvertAndFormat(base decimal.Decimal, target enums.CurrencyCode, withSymbol bool) string {
	display, err := Convert(base, target)
	if err != nil {
		display = base
		target = enums.BaseCurrency
	}
	return Format(&display, target, withSymbol)
}
