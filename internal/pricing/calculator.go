// Package pricing computes deterministic base-currency amounts for a
// (sharing tier, duration) pair. All persisted prices come from these tables
// or from an explicit per-subscription override; nothing else sets an amount.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/dmarquezdev/subvault-backend/pkg/enums"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
)

var basePriceByTier = map[enums.SharingTier]decimal.Decimal{
	enums.SharingTierShared:      decimal.NewFromInt(5),
	enums.SharingTierSemiPrivate: decimal.NewFromInt(10),
	enums.SharingTierPrivate:     decimal.NewFromInt(15),
}

var multiplierByDuration = map[enums.DurationCode]decimal.Decimal{
	enums.DurationOneMonth:    decimal.NewFromInt(1),
	enums.DurationThreeMonths: decimal.RequireFromString("2.5"),
	enums.DurationSixMonths:   decimal.RequireFromString("4.5"),
	enums.DurationOneYear:     decimal.NewFromInt(8),
	enums.DurationTwoYears:    decimal.NewFromInt(14),
	enums.DurationLifetime:    decimal.NewFromInt(25),
}

// Compute returns base(tier) x multiplier(duration) rounded to two decimal
// places. Unknown codes are rejected rather than silently defaulted.
func Compute(tier enums.SharingTier, duration enums.DurationCode) (decimal.Decimal, error) {
	base, ok := basePriceByTier[tier]
	if !ok {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "unknown sharing tier")
	}
	multiplier, ok := multiplierByDuration[duration]
	if !ok {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "unknown duration code")
	}
	return base.Mul(multiplier).Round(2), nil
}

// Effective returns the custom override verbatim when present, otherwise the
// computed table price. A custom price always wins; the only validation is that
// it must be non-negative.
func Effective(custom *decimal.Decimal, tier enums.SharingTier, duration enums.DurationCode) (decimal.Decimal, error) {
	if custom != nil {
		if custom.IsNegative() {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "custom price must be non-negative")
		}
		return *custom, nil
	}
	return Compute(tier, duration)
}
