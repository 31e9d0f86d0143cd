package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dmarquezdev/subvault-backend/pkg/enums"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
)

func TestCompute_Table(t *testing.T) {
	cases := []struct {
		tier     enums.SharingTier
		duration enums.DurationCode
		want     string
	}{
		{enums.SharingTierShared, enums.DurationOneMonth, "5"},
		{enums.SharingTierShared, enums.DurationThreeMonths, "12.5"},
		{enums.SharingTierShared, enums.DurationSixMonths, "22.5"},
		{enums.SharingTierShared, enums.DurationOneYear, "40"},
		{enums.SharingTierShared, enums.DurationTwoYears, "70"},
		{enums.SharingTierShared, enums.DurationLifetime, "125"},
		{enums.SharingTierSemiPrivate, enums.DurationOneMonth, "10"},
		{enums.SharingTierSemiPrivate, enums.DurationOneYear, "80"},
		{enums.SharingTierPrivate, enums.DurationSixMonths, "67.5"},
		{enums.SharingTierPrivate, enums.DurationLifetime, "375"},
	}
	for _, tc := range cases {
		got, err := Compute(tc.tier, tc.duration)
		if err != nil {
			t.Fatalf("Compute(%s, %s): %v", tc.tier, tc.duration, err)
		}
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("Compute(%s, %s) = %s, want %s", tc.tier, tc.duration, got, tc.want)
		}
	}
}

func TestCompute_AllPairsProduct(t *testing.T) {
	for _, tier := range enums.SharingTiers() {
		for _, duration := range enums.DurationCodes() {
			got, err := Compute(tier, duration)
			if err != nil {
				t.Fatalf("Compute(%s, %s): %v", tier, duration, err)
			}
			want := basePriceByTier[tier].Mul(multiplierByDuration[duration]).Round(2)
			if !got.Equal(want) {
				t.Fatalf("Compute(%s, %s) = %s, want %s", tier, duration, got, want)
			}
		}
	}
}

func TestCompute_UnknownCodesRejected(t *testing.T) {
	if _, err := Compute(enums.SharingTier("vip"), enums.DurationOneMonth); err == nil {
		t.Fatal("expected error for unknown tier")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := Compute(enums.SharingTierShared, enums.DurationCode("4_months")); err == nil {
		t.Fatal("expected error for unknown duration")
	}
}

func TestEffective_CustomPriceWins(t *testing.T) {
	custom := decimal.RequireFromString("3.99")
	got, err := Effective(&custom, enums.SharingTierPrivate, enums.DurationLifetime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(custom) {
		t.Fatalf("Effective = %s, want custom %s", got, custom)
	}

	zero := decimal.Zero
	got, err = Effective(&zero, enums.SharingTierShared, enums.DurationOneMonth)
	if err != nil {
		t.Fatalf("unexpected error for zero custom price: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("Effective = %s, want 0", got)
	}
}

func TestEffective_NegativeCustomPriceRejected(t *testing.T) {
	negative := decimal.RequireFromString("-1")
	if _, err := Effective(&negative, enums.SharingTierShared, enums.DurationOneMonth); err == nil {
		t.Fatal("expected validation error for negative custom price")
	}
}

func TestEffective_FallsBackToTable(t *testing.T) {
	got, err := Effective(nil, enums.SharingTierSemiPrivate, enums.DurationOneYear)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("Effective = %s, want 80", got)
	}
}
