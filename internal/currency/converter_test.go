package currency

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/dmarquezdev/subvault-backend/pkg/enums"
)

func TestConvert_BaseCurrencyRoundTrips(t *testing.T) {
	amount := decimal.RequireFromString("123.45")
	got, err := Convert(amount, enums.BaseCurrency)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(amount) {
		t.Fatalf("Convert(base) = %s, want %s", got, amount)
	}
}

func TestConvert_AppliesRate(t *testing.T) {
	amount := decimal.NewFromInt(10)
	got, err := Convert(amount, enums.CurrencyNGN)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(16000)) {
		t.Fatalf("Convert(10, NGN) = %s, want 16000", got)
	}
}

func TestConvert_UnknownCurrency(t *testing.T) {
	if _, err := Convert(decimal.NewFromInt(1), enums.CurrencyCode("XYZ")); err == nil {
		t.Fatal("expected error for unknown currency")
	}
}

func TestFormat_TwoDecimalsAndSeparators(t *testing.T) {
	amount := decimal.RequireFromString("16000")
	got := Format(&amount, enums.CurrencyNGN, true)
	if got != "₦16,000.00" {
		t.Fatalf("Format = %q, want ₦16,000.00", got)
	}

	small := decimal.RequireFromString("5")
	if got := Format(&small, enums.CurrencyUSD, true); got != "$5.00" {
		t.Fatalf("Format = %q, want $5.00", got)
	}
	if got := Format(&small, enums.CurrencyUSD, false); got != "5.00" {
		t.Fatalf("Format = %q, want 5.00", got)
	}
}

func TestFormat_NilAmountRendersZero(t *testing.T) {
	if got := Format(nil, enums.CurrencyUSD, true); got != "$0.00" {
		t.Fatalf("Format(nil) = %q, want $0.00", got)
	}
}

func TestSafeAmount_GuardsNaNAndInf(t *testing.T) {
	for _, value := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := SafeAmount(value); !got.IsZero() {
			t.Fatalf("SafeAmount(%v) = %s, want 0", value, got)
		}
	}
	nan := SafeAmount(math.NaN())
	if got := Format(&nan, enums.CurrencyUSD, true); got != "$0.00" {
		t.Fatalf("Format(NaN) = %q, want $0.00", got)
	}
}

func TestConvertAndFormat_UnknownTargetFallsBackToBase(t *testing.T) {
	got := ConvertAndFormat(decimal.NewFromInt(5), enums.CurrencyCode("XYZ"), true)
	if got != "$5.00" {
		t.Fatalf("ConvertAndFormat = %q, want $5.00", got)
	}
}

type fakeKV struct {
	values map[string]string
	getErr error
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeKV) SetForever(ctx context.Context, key string, value any) error {
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[key] = value.(string)
	return nil
}

func (f *fakeKV) PreferenceKey(scope, id string) string {
	return "sv:preference:" + scope + ":" + id
}

func TestPreferenceRepository_DefaultsToBase(t *testing.T) {
	repo, err := NewPreferenceRepository(&fakeKV{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	code, err := repo.Get(context.Background(), "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != enums.BaseCurrency {
		t.Fatalf("Get = %s, want base currency", code)
	}
}

func TestPreferenceRepository_RoundTrip(t *testing.T) {
	kv := &fakeKV{}
	repo, _ := NewPreferenceRepository(kv)
	if err := repo.Set(context.Background(), "abc", enums.CurrencyEUR); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	code, err := repo.Get(context.Background(), "abc")
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if code != enums.CurrencyEUR {
		t.Fatalf("Get = %s, want EUR", code)
	}
}

func TestPreferenceRepository_RejectsUnknownCurrency(t *testing.T) {
	repo, _ := NewPreferenceRepository(&fakeKV{})
	if err := repo.Set(context.Background(), "abc", enums.CurrencyCode("XYZ")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestPreferenceRepository_StoreFailureSurfaces(t *testing.T) {
	repo, _ := NewPreferenceRepository(&fakeKV{getErr: errors.New("down")})
	if _, err := repo.Get(context.Background(), "abc"); err == nil {
		t.Fatal("expected dependency error")
	}
}
