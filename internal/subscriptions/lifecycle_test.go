package subscriptions

import (
	"testing"
	"time"

	"github.com/dmarquezdev/subvault-backend/pkg/enums"
)

func TestExpiryFromStart_DayTable(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		duration enums.DurationCode
		days     int
	}{
		{enums.DurationOneMonth, 30},
		{enums.DurationThreeMonths, 90},
		{enums.DurationSixMonths, 180},
		{enums.DurationOneYear, 365},
		{enums.DurationTwoYears, 730},
	}
	for _, tc := range cases {
		got, err := ExpiryFromStart(start, tc.duration)
		if err != nil {
			t.Fatalf("ExpiryFromStart(%s): %v", tc.duration, err)
		}
		want := start.Add(time.Duration(tc.days) * 24 * time.Hour)
		if !got.Equal(want) {
			t.Fatalf("ExpiryFromStart(%s) = %s, want %s", tc.duration, got, want)
		}
	}
}

func TestExpiryFromStart_Lifetime(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	got, err := ExpiryFromStart(start, enums.DurationLifetime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Year() != start.Year()+100 {
		t.Fatalf("lifetime expiry year = %d, want %d", got.Year(), start.Year()+100)
	}
	if DeriveStatus(time.Now(), got) != enums.SubscriptionStatusActive {
		t.Fatal("lifetime subscription must derive active")
	}
}

func TestExpiryFromStart_UnknownDuration(t *testing.T) {
	if _, err := ExpiryFromStart(time.Now(), enums.DurationCode("4_months")); err == nil {
		t.Fatal("expected error for unknown duration")
	}
}

func TestDeriveStatus_Boundaries(t *testing.T) {
	now := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		expiry time.Time
		want   enums.SubscriptionStatus
	}{
		{"expired exactly now", now, enums.SubscriptionStatusExpired},
		{"expired in the past", now.Add(-time.Hour), enums.SubscriptionStatusExpired},
		{"one second before expiry", now.Add(time.Second), enums.SubscriptionStatusExpiringSoon},
		{"exactly seven days out", now.Add(7 * 24 * time.Hour), enums.SubscriptionStatusExpiringSoon},
		{"just over seven days out", now.Add(7*24*time.Hour + time.Second), enums.SubscriptionStatusActive},
		{"a month out", now.Add(30 * 24 * time.Hour), enums.SubscriptionStatusActive},
	}
	for _, tc := range cases {
		if got := DeriveStatus(now, tc.expiry); got != tc.want {
			t.Fatalf("%s: DeriveStatus = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestDeriveStatus_Idempotent(t *testing.T) {
	now := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	expiry := now.Add(3 * 24 * time.Hour)
	first := DeriveStatus(now, expiry)
	second := DeriveStatus(now, expiry)
	if first != second {
		t.Fatalf("derivation not idempotent: %s then %s", first, second)
	}
}
