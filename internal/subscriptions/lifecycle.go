package subscriptions

import (
	"time"

	"github.com/dmarquezdev/subvault-backend/pkg/enums"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
)

// expiringSoonWindow is the window before expiry during which a subscription
// reports expiring_soon, inclusive of the seventh day.
const expiringSoonWindow = 7 * 24 * time.Hour

// lifetimeYears puts a sentinel far-future expiry on lifetime subscriptions,
// keeping the rest of the date math uniform.
const lifetimeYears = 100

var daysByDuration = map[enums.DurationCode]int{
	enums.DurationOneMonth:    30,
	enums.DurationThreeMonths: 90,
	enums.DurationSixMonths:   180,
	enums.DurationOneYear:     365,
	enums.DurationTwoYears:    730,
}

// ExpiryFromStart computes the expiry date implied by the duration code.
func ExpiryFromStart(start time.Time, duration enums.DurationCode) (time.Time, error) {
	if duration == enums.DurationLifetime {
		return start.AddDate(lifetimeYears, 0, 0), nil
	}
	days, ok := daysByDuration[duration]
	if !ok {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown duration code")
	}
	return start.Add(time.Duration(days) * 24 * time.Hour), nil
}

// DeriveStatus computes the lifecycle state from the clock and the expiry
// date alone. The boundary is inclusive toward expiry: a subscription exactly
// at its expiry date is expired, and one expiring in exactly seven days is
// expiring_soon. Cancelled is sticky and handled by callers, never here.
func DeriveStatus(now, expiry time.Time) enums.SubscriptionStatus {
	if !now.Before(expiry) {
		return enums.SubscriptionStatusExpired
	}
	if expiry.Sub(now) <= expiringSoonWindow {
		return enums.SubscriptionStatusExpiringSoon
	}
	return enums.SubscriptionStatusActive
}
