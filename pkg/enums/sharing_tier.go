package enums

import "fmt"

// SharingTier is the sharing model sold with a subscription and drives its base price.
type SharingTier string

const (
	SharingTierShared      SharingTier = "shared"
	SharingTierSemiPrivate SharingTier = "semi_private"
	SharingTierPrivate     SharingTier = "private"
)

var validSharingTiers = []SharingTier{
	SharingTierShared,
	SharingTierSemiPrivate,
	SharingTierPrivate,
}

// String implements fmt.Stringer.
func (t SharingTier) String() string {
	return string(t)
}

// IsValid reports whether the value is a known SharingTier.
func (t SharingTier) IsValid() bool {
	for _, candidate := range validSharingTiers {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseSharingTier converts raw input into a SharingTier.
func ParseSharingTier(value string) (SharingTier, error) {
	for _, candidate := range validSharingTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sharing tier %q", value)
}

// SharingTiers returns every valid tier in display order.
func SharingTiers() []SharingTier {
	tiers := make([]SharingTier, len(validSharingTiers))
	copy(tiers, validSharingTiers)
	return tiers
}
