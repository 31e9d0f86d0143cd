package currency

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dmarquezdev/subvault-backend/pkg/enums"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
)

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetForever(ctx context.Context, key string, value any) error
	PreferenceKey(scope, id string) string
}

// PreferenceRepository persists the per-customer display currency selection.
// The preference survives sessions and defaults to the base currency.
type PreferenceRepository struct {
	store kvStore
}

// NewPreferenceRepository builds a repository over the shared key-value store.
func NewPreferenceRepository(store kvStore) (*PreferenceRepository, error) {
	if store == nil {
		return nil, fmt.Errorf("kv store required")
	}
	return &PreferenceRepository{store: store}, nil
}

// Get returns the stored preference, or the base currency when none is set or
// the stored value is no longer a recognized code.
func (r *PreferenceRepository) Get(ctx context.Context, authCodeID string) (enums.CurrencyCode, error) {
	raw, err := r.store.Get(ctx, r.store.PreferenceKey("currency", authCodeID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return enums.BaseCurrency, nil
		}
		return enums.BaseCurrency, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load currency preference")
	}
	code, err := enums.ParseCurrencyCode(raw)
	if err != nil {
		return enums.BaseCurrency, nil
	}
	return code, nil
}

// Set stores the preference without expiry.
func (r *PreferenceRepository) Set(ctx context.Context, authCodeID string, code enums.CurrencyCode) error {
	if !code.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown currency")
	}
	if err := r.store.SetForever(ctx, r.store.PreferenceKey("currency", authCodeID), code.String()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store currency preference")
	}
	return nil
}
