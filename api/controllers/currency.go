package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/dmarquezdev/subvault-backend/api/middleware"
	"github.com/dmarquezdev/subvault-backend/api/responses"
	"github.com/dmarquezdev/subvault-backend/api/validators"
	"github.com/dmarquezdev/subvault-backend/internal/currency"
	"github.com/dmarquezdev/subvault-backend/pkg/enums"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
	"github.com/dmarquezdev/subvault-backend/pkg/logger"
)

type currencyResponse struct {
	Code   enums.CurrencyCode `json:"code"`
	Symbol string             `json:"symbol"`
	Name   string             `json:"name"`
	Rate   decimal.Decimal    `json:"rate"`
}

// CurrencyList returns the supported display currencies with their conversion
// rates relative to the base denomination.
func CurrencyList(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codes := enums.CurrencyCodes()
		out := make([]currencyResponse, 0, len(codes))
		for _, code := range codes {
			rate, err := currency.Rate(code)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			out = append(out, currencyResponse{
				Code:   code,
				Symbol: currency.Symbol(code),
				Name:   currency.DisplayName(code),
				Rate:   rate,
			})
		}
		responses.WriteSuccess(w, out)
	}
}

// CurrencyPreferenceGet returns the caller's display currency, falling back to
// the base currency when none has been stored.
func CurrencyPreferenceGet(prefs *currency.PreferenceRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if prefs == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preference store unavailable"))
			return
		}

		if _, err := actorAuthCodeID(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		code, err := prefs.Get(r.Context(), middleware.AuthCodeIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"currency": string(code)})
	}
}

// CurrencyPreferenceSet stores the caller's display currency.
func CurrencyPreferenceSet(prefs *currency.PreferenceRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if prefs == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preference store unavailable"))
			return
		}

		if _, err := actorAuthCodeID(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setCurrencyPreferenceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		code, err := enums.ParseCurrencyCode(payload.Currency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
			return
		}

		if err := prefs.Set(r.Context(), middleware.AuthCodeIDFromContext(r.Context()), code); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"currency": string(code)})
	}
}

type setCurrencyPreferenceRequest struct {
	Currency string `json:"currency" validate:"required"`
}
