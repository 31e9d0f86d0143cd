package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmarquezdev/subvault-backend/api/middleware"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
)

// actorAuthCodeID resolves the calling customer's auth code from the request
// context. Admin tokens carry no auth code, which is a forbidden condition on
// customer-scoped routes.
func actorAuthCodeID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.AuthCodeIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "auth code context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid auth code id")
	}
	return id, nil
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param)
	}
	return id, nil
}
