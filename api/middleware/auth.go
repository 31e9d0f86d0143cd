package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmarquezdev/subvault-backend/api/responses"
	pkgAuth "github.com/dmarquezdev/subvault-backend/pkg/auth"
	"github.com/dmarquezdev/subvault-backend/pkg/config"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
	"github.com/dmarquezdev/subvault-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxRole, string(claims.Role))
			if claims.AuthCodeID != nil {
				ctx = context.WithValue(ctx, ctxAuthCodeID, claims.AuthCodeID.String())
			}

			if logg != nil {
				fields := map[string]any{
					"actor_role": string(claims.Role),
				}
				if claims.AuthCodeID != nil {
					fields["auth_code_id"] = claims.AuthCodeID.String()
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
