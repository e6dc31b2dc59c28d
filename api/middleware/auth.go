package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/retailops-labs/retailops-backend/api/responses"
	pkgAuth "github.com/retailops-labs/retailops-backend/pkg/auth"
	"github.com/retailops-labs/retailops-backend/pkg/config"
	pkgerrors "github.com/retailops-labs/retailops-backend/pkg/errors"
	"github.com/retailops-labs/retailops-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// operator identity, tenant, and role from the claims.
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

			ctx := context.WithValue(r.Context(), ctxOperatorID, claims.OperatorID.String())
			ctx = context.WithValue(ctx, ctxTenantID, claims.TenantID.String())
			ctx = context.WithValue(ctx, ctxRole, string(claims.Role))

			if logg != nil {
				ctx = logg.WithOperatorID(ctx, claims.OperatorID.String())
				ctx = logg.WithTenantID(ctx, claims.TenantID.String())
				ctx = logg.WithField(ctx, "actor_role", string(claims.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
