package middleware

import (
	"net/http"

	"github.com/retailops-labs/retailops-backend/api/responses"
	"github.com/retailops-labs/retailops-backend/pkg/enums"
	pkgerrors "github.com/retailops-labs/retailops-backend/pkg/errors"
	"github.com/retailops-labs/retailops-backend/pkg/logger"
)

// RequireDecisionRole gates suggestion decision endpoints to operators whose
// role may approve or reject.
func RequireDecisionRole(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := enums.ParseOperatorRole(RoleFromContext(r.Context()))
			if !ok || !role.CanDecide() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "approver role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
