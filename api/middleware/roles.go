package middleware

import (
	"net/http"

	"github.com/breezepoint/breezepoint-backend/api/responses"
	"github.com/breezepoint/breezepoint-backend/pkg/enums"
	pkgerrors "github.com/breezepoint/breezepoint-backend/pkg/errors"
	"github.com/breezepoint/breezepoint-backend/pkg/logger"
)

// RequireRole rejects callers whose principal does not hold role. It must be
// mounted after Auth.
func RequireRole(role enums.MemberRole, logg *logger.Logger) func(http.Handler) http.Handler {
	denied := pkgerrors.New(pkgerrors.CodeForbidden, "role required").
		WithDetails(map[string]any{"required_role": role.String()})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, ok := PrincipalFromContext(r.Context()); !ok || p.Role != role {
				responses.WriteError(r.Context(), logg, w, denied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
