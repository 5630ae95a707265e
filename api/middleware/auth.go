package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/breezepoint/breezepoint-backend/api/responses"
	pkgAuth "github.com/breezepoint/breezepoint-backend/pkg/auth"
	"github.com/breezepoint/breezepoint-backend/pkg/config"
	pkgerrors "github.com/breezepoint/breezepoint-backend/pkg/errors"
	"github.com/breezepoint/breezepoint-backend/pkg/logger"
)

const bearerScheme = "bearer"

// Auth verifies the bearer token and attaches the caller's Principal to the
// request context, tagging the request logger with the same identity.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			p := Principal{UserID: claims.UserID, Role: claims.Role, SupplierID: claims.SupplierID}
			ctx := tagLogger(WithPrincipal(r.Context(), p), logg, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken accepts "Bearer <token>" in any case as well as a bare token.
func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if scheme, rest, found := strings.Cut(header, " "); found && strings.EqualFold(scheme, bearerScheme) {
		header = strings.TrimSpace(rest)
	}
	return header, header != ""
}

func tagLogger(ctx context.Context, logg *logger.Logger, p Principal) context.Context {
	if logg == nil {
		return ctx
	}
	ctx = logg.WithUserID(ctx, p.UserID.String())
	ctx = logg.WithActorRole(ctx, p.Role.String())
	if p.SupplierID != nil {
		ctx = logg.WithSupplierID(ctx, p.SupplierID.String())
	}
	return ctx
}
