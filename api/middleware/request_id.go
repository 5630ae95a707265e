package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/breezepoint/breezepoint-backend/pkg/logger"
)

const (
	requestIDHeader    = "X-Request-Id"
	maxRequestIDLength = 128
)

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]+$`)

// RequestID propagates a caller-supplied X-Request-Id, or mints a uuid when
// the header is absent, oversized, or carries characters unsafe for logs.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := acceptedRequestID(r.Header.Get(requestIDHeader))
			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func acceptedRequestID(incoming string) string {
	if incoming == "" || len(incoming) > maxRequestIDLength || !requestIDPattern.MatchString(incoming) {
		return uuid.NewString()
	}
	return incoming
}
