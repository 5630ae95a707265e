package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/breezepoint/breezepoint-backend/pkg/config"
)

// CORS lets the configured admin and supplier front-ends call the API and
// read the request id and replay marker headers.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", idempotencyHeader, requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, replayedHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
