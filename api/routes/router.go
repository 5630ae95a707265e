package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/breezepoint/breezepoint-backend/api/controllers"
	"github.com/breezepoint/breezepoint-backend/api/middleware"
	"github.com/breezepoint/breezepoint-backend/internal/assignments"
	"github.com/breezepoint/breezepoint-backend/pkg/config"
	"github.com/breezepoint/breezepoint-backend/pkg/db"
	"github.com/breezepoint/breezepoint-backend/pkg/enums"
	"github.com/breezepoint/breezepoint-backend/pkg/logger"
	pkgredis "github.com/breezepoint/breezepoint-backend/pkg/redis"
)

// RedisStore is the slice of the redis client the HTTP layer needs.
type RedisStore interface {
	pkgredis.IdempotencyStore
	pkgredis.Pinger
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisStore RedisStore,
	gatherer prometheus.Gatherer,
	assignmentService assignments.Service,
	deadLetters controllers.DeadLetterLister,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"db":    dbP,
			"redis": redisStore,
		}, logg))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisStore, logg))

		r.Route("/admin/v1", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.MemberRoleAdmin, logg))
			r.Get("/orders/{orderId}/candidates", controllers.AdminOrderCandidates(assignmentService, logg))
			r.Get("/orders/{orderId}/assignments", controllers.AdminOrderAssignments(assignmentService, logg))
			r.Post("/orders/{orderId}/assignments", controllers.AdminAssignSupplier(assignmentService, logg))
			r.Post("/assignments/{assignmentId}/reassign", controllers.AdminReassign(assignmentService, logg))
			r.Get("/outbox/dead-letters", controllers.AdminDeadLetters(deadLetters, logg))
		})

		r.Route("/v1/supplier", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.MemberRoleSupplier, logg))
			r.Post("/assignments/{assignmentId}/status", controllers.SupplierUpdateAssignmentStatus(assignmentService, logg))
		})
	})

	return r
}
