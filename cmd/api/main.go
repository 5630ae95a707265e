package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/breezepoint/breezepoint-backend/api/routes"
	"github.com/breezepoint/breezepoint-backend/internal/assignments"
	"github.com/breezepoint/breezepoint-backend/internal/bootstrap"
	"github.com/breezepoint/breezepoint-backend/internal/catalog"
	"github.com/breezepoint/breezepoint-backend/internal/orders"
	"github.com/breezepoint/breezepoint-backend/internal/suppliers"
	"github.com/breezepoint/breezepoint-backend/pkg/env"
	"github.com/breezepoint/breezepoint-backend/pkg/metrics"
	"github.com/breezepoint/breezepoint-backend/pkg/outbox"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := bootstrap.Main(ctx, "api", run)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, rt *bootstrap.Runtime) error {
	cfg, logg, conn := rt.Config, rt.Logger, rt.DB.DB()

	redisClient, err := rt.Redis(ctx)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	assignmentService, err := assignments.NewService(assignments.ServiceParams{
		Logger:    logg,
		Tx:        rt.DB,
		Orders:    orders.NewRepository(conn),
		Catalog:   catalog.NewRepository(conn),
		Suppliers: suppliers.NewRepository(conn),
		Outbox:    outbox.NewService(outbox.NewRepository(conn), logg),
		Metrics:   metrics.NewMatchingMetrics(reg),
	})
	if err != nil {
		return fmt.Errorf("assignment service: %w", err)
	}

	// Requests keep the process log fields but not the signal cancellation,
	// so Shutdown can drain them.
	baseCtx := context.WithoutCancel(ctx)
	server := &http.Server{
		Addr:              ":" + env.Get("PORT", cfg.App.Port),
		Handler:           routes.NewRouter(cfg, logg, rt.DB, redisClient, reg, assignmentService, outbox.NewDLQRepository(conn)),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	return serve(ctx, rt, server)
}

// serve blocks until the server fails or ctx is canceled, then drains
// in-flight requests for up to shutdownTimeout.
func serve(ctx context.Context, rt *bootstrap.Runtime, server *http.Server) error {
	logg := rt.Logger
	ctx = logg.WithField(ctx, "addr", server.Addr)

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "api.listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
