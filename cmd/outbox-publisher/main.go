package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/breezepoint/breezepoint-backend/internal/bootstrap"
	"github.com/breezepoint/breezepoint-backend/pkg/metrics"
	"github.com/breezepoint/breezepoint-backend/pkg/outbox"
	"github.com/breezepoint/breezepoint-backend/pkg/outbox/registry"
)

func main() {
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9102")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := bootstrap.Main(ctx, "outbox-publisher", func(ctx context.Context, rt *bootstrap.Runtime) error {
		return run(ctx, rt, *metricsAddr)
	})
	stop()
	os.Exit(code)
}

func run(ctx context.Context, rt *bootstrap.Runtime, metricsAddr string) error {
	logg := rt.Logger

	brk, topic, err := newBroker(ctx, rt.Config, logg)
	if err != nil {
		return err
	}
	rt.OnClose("broker", brk.Close)

	events, err := registry.NewEventRegistry(topic)
	if err != nil {
		return fmt.Errorf("event registry: %w", err)
	}
	service, err := NewService(ServiceParams{
		Config:        rt.Config.Outbox,
		Logger:        logg,
		DB:            rt.DB,
		Broker:        brk,
		Repository:    outbox.NewRepository(rt.DB.DB()),
		Registry:      events,
		DLQRepository: outbox.NewDLQRepository(rt.DB.DB()),
		Metrics:       metrics.NewOutboxMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		return fmt.Errorf("outbox publisher: %w", err)
	}

	if metricsAddr != "" {
		go metrics.Serve(ctx, logg, metricsAddr, prometheus.DefaultGatherer)
	}

	ctx = logg.WithFields(ctx, map[string]any{"broker": brk.Name(), "topic": topic})
	logg.Info(ctx, "outbox.publisher_started")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
