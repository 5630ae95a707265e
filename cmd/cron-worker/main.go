package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/breezepoint/breezepoint-backend/internal/bootstrap"
	"github.com/breezepoint/breezepoint-backend/internal/cron"
	"github.com/breezepoint/breezepoint-backend/internal/orders"
	"github.com/breezepoint/breezepoint-backend/pkg/metrics"
	"github.com/breezepoint/breezepoint-backend/pkg/outbox"
)

type options struct {
	once        bool
	metricsAddr string
}

func main() {
	var opts options
	flag.BoolVar(&opts.once, "once", false, "run every job a single time and exit")
	flag.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9101")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := bootstrap.Main(ctx, "cron-worker", func(ctx context.Context, rt *bootstrap.Runtime) error {
		return run(ctx, rt, opts)
	})
	stop()
	os.Exit(code)
}

func run(ctx context.Context, rt *bootstrap.Runtime, opts options) error {
	cfg, logg := rt.Config, rt.Logger

	redisClient, err := rt.Redis(ctx)
	if err != nil {
		return err
	}

	outboxRepo := outbox.NewRepository(rt.DB.DB())
	staleJob, err := cron.NewStaleAssignmentJob(cron.StaleAssignmentJobParams{
		Logger:     logg,
		DB:         rt.DB,
		Orders:     orders.NewRepository(rt.DB.DB()),
		Outbox:     outbox.NewService(outboxRepo, logg),
		PendingTTL: cfg.Assignment.PendingTTL,
	})
	if err != nil {
		return fmt.Errorf("stale assignment job: %w", err)
	}
	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:       logg,
		DB:           rt.DB,
		Outbox:       outboxRepo,
		DeadLetters:  outbox.NewDLQRepository(rt.DB.DB()),
		Retention:    days(cfg.Outbox.RetentionDays),
		DLQRetention: days(cfg.Outbox.DLQRetentionDays),
		MinAttempts:  cfg.Outbox.MaxAttempts,
	})
	if err != nil {
		return fmt.Errorf("outbox retention job: %w", err)
	}
	jobs, err := cron.NewRegistry(staleJob, retentionJob)
	if err != nil {
		return fmt.Errorf("register jobs: %w", err)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker:"+envOrLocal(cfg.App.Env)), 0)
	if err != nil {
		return fmt.Errorf("cron lock: %w", err)
	}
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: jobs,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Assignment.CronInterval,
	})
	if err != nil {
		return fmt.Errorf("cron service: %w", err)
	}

	if opts.once {
		logg.Info(ctx, "cron.run_once")
		return service.RunOnce(ctx)
	}
	if opts.metricsAddr != "" {
		go metrics.Serve(ctx, logg, opts.metricsAddr, prometheus.DefaultGatherer)
	}

	logg.Info(ctx, "cron.worker_started")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func envOrLocal(env string) string {
	if env == "" {
		return "local"
	}
	return env
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
