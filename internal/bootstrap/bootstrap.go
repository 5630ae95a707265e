// Package bootstrap holds the process setup shared by the api, cron-worker,
// and outbox-publisher binaries: env loading, config, logger, database, and
// ordered shutdown of whatever was opened.
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/breezepoint/breezepoint-backend/pkg/config"
	"github.com/breezepoint/breezepoint-backend/pkg/db"
	"github.com/breezepoint/breezepoint-backend/pkg/instance"
	"github.com/breezepoint/breezepoint-backend/pkg/logger"
	"github.com/breezepoint/breezepoint-backend/pkg/migrate"
	"github.com/breezepoint/breezepoint-backend/pkg/redis"
)

type closer struct {
	name  string
	close func() error
}

// Runtime is what every binary gets after Start. Close releases resources
// in reverse order of acquisition.
type Runtime struct {
	Kind   string
	Config *config.Config
	Logger *logger.Logger
	DB     *db.Client

	closers []closer
}

// Main runs fn inside a started Runtime and returns the process exit code.
func Main(ctx context.Context, kind string, fn func(context.Context, *Runtime) error) int {
	rt, err := Start(ctx, kind)
	if err != nil {
		logger.New(logger.Options{ServiceName: kind}).Error(ctx, kind+".bootstrap_failed", err)
		return 1
	}
	defer rt.Close()

	ctx = rt.BaseContext(ctx)
	if err := fn(ctx, rt); err != nil {
		rt.Logger.Error(ctx, kind+".stopped", err)
		return 1
	}
	rt.Logger.Info(ctx, kind+".shutdown_complete")
	return 0
}

// Start loads .env and config, then opens the database and applies dev
// migrations when enabled.
func Start(ctx context.Context, kind string) (*Runtime, error) {
	bootLog := logger.New(logger.Options{ServiceName: kind})
	if err := godotenv.Load(); err != nil {
		bootLog.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Service.Kind = kind

	rt := &Runtime{
		Kind:   kind,
		Config: cfg,
		Logger: logger.New(logger.Options{
			ServiceName: kind,
			Level:       cfg.App.LogLevel,
			WarnStack:   cfg.App.LogWarnStack,
		}),
	}

	client, err := db.New(ctx, cfg.DB, rt.Logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	rt.DB = client
	rt.OnClose("database", client.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, rt.Logger, client); err != nil {
		rt.Close()
		return nil, fmt.Errorf("dev migrations: %w", err)
	}
	return rt, nil
}

// Redis dials Redis and registers it for Close.
func (rt *Runtime) Redis(ctx context.Context) (*redis.Client, error) {
	client, err := redis.New(ctx, rt.Config.Redis, rt.Logger)
	if err != nil {
		return nil, fmt.Errorf("open redis: %w", err)
	}
	rt.OnClose("redis", client.Close)
	return client, nil
}

// OnClose registers fn to run during Close.
func (rt *Runtime) OnClose(name string, fn func() error) {
	rt.closers = append(rt.closers, closer{name: name, close: fn})
}

// Close is safe to call more than once.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		c := rt.closers[i]
		if err := c.close(); err != nil && rt.Logger != nil {
			rt.Logger.Error(rt.Logger.WithField(context.Background(), "resource", c.name), "shutdown.close_failed", err)
		}
	}
	rt.closers = nil
}

// BaseContext tags ctx with the fields every log line of the process carries.
func (rt *Runtime) BaseContext(ctx context.Context) context.Context {
	env := ""
	if rt.Config != nil {
		env = rt.Config.App.Env
	}
	return rt.Logger.WithFields(ctx, map[string]any{
		"env":         env,
		"serviceKind": rt.Kind,
		"instance":    instance.GetID(),
		"pid":         os.Getpid(),
	})
}
