package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cquiz-service/internal/app"
	"cquiz-service/internal/auth"
	"cquiz-service/internal/config"
	"cquiz-service/internal/infra/memory"
	"cquiz-service/internal/infra/postgres"
	redissnapshot "cquiz-service/internal/infra/redis"
	"cquiz-service/internal/infra/sqlite"
	"cquiz-service/internal/logging"
	"github.com/redis/go-redis/v9"
)

// stores bundles the backends selected by config. close releases them.
type stores struct {
	results   app.ResultStore
	users     auth.UserStore
	snapshots app.SnapshotStore
	closers   []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	return logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Color)
}

// openStores wires the result/account store named by store.driver and the
// snapshot store (redis when an address is configured).
func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (*stores, error) {
	s := &stores{}

	switch cfg.Store.Driver {
	case "", "memory":
		s.results = memory.NewResultStore()
		s.users = memory.NewUserStore()
	case "postgres":
		if cfg.Postgres.URL == "" {
			return nil, fmt.Errorf("postgres url not configured")
		}
		group, err := postgres.Migrate(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		if !group.IsZero() {
			log.Info("migrations applied", "group", group.String())
		}
		pool, err := postgres.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		s.results = postgres.NewResultStore(pool)
		s.users = postgres.NewUserStore(pool)
	case "sqlite":
		db, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		s.closers = append(s.closers, func() { _ = db.Close() })
		s.results = db
		s.users = db
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, snapshots will fail until it recovers", "addr", cfg.Redis.Addr, "err", err)
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		s.snapshots = redissnapshot.NewSnapshotStore(client, config.TTLDuration(cfg.Redis.TTL, 24*time.Hour))
	} else {
		s.snapshots = memory.NewSnapshotStore()
	}

	log.Info("stores ready", "driver", cfg.Store.Driver, "redis", cfg.Redis.Addr != "")
	return s, nil
}

// sessionConfig converts the quiz durations to whole-second countdown rules.
func sessionConfig(cfg config.Config) app.SessionConfig {
	def := app.DefaultSessionConfig()
	seconds := func(raw string, fallback int) int {
		return int(config.TTLDuration(raw, time.Duration(fallback)*time.Second) / time.Second)
	}
	return app.SessionConfig{
		Budget:          seconds(cfg.Quiz.Duration, def.Budget),
		WarningAt:       seconds(cfg.Quiz.WarningAt, def.WarningAt),
		CheckpointEvery: seconds(cfg.Quiz.Checkpoint, def.CheckpointEvery),
		TickInterval:    config.TTLDuration(cfg.Quiz.Tick, def.TickInterval),
		SnapshotMaxAge:  config.TTLDuration(cfg.Quiz.SnapshotMaxAge, def.SnapshotMaxAge),
	}
}
