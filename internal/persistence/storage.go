package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/contentdesk/internal/config"
	"github.com/spec-kit/contentdesk/internal/session"
)

// Backends holds the connections opened for the configured session driver.
type Backends struct {
	Postgres *Postgres
	Redis    *Redis
	Storage  session.Storage
	// Sessions is set for the postgres driver so the janitor can purge it.
	Sessions *session.PostgresStorage
}

// Open connects the session driver named in cfg, runs migrations when the
// driver is postgres, and seals the storage when a seal secret is set.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backends, error) {
	b := &Backends{}
	ttl := cfg.Session.TTL()

	switch cfg.Session.Driver {
	case config.DriverMemory:
		logger.Warn("memory session driver: sessions are lost on restart")
		b.Storage = session.NewMemoryStorage()
	case config.DriverRedis:
		b.Redis = NewRedis(ctx, cfg.Redis, logger)
		b.Storage = session.NewRedisStorage(b.Redis.Client, cfg.Redis.Prefix, ttl)
	case config.DriverPostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.Postgres = pg
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				b.Close()
				return nil, err
			}
		}
		b.Sessions = session.NewPostgresStorage(pg.Pool, ttl)
		b.Storage = b.Sessions
	default:
		return nil, fmt.Errorf("unknown session driver %q", cfg.Session.Driver)
	}

	if cfg.Session.SealSecret != "" {
		sealed, err := session.Sealed(b.Storage, cfg.Session.SealSecret)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Storage = sealed
	}
	return b, nil
}

// Close releases every open connection.
func (b *Backends) Close() {
	b.Postgres.Close()
	b.Redis.Close()
}
