// Package store opens the backend selected by STORE_DRIVER and hands out
// its repositories.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/db"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/repo/memory"
	mongorepo "github.com/geocoder89/taskhub/internal/repo/mongo"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
)

type Store struct {
	Driver string
	Users  user.Repository
	Tasks  task.Repository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping backs the readiness check.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

func Open(ctx context.Context, cfg config.Config, obs observability.DBObserver, log *slog.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := mongorepo.Connect(ctx, cfg.MongoURL)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		database := client.Database(cfg.MongoDatabase)
		if err := mongorepo.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		log.Info("store connected", "driver", cfg.StoreDriver, "database", cfg.MongoDatabase)

		return &Store{
			Driver: cfg.StoreDriver,
			Users:  mongorepo.NewUsersRepo(database, obs),
			Tasks:  mongorepo.NewTasksRepo(database, obs),
			ping:   func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:  client.Disconnect,
		}, nil

	case config.StorePostgres:
		if err := db.Migrate(ctx, cfg.DBURL); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Info("store connected", "driver", cfg.StoreDriver)

		return &Store{
			Driver: cfg.StoreDriver,
			Users:  postgres.NewUsersRepo(pool, obs),
			Tasks:  postgres.NewTasksRepo(pool, obs),
			ping:   pool.Ping,
			close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case config.StoreMemory:
		log.Warn("using in-memory store; data is lost on restart")
		return &Store{
			Driver: cfg.StoreDriver,
			Users:  memory.NewUsersRepo(),
			Tasks:  memory.NewTasksRepo(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
