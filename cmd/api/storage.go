package main

import (
	"context"
	"fmt"

	"github.com/geocoder89/taskhub/internal/accounts"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/db"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/repo/memory"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/geocoder89/taskhub/internal/repo/sqlite"
)

type stores struct {
	users  accounts.UserStore
	tasks  handlers.TaskStore
	checks map[string]handlers.Pinger
	close  func()
}

// openStores connects the configured backend and brings its schema up to date.
func openStores(ctx context.Context, cfg config.Config, prom *observability.Prom) (stores, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return stores{
			users:  memory.NewUsersRepo(),
			tasks:  memory.NewTasksRepo(),
			checks: map[string]handlers.Pinger{},
			close:  func() {},
		}, nil

	case config.StorageSQLite:
		sqlDB, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return stores{}, err
		}

		if err := db.MigrateSQLite(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return stores{}, err
		}

		return stores{
			users:  sqlite.NewUsersRepo(sqlDB, prom),
			tasks:  sqlite.NewTasksRepo(sqlDB, prom),
			checks: map[string]handlers.Pinger{"db": sqlDB.PingContext},
			close:  func() { sqlDB.Close() },
		}, nil

	case config.StoragePostgres:
		pool, err := db.NewPool(cfg.DBURL)
		if err != nil {
			return stores{}, fmt.Errorf("connect postgres: %w", err)
		}

		if err := db.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return stores{}, err
		}

		return stores{
			users:  postgres.NewUsersRepo(pool, prom),
			tasks:  postgres.NewTasksRepo(pool, prom),
			checks: map[string]handlers.Pinger{"db": pool.Ping},
			close:  pool.Close,
		}, nil
	}

	return stores{}, fmt.Errorf("unknown storage backend %q", cfg.Storage)
}
