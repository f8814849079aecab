package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"agora/internal/config"
	graphRepo "agora/internal/domain/repositories/ideagraph"
	"agora/internal/repository/postgres"
	postgresGraph "agora/internal/repository/postgres/ideagraph"
	"agora/internal/repository/sqlite"
	sqliteGraph "agora/internal/repository/sqlite/ideagraph"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Open connects to the store selected by cfg.StoreDriver, creates the schema
// when missing and returns the graph repositories. The closer releases the
// connection pool or database handle.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (graphRepo.Repositories, io.Closer, error) {
	return open(ctx, cfg, logger, false)
}

// Reset drops every graph table before recreating the schema. It refuses to
// run against the prod environment.
func Reset(ctx context.Context, cfg *config.Config, logger *slog.Logger) (graphRepo.Repositories, io.Closer, error) {
	if cfg.Environment == "prod" {
		return graphRepo.Repositories{}, nil, fmt.Errorf("refusing to drop tables in prod")
	}
	return open(ctx, cfg, logger, true)
}

func open(ctx context.Context, cfg *config.Config, logger *slog.Logger, drop bool) (graphRepo.Repositories, io.Closer, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return graphRepo.Repositories{}, nil, err
		}
		tables := postgres.NewTableNames(cfg.TablePrefix)
		if drop {
			logger.Warn("dropping tables", "table_prefix", cfg.TablePrefix)
			if err := postgres.DropSchema(ctx, pool, tables); err != nil {
				pool.Close()
				return graphRepo.Repositories{}, nil, err
			}
		}
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			pool.Close()
			return graphRepo.Repositories{}, nil, err
		}
		logger.Info("database connected",
			"driver", cfg.StoreDriver,
			"table_prefix", cfg.TablePrefix,
		)

		repos := postgresGraph.NewRepositories(&postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		})
		return repos, closerFunc(func() error { pool.Close(); return nil }), nil

	case config.StoreSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return graphRepo.Repositories{}, nil, err
		}
		if drop {
			logger.Warn("dropping tables", "path", cfg.SQLitePath)
			if err := db.DropSchema(ctx); err != nil {
				db.Close()
				return graphRepo.Repositories{}, nil, err
			}
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return graphRepo.Repositories{}, nil, err
		}
		logger.Info("database opened",
			"driver", cfg.StoreDriver,
			"path", cfg.SQLitePath,
		)
		return sqliteGraph.NewRepositories(db, logger), db, nil

	default:
		return graphRepo.Repositories{}, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
