package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"agora/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Discussions    string
	TextBundles    string
	Ideas          string
	Links          string
	Syntheses      string
	SynthesisIdeas string
	SynthesisLinks string
	Prefix         string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Discussions:    fmt.Sprintf("%sdiscussions", prefix),
		TextBundles:    fmt.Sprintf("%stext_bundles", prefix),
		Ideas:          fmt.Sprintf("%sideas", prefix),
		Links:          fmt.Sprintf("%sidea_links", prefix),
		Syntheses:      fmt.Sprintf("%ssyntheses", prefix),
		SynthesisIdeas: fmt.Sprintf("%ssynthesis_ideas", prefix),
		SynthesisLinks: fmt.Sprintf("%ssynthesis_links", prefix),
		Prefix:         prefix,
	}
}

// CreateConnectionPool creates a new pgx connection pool.
//
// PgBouncer in transaction pooling mode (port 6543) does not support prepared
// statements, so the pool switches to QueryExecModeCacheDescribe there unless the
// connection string already sets default_query_exec_mode. Dynamic table prefixes
// are interpolated before the statement reaches the server, so each environment
// gets its own cached statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool.
// This enables repositories to automatically participate in transactions when they exist.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
