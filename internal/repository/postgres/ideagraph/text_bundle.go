package ideagraph

import (
	"context"
	"fmt"

	"agora/internal/domain"
	graphRepo "agora/internal/domain/repositories/ideagraph"
	"agora/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresTextBundleRepository stores localized text bundles as JSONB
type PostgresTextBundleRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewTextBundleRepository creates a new text bundle repository
func NewTextBundleRepository(config *postgres.RepositoryConfig) graphRepo.TextBundleRepository {
	return &PostgresTextBundleRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create stores a bundle and returns its handle
func (r *PostgresTextBundleRepository) Create(ctx context.Context, entries map[string]string) (string, error) {
	if entries == nil {
		entries = map[string]string{}
	}
	id := uuid.NewString()

	query := fmt.Sprintf(`INSERT INTO %s (id, entries) VALUES ($1, $2)`, r.tables.TextBundles)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, id, entries); err != nil { // pgx handles map -> JSONB
		return "", fmt.Errorf("create text bundle: %w", err)
	}
	return id, nil
}

// Get returns the entries of a bundle
func (r *PostgresTextBundleRepository) Get(ctx context.Context, id string) (map[string]string, error) {
	query := fmt.Sprintf(`SELECT entries FROM %s WHERE id = $1`, r.tables.TextBundles)

	var entries map[string]string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&entries); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("text bundle %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get text bundle: %w", err)
	}
	return entries, nil
}

// Clone copies a bundle server-side and returns the new handle
func (r *PostgresTextBundleRepository) Clone(ctx context.Context, id string) (string, error) {
	newID := uuid.NewString()

	query := fmt.Sprintf(`
		INSERT INTO %s (id, entries)
		SELECT $1, entries FROM %s WHERE id = $2
	`, r.tables.TextBundles, r.tables.TextBundles)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, newID, id)
	if err != nil {
		return "", fmt.Errorf("clone text bundle: %w", err)
	}
	if result.RowsAffected() == 0 {
		return "", fmt.Errorf("text bundle %s: %w", id, domain.ErrNotFound)
	}
	return newID, nil
}
