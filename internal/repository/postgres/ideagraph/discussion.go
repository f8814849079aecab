package ideagraph

import (
	"context"
	"fmt"

	"agora/internal/domain"
	models "agora/internal/domain/models/ideagraph"
	graphRepo "agora/internal/domain/repositories/ideagraph"
	"agora/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDiscussionRepository implements the DiscussionRepository interface
type PostgresDiscussionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewDiscussionRepository creates a new discussion repository
func NewDiscussionRepository(config *postgres.RepositoryConfig) graphRepo.DiscussionRepository {
	return &PostgresDiscussionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new discussion
func (r *PostgresDiscussionRepository) Create(ctx context.Context, d *models.Discussion) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, slug, title, owner_id, open, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.tables.Discussions)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query, d.ID, d.Slug, d.Title, d.OwnerID, d.Open, d.CreatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("discussion '%s' already exists", d.Slug),
				ResourceType: "discussion",
			}
		}
		return fmt.Errorf("create discussion: %w", err)
	}
	return nil
}

// GetByID retrieves a discussion by ID
func (r *PostgresDiscussionRepository) GetByID(ctx context.Context, id string) (*models.Discussion, error) {
	query := fmt.Sprintf(`
		SELECT id, slug, title, owner_id, open, created_at
		FROM %s
		WHERE id = $1
	`, r.tables.Discussions)

	var d models.Discussion
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(&d.ID, &d.Slug, &d.Title, &d.OwnerID, &d.Open, &d.CreatedAt)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("discussion %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get discussion: %w", err)
	}
	return &d, nil
}

// List returns all discussions ordered by creation
func (r *PostgresDiscussionRepository) List(ctx context.Context) ([]models.Discussion, error) {
	query := fmt.Sprintf(`
		SELECT id, slug, title, owner_id, open, created_at
		FROM %s
		ORDER BY created_at, id
	`, r.tables.Discussions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list discussions: %w", err)
	}
	defer rows.Close()

	discussions := []models.Discussion{}
	for rows.Next() {
		var d models.Discussion
		if err := rows.Scan(&d.ID, &d.Slug, &d.Title, &d.OwnerID, &d.Open, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan discussion: %w", err)
		}
		discussions = append(discussions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate discussions: %w", err)
	}
	return discussions, nil
}

// NewRepositories wires every graph repository over the configured pool
func NewRepositories(config *postgres.RepositoryConfig) graphRepo.Repositories {
	return graphRepo.Repositories{
		Discussions: NewDiscussionRepository(config),
		Ideas:       NewIdeaRepository(config),
		Links:       NewLinkRepository(config),
		Syntheses:   NewSynthesisRepository(config),
		TextBundles: NewTextBundleRepository(config),
		Tx:          postgres.NewTransactionManager(config.Pool, config.Logger),
	}
}
