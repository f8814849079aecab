package ideagraph

import (
	"context"
	"fmt"
	"time"

	"agora/internal/domain"
	models "agora/internal/domain/models/ideagraph"
	graphRepo "agora/internal/domain/repositories/ideagraph"
	"agora/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresIdeaRepository implements the IdeaRepository interface
type PostgresIdeaRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewIdeaRepository creates a new idea repository
func NewIdeaRepository(config *postgres.RepositoryConfig) graphRepo.IdeaRepository {
	return &PostgresIdeaRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts an idea row
func (r *PostgresIdeaRepository) Create(ctx context.Context, idea *models.Idea) error {
	idea.AssignIdentity()

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, r.tables.Ideas, ideaColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		idea.ID,
		idea.BaseID,
		idea.TombstoneDate,
		idea.DiscussionID,
		idea.Kind,
		idea.Title,
		idea.Description,
		idea.Hidden,
		idea.CreatorID,
		idea.SemanticType,
		idea.PubState,
		idea.CreatedAt,
		idea.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			// Either a second live row for the same base id or a second live root
			return &domain.ConflictError{
				Message:      fmt.Sprintf("idea %s already has a live version", idea.BaseID),
				ResourceType: "idea",
				ResourceID:   idea.BaseID,
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("discussion %s: %w", idea.DiscussionID, domain.ErrNotFound)
		}
		return fmt.Errorf("create idea: %w", err)
	}
	return nil
}

// GetLive retrieves the live row of a logical idea
func (r *PostgresIdeaRepository) GetLive(ctx context.Context, baseID string) (*models.Idea, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE base_id = $1 AND tombstone_date IS NULL
	`, ideaColumns, r.tables.Ideas)

	executor := postgres.GetExecutor(ctx, r.pool)
	idea, err := scanIdea(executor.QueryRow(ctx, query, baseID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("idea %s: %w", baseID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get idea: %w", err)
	}
	return idea, nil
}

// GetByID retrieves a physical row regardless of its tombstone
func (r *PostgresIdeaRepository) GetByID(ctx context.Context, id string) (*models.Idea, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, ideaColumns, r.tables.Ideas)

	executor := postgres.GetExecutor(ctx, r.pool)
	idea, err := scanIdea(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("idea row %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get idea row: %w", err)
	}
	return idea, nil
}

// GetLiveMany retrieves live rows keyed by base id
func (r *PostgresIdeaRepository) GetLiveMany(ctx context.Context, baseIDs []string) (map[string]*models.Idea, error) {
	result := make(map[string]*models.Idea, len(baseIDs))
	if len(baseIDs) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE base_id = ANY($1) AND tombstone_date IS NULL
	`, ideaColumns, r.tables.Ideas)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, baseIDs)
	if err != nil {
		return nil, fmt.Errorf("get ideas: %w", err)
	}
	ideas, err := collectIdeas(rows)
	if err != nil {
		return nil, err
	}
	for i := range ideas {
		result[ideas[i].BaseID] = &ideas[i]
	}
	return result, nil
}

// Tombstone marks a live row as historical
func (r *PostgresIdeaRepository) Tombstone(ctx context.Context, id string, at time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s SET tombstone_date = $1
		WHERE id = $2 AND tombstone_date IS NULL
	`, r.tables.Ideas)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("tombstone idea: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("live idea row %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListLive returns every live idea of a discussion
func (r *PostgresIdeaRepository) ListLive(ctx context.Context, discussionID string) ([]models.Idea, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE discussion_id = $1 AND tombstone_date IS NULL
		ORDER BY base_id
	`, ideaColumns, r.tables.Ideas)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, discussionID)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	return collectIdeas(rows)
}

// ListLiveRoots returns the live root ideas of a discussion
func (r *PostgresIdeaRepository) ListLiveRoots(ctx context.Context, discussionID string) ([]models.Idea, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE discussion_id = $1 AND kind = $2 AND tombstone_date IS NULL
		ORDER BY base_id
	`, ideaColumns, r.tables.Ideas)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, discussionID, models.IdeaKindRoot)
	if err != nil {
		return nil, fmt.Errorf("list root ideas: %w", err)
	}
	return collectIdeas(rows)
}
