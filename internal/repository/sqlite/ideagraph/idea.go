package ideagraph

import (
	"context"
	"fmt"
	"time"

	"agora/internal/domain"
	models "agora/internal/domain/models/ideagraph"
	graphRepo "agora/internal/domain/repositories/ideagraph"
	"agora/internal/repository/sqlite"
)

// SQLiteIdeaRepository implements the IdeaRepository interface
type SQLiteIdeaRepository struct {
	db *sqlite.DB
}

// NewIdeaRepository creates a new idea repository
func NewIdeaRepository(db *sqlite.DB) graphRepo.IdeaRepository {
	return &SQLiteIdeaRepository{db: db}
}

// Create inserts an idea row
func (r *SQLiteIdeaRepository) Create(ctx context.Context, idea *models.Idea) error {
	idea.AssignIdentity()

	query := fmt.Sprintf(`
		INSERT INTO ideas (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ideaColumns)

	_, err := r.db.GetExecutor(ctx).ExecContext(ctx, query,
		idea.ID,
		idea.BaseID,
		sqlite.NullNanos(idea.TombstoneDate),
		idea.DiscussionID,
		string(idea.Kind),
		idea.Title,
		idea.Description,
		idea.Hidden,
		idea.CreatorID,
		idea.SemanticType,
		idea.PubState,
		sqlite.Nanos(idea.CreatedAt),
		sqlite.Nanos(idea.UpdatedAt),
	)
	if err != nil {
		if sqlite.IsDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("idea %s already has a live version", idea.BaseID),
				ResourceType: "idea",
				ResourceID:   idea.BaseID,
			}
		}
		if sqlite.IsForeignKeyError(err) {
			return fmt.Errorf("discussion %s: %w", idea.DiscussionID, domain.ErrNotFound)
		}
		return fmt.Errorf("create idea: %w", err)
	}
	return nil
}

// GetLive retrieves the live row of a logical idea
func (r *SQLiteIdeaRepository) GetLive(ctx context.Context, baseID string) (*models.Idea, error) {
	query := fmt.Sprintf(`SELECT %s FROM ideas WHERE base_id = ? AND tombstone_date IS NULL`, ideaColumns)

	idea, err := scanIdea(r.db.GetExecutor(ctx).QueryRowContext(ctx, query, baseID))
	if err != nil {
		if sqlite.IsNoRowsError(err) {
			return nil, fmt.Errorf("idea %s: %w", baseID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get idea: %w", err)
	}
	return idea, nil
}

// GetByID retrieves a physical row regardless of its tombstone
func (r *SQLiteIdeaRepository) GetByID(ctx context.Context, id string) (*models.Idea, error) {
	query := fmt.Sprintf(`SELECT %s FROM ideas WHERE id = ?`, ideaColumns)

	idea, err := scanIdea(r.db.GetExecutor(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if sqlite.IsNoRowsError(err) {
			return nil, fmt.Errorf("idea row %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get idea row: %w", err)
	}
	return idea, nil
}

// GetLiveMany retrieves live rows keyed by base id
func (r *SQLiteIdeaRepository) GetLiveMany(ctx context.Context, baseIDs []string) (map[string]*models.Idea, error) {
	result := make(map[string]*models.Idea, len(baseIDs))
	if len(baseIDs) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM ideas
		WHERE base_id IN (%s) AND tombstone_date IS NULL
	`, ideaColumns, sqlite.Placeholders(len(baseIDs)))

	rows, err := r.db.GetExecutor(ctx).QueryContext(ctx, query, sqlite.StringArgs(baseIDs)...)
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
func (r *SQLiteIdeaRepository) Tombstone(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.GetExecutor(ctx).ExecContext(ctx, `
		UPDATE ideas SET tombstone_date = ?
		WHERE id = ? AND tombstone_date IS NULL
	`, sqlite.Nanos(at), id)
	if err != nil {
		return fmt.Errorf("tombstone idea: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("live idea row %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListLive returns every live idea of a discussion
func (r *SQLiteIdeaRepository) ListLive(ctx context.Context, discussionID string) ([]models.Idea, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM ideas
		WHERE discussion_id = ? AND tombstone_date IS NULL
		ORDER BY base_id
	`, ideaColumns)

	rows, err := r.db.GetExecutor(ctx).QueryContext(ctx, query, discussionID)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	return collectIdeas(rows)
}

// ListLiveRoots returns the live root ideas of a discussion
func (r *SQLiteIdeaRepository) ListLiveRoots(ctx context.Context, discussionID string) ([]models.Idea, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM ideas
		WHERE discussion_id = ? AND kind = ? AND tombstone_date IS NULL
		ORDER BY base_id
	`, ideaColumns)

	rows, err := r.db.GetExecutor(ctx).QueryContext(ctx, query, discussionID, string(models.IdeaKindRoot))
	if err != nil {
		return nil, fmt.Errorf("list root ideas: %w", err)
	}
	return collectIdeas(rows)
}
