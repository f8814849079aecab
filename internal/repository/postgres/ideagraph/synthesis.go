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

const synthesisColumns = `id, discussion_id, state, subject_id, introduction_id, conclusion_id,
	source_id, creator_id, created_at, published_at`

// PostgresSynthesisRepository implements the SynthesisRepository interface
type PostgresSynthesisRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewSynthesisRepository creates a new synthesis repository
func NewSynthesisRepository(config *postgres.RepositoryConfig) graphRepo.SynthesisRepository {
	return &PostgresSynthesisRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanSynthesis(row rowScanner) (*models.Synthesis, error) {
	var s models.Synthesis
	err := row.Scan(
		&s.ID,
		&s.DiscussionID,
		&s.State,
		&s.Subject,
		&s.Introduction,
		&s.Conclusion,
		&s.SourceID,
		&s.CreatorID,
		&s.CreatedAt,
		&s.PublishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a synthesis
func (r *PostgresSynthesisRepository) Create(ctx context.Context, s *models.Synthesis) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.tables.Syntheses, synthesisColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		s.ID,
		s.DiscussionID,
		s.State,
		s.Subject,
		s.Introduction,
		s.Conclusion,
		s.SourceID,
		s.CreatorID,
		s.CreatedAt,
		s.PublishedAt,
	)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("discussion %s: %w", s.DiscussionID, domain.ErrNotFound)
		}
		return fmt.Errorf("create synthesis: %w", err)
	}
	return nil
}

// GetByID retrieves a synthesis
func (r *PostgresSynthesisRepository) GetByID(ctx context.Context, id string) (*models.Synthesis, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, synthesisColumns, r.tables.Syntheses)

	executor := postgres.GetExecutor(ctx, r.pool)
	s, err := scanSynthesis(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("synthesis %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get synthesis: %w", err)
	}
	return s, nil
}

// ListByDiscussion returns the syntheses of a discussion, newest first
func (r *PostgresSynthesisRepository) ListByDiscussion(ctx context.Context, discussionID string) ([]models.Synthesis, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE discussion_id = $1
		ORDER BY created_at DESC, id
	`, synthesisColumns, r.tables.Syntheses)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, discussionID)
	if err != nil {
		return nil, fmt.Errorf("list syntheses: %w", err)
	}
	defer rows.Close()

	syntheses := []models.Synthesis{}
	for rows.Next() {
		s, err := scanSynthesis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan synthesis: %w", err)
		}
		syntheses = append(syntheses, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate syntheses: %w", err)
	}
	return syntheses, nil
}

// AddIdea registers an idea as a member. Adding an existing member is a no-op.
func (r *PostgresSynthesisRepository) AddIdea(ctx context.Context, synthesisID, ideaID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (synthesis_id, idea_id) VALUES ($1, $2)
		ON CONFLICT (synthesis_id, idea_id) DO NOTHING
	`, r.tables.SynthesisIdeas)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, synthesisID, ideaID); err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("synthesis %s: %w", synthesisID, domain.ErrNotFound)
		}
		return fmt.Errorf("add synthesis idea: %w", err)
	}
	return nil
}

// RemoveIdea unregisters a member
func (r *PostgresSynthesisRepository) RemoveIdea(ctx context.Context, synthesisID, ideaID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE synthesis_id = $1 AND idea_id = $2`, r.tables.SynthesisIdeas)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, synthesisID, ideaID)
	if err != nil {
		return fmt.Errorf("remove synthesis idea: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("synthesis member %s: %w", ideaID, domain.ErrNotFound)
	}
	return nil
}

// ListIdeaIDs returns member ids in insertion order
func (r *PostgresSynthesisRepository) ListIdeaIDs(ctx context.Context, synthesisID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT idea_id FROM %s
		WHERE synthesis_id = $1
		ORDER BY position
	`, r.tables.SynthesisIdeas)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, synthesisID)
	if err != nil {
		return nil, fmt.Errorf("list synthesis ideas: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan synthesis idea: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate synthesis ideas: %w", err)
	}
	return ids, nil
}

// AddLink attaches a link row to the synthesis
func (r *PostgresSynthesisRepository) AddLink(ctx context.Context, synthesisID, linkID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (synthesis_id, link_id) VALUES ($1, $2)
		ON CONFLICT (synthesis_id, link_id) DO NOTHING
	`, r.tables.SynthesisLinks)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, synthesisID, linkID); err != nil {
		return fmt.Errorf("add synthesis link: %w", err)
	}
	return nil
}

// ListLinks returns the attached link rows
func (r *PostgresSynthesisRepository) ListLinks(ctx context.Context, synthesisID string) ([]models.Link, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s l
		JOIN %s sl ON sl.link_id = l.id
		WHERE sl.synthesis_id = $1
		ORDER BY l.sort_order, l.id
	`, qualified("l", linkColumns), r.tables.Links, r.tables.SynthesisLinks)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, synthesisID)
	if err != nil {
		return nil, fmt.Errorf("list synthesis links: %w", err)
	}
	return collectLinks(rows)
}
