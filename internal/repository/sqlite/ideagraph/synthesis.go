package ideagraph

import (
	"context"
	"database/sql"
	"fmt"

	"agora/internal/domain"
	models "agora/internal/domain/models/ideagraph"
	graphRepo "agora/internal/domain/repositories/ideagraph"
	"agora/internal/repository/sqlite"

	"github.com/google/uuid"
)

const synthesisColumns = `id, discussion_id, state, subject_id, introduction_id, conclusion_id,
	source_id, creator_id, created_at, published_at`

// SQLiteSynthesisRepository implements the SynthesisRepository interface
type SQLiteSynthesisRepository struct {
	db *sqlite.DB
}

// NewSynthesisRepository creates a new synthesis repository
func NewSynthesisRepository(db *sqlite.DB) graphRepo.SynthesisRepository {
	return &SQLiteSynthesisRepository{db: db}
}

func scanSynthesis(row rowScanner) (*models.Synthesis, error) {
	var (
		s         models.Synthesis
		state     string
		created   int64
		published sql.NullInt64
	)
	err := row.Scan(
		&s.ID,
		&s.DiscussionID,
		&state,
		&s.Subject,
		&s.Introduction,
		&s.Conclusion,
		&s.SourceID,
		&s.CreatorID,
		&created,
		&published,
	)
	if err != nil {
		return nil, err
	}
	s.State = models.SynthesisState(state)
	s.CreatedAt = sqlite.FromNanos(created)
	s.PublishedAt = sqlite.FromNullNanos(published)
	return &s, nil
}

// Create inserts a synthesis
func (r *SQLiteSynthesisRepository) Create(ctx context.Context, s *models.Synthesis) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO syntheses (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, synthesisColumns)

	_, err := r.db.GetExecutor(ctx).ExecContext(ctx, query,
		s.ID,
		s.DiscussionID,
		string(s.State),
		s.Subject,
		s.Introduction,
		s.Conclusion,
		s.SourceID,
		s.CreatorID,
		sqlite.Nanos(s.CreatedAt),
		sqlite.NullNanos(s.PublishedAt),
	)
	if err != nil {
		if sqlite.IsForeignKeyError(err) {
			return fmt.Errorf("discussion %s: %w", s.DiscussionID, domain.ErrNotFound)
		}
		return fmt.Errorf("create synthesis: %w", err)
	}
	return nil
}

// GetByID retrieves a synthesis
func (r *SQLiteSynthesisRepository) GetByID(ctx context.Context, id string) (*models.Synthesis, error) {
	query := fmt.Sprintf(`SELECT %s FROM syntheses WHERE id = ?`, synthesisColumns)

	s, err := scanSynthesis(r.db.GetExecutor(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if sqlite.IsNoRowsError(err) {
			return nil, fmt.Errorf("synthesis %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get synthesis: %w", err)
	}
	return s, nil
}

// ListByDiscussion returns the syntheses of a discussion, newest first
func (r *SQLiteSynthesisRepository) ListByDiscussion(ctx context.Context, discussionID string) ([]models.Synthesis, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM syntheses
		WHERE discussion_id = ?
		ORDER BY created_at DESC, id
	`, synthesisColumns)

	rows, err := r.db.GetExecutor(ctx).QueryContext(ctx, query, discussionID)
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
func (r *SQLiteSynthesisRepository) AddIdea(ctx context.Context, synthesisID, ideaID string) error {
	_, err := r.db.GetExecutor(ctx).ExecContext(ctx, `
		INSERT INTO synthesis_ideas (synthesis_id, idea_id, position)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM synthesis_ideas WHERE synthesis_id = ?))
		ON CONFLICT (synthesis_id, idea_id) DO NOTHING
	`, synthesisID, ideaID, synthesisID)
	if err != nil {
		if sqlite.IsForeignKeyError(err) {
			return fmt.Errorf("synthesis %s: %w", synthesisID, domain.ErrNotFound)
		}
		return fmt.Errorf("add synthesis idea: %w", err)
	}
	return nil
}

// RemoveIdea unregisters a member
func (r *SQLiteSynthesisRepository) RemoveIdea(ctx context.Context, synthesisID, ideaID string) error {
	result, err := r.db.GetExecutor(ctx).ExecContext(ctx,
		`DELETE FROM synthesis_ideas WHERE synthesis_id = ? AND idea_id = ?`, synthesisID, ideaID)
	if err != nil {
		return fmt.Errorf("remove synthesis idea: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("synthesis member %s: %w", ideaID, domain.ErrNotFound)
	}
	return nil
}

// ListIdeaIDs returns member ids in insertion order
func (r *SQLiteSynthesisRepository) ListIdeaIDs(ctx context.Context, synthesisID string) ([]string, error) {
	rows, err := r.db.GetExecutor(ctx).QueryContext(ctx, `
		SELECT idea_id FROM synthesis_ideas
		WHERE synthesis_id = ?
		ORDER BY position
	`, synthesisID)
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
func (r *SQLiteSynthesisRepository) AddLink(ctx context.Context, synthesisID, linkID string) error {
	_, err := r.db.GetExecutor(ctx).ExecContext(ctx, `
		INSERT INTO synthesis_links (synthesis_id, link_id) VALUES (?, ?)
		ON CONFLICT (synthesis_id, link_id) DO NOTHING
	`, synthesisID, linkID)
	if err != nil {
		return fmt.Errorf("add synthesis link: %w", err)
	}
	return nil
}

// ListLinks returns the attached link rows
func (r *SQLiteSynthesisRepository) ListLinks(ctx context.Context, synthesisID string) ([]models.Link, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM idea_links l
		JOIN synthesis_links sl ON sl.link_id = l.id
		WHERE sl.synthesis_id = ?
		ORDER BY l.sort_order, l.id
	`, qualifiedLinkColumns)

	rows, err := r.db.GetExecutor(ctx).QueryContext(ctx, query, synthesisID)
	if err != nil {
		return nil, fmt.Errorf("list synthesis links: %w", err)
	}
	return collectLinks(rows)
}
