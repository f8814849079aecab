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

// SQLiteLinkRepository implements the LinkRepository interface
type SQLiteLinkRepository struct {
	db *sqlite.DB
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(db *sqlite.DB) graphRepo.LinkRepository {
	return &SQLiteLinkRepository{db: db}
}

// Create inserts a link row
func (r *SQLiteLinkRepository) Create(ctx context.Context, link *models.Link) error {
	link.AssignIdentity()

	query := fmt.Sprintf(`
		INSERT INTO idea_links (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, linkColumns)

	_, err := r.db.GetExecutor(ctx).ExecContext(ctx, query,
		link.ID,
		link.BaseID,
		sqlite.NullNanos(link.TombstoneDate),
		link.DiscussionID,
		link.SourceID,
		link.TargetID,
		link.Order,
		link.LinkType,
		sqlite.Nanos(link.CreatedAt),
	)
	if err != nil {
		if sqlite.IsDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("link %s already has a live version", link.BaseID),
				ResourceType: "link",
				ResourceID:   link.BaseID,
			}
		}
		return fmt.Errorf("create link: %w", err)
	}
	return nil
}

// GetLive retrieves the live row of a logical link
func (r *SQLiteLinkRepository) GetLive(ctx context.Context, baseID string) (*models.Link, error) {
	query := fmt.Sprintf(`SELECT %s FROM idea_links WHERE base_id = ? AND tombstone_date IS NULL`, linkColumns)

	link, err := scanLink(r.db.GetExecutor(ctx).QueryRowContext(ctx, query, baseID))
	if err != nil {
		if sqlite.IsNoRowsError(err) {
			return nil, fmt.Errorf("link %s: %w", baseID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get link: %w", err)
	}
	return link, nil
}

// Tombstone marks a live row as historical
func (r *SQLiteLinkRepository) Tombstone(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.GetExecutor(ctx).ExecContext(ctx, `
		UPDATE idea_links SET tombstone_date = ?
		WHERE id = ? AND tombstone_date IS NULL
	`, sqlite.Nanos(at), id)
	if err != nil {
		return fmt.Errorf("tombstone link: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("live link row %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListLive returns every live link of a discussion
func (r *SQLiteLinkRepository) ListLive(ctx context.Context, discussionID string) ([]models.Link, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM idea_links
		WHERE discussion_id = ? AND tombstone_date IS NULL
		ORDER BY sort_order, id
	`, linkColumns)

	rows, err := r.db.GetExecutor(ctx).QueryContext(ctx, query, discussionID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return collectLinks(rows)
}

// ListLiveFrom returns live links leaving sourceIDs towards live ideas
func (r *SQLiteLinkRepository) ListLiveFrom(ctx context.Context, sourceIDs []string) ([]models.Link, error) {
	if len(sourceIDs) == 0 {
		return []models.Link{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM idea_links l
		JOIN ideas t ON t.base_id = l.target_id AND t.tombstone_date IS NULL
		WHERE l.source_id IN (%s) AND l.tombstone_date IS NULL
		ORDER BY l.sort_order, l.id
	`, qualifiedLinkColumns, sqlite.Placeholders(len(sourceIDs)))

	rows, err := r.db.GetExecutor(ctx).QueryContext(ctx, query, sqlite.StringArgs(sourceIDs)...)
	if err != nil {
		return nil, fmt.Errorf("list outgoing links: %w", err)
	}
	return collectLinks(rows)
}

// ListLiveTo returns live links arriving at targetIDs from live ideas
func (r *SQLiteLinkRepository) ListLiveTo(ctx context.Context, targetIDs []string) ([]models.Link, error) {
	if len(targetIDs) == 0 {
		return []models.Link{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM idea_links l
		JOIN ideas s ON s.base_id = l.source_id AND s.tombstone_date IS NULL
		WHERE l.target_id IN (%s) AND l.tombstone_date IS NULL
		ORDER BY l.sort_order, l.id
	`, qualifiedLinkColumns, sqlite.Placeholders(len(targetIDs)))

	rows, err := r.db.GetExecutor(ctx).QueryContext(ctx, query, sqlite.StringArgs(targetIDs)...)
	if err != nil {
		return nil, fmt.Errorf("list incoming links: %w", err)
	}
	return collectLinks(rows)
}

// CountLiveFrom counts live links leaving sourceID towards live ideas
func (r *SQLiteLinkRepository) CountLiveFrom(ctx context.Context, sourceID string) (int, error) {
	var count int
	err := r.db.GetExecutor(ctx).QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM idea_links l
		JOIN ideas t ON t.base_id = l.target_id AND t.tombstone_date IS NULL
		WHERE l.source_id = ? AND l.tombstone_date IS NULL
	`, sourceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count links: %w", err)
	}
	return count, nil
}
