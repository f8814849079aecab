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

// PostgresLinkRepository implements the LinkRepository interface
type PostgresLinkRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(config *postgres.RepositoryConfig) graphRepo.LinkRepository {
	return &PostgresLinkRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a link row
func (r *PostgresLinkRepository) Create(ctx context.Context, link *models.Link) error {
	link.AssignIdentity()

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Links, linkColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		link.ID,
		link.BaseID,
		link.TombstoneDate,
		link.DiscussionID,
		link.SourceID,
		link.TargetID,
		link.Order,
		link.LinkType,
		link.CreatedAt,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
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
func (r *PostgresLinkRepository) GetLive(ctx context.Context, baseID string) (*models.Link, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE base_id = $1 AND tombstone_date IS NULL
	`, linkColumns, r.tables.Links)

	executor := postgres.GetExecutor(ctx, r.pool)
	link, err := scanLink(executor.QueryRow(ctx, query, baseID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("link %s: %w", baseID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get link: %w", err)
	}
	return link, nil
}

// Tombstone marks a live row as historical
func (r *PostgresLinkRepository) Tombstone(ctx context.Context, id string, at time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s SET tombstone_date = $1
		WHERE id = $2 AND tombstone_date IS NULL
	`, r.tables.Links)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("tombstone link: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("live link row %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListLive returns every live link of a discussion
func (r *PostgresLinkRepository) ListLive(ctx context.Context, discussionID string) ([]models.Link, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE discussion_id = $1 AND tombstone_date IS NULL
		ORDER BY sort_order, id
	`, linkColumns, r.tables.Links)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, discussionID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return collectLinks(rows)
}

// ListLiveFrom returns live links leaving sourceIDs towards live ideas
func (r *PostgresLinkRepository) ListLiveFrom(ctx context.Context, sourceIDs []string) ([]models.Link, error) {
	if len(sourceIDs) == 0 {
		return []models.Link{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s l
		JOIN %s t ON t.base_id = l.target_id AND t.tombstone_date IS NULL
		WHERE l.source_id = ANY($1) AND l.tombstone_date IS NULL
		ORDER BY l.sort_order, l.id
	`, qualified("l", linkColumns), r.tables.Links, r.tables.Ideas)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, sourceIDs)
	if err != nil {
		return nil, fmt.Errorf("list outgoing links: %w", err)
	}
	return collectLinks(rows)
}

// ListLiveTo returns live links arriving at targetIDs from live ideas
func (r *PostgresLinkRepository) ListLiveTo(ctx context.Context, targetIDs []string) ([]models.Link, error) {
	if len(targetIDs) == 0 {
		return []models.Link{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s l
		JOIN %s s ON s.base_id = l.source_id AND s.tombstone_date IS NULL
		WHERE l.target_id = ANY($1) AND l.tombstone_date IS NULL
		ORDER BY l.sort_order, l.id
	`, qualified("l", linkColumns), r.tables.Links, r.tables.Ideas)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, targetIDs)
	if err != nil {
		return nil, fmt.Errorf("list incoming links: %w", err)
	}
	return collectLinks(rows)
}

// CountLiveFrom counts live links leaving sourceID towards live ideas
func (r *PostgresLinkRepository) CountLiveFrom(ctx context.Context, sourceID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s l
		JOIN %s t ON t.base_id = l.target_id AND t.tombstone_date IS NULL
		WHERE l.source_id = $1 AND l.tombstone_date IS NULL
	`, r.tables.Links, r.tables.Ideas)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, sourceID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count links: %w", err)
	}
	return count, nil
}
