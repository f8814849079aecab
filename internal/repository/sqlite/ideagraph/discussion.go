package ideagraph

import (
	"context"
	"fmt"
	"log/slog"

	"agora/internal/domain"
	models "agora/internal/domain/models/ideagraph"
	graphRepo "agora/internal/domain/repositories/ideagraph"
	"agora/internal/repository/sqlite"

	"github.com/google/uuid"
)

// SQLiteDiscussionRepository implements the DiscussionRepository interface
type SQLiteDiscussionRepository struct {
	db *sqlite.DB
}

// NewDiscussionRepository creates a new discussion repository
func NewDiscussionRepository(db *sqlite.DB) graphRepo.DiscussionRepository {
	return &SQLiteDiscussionRepository{db: db}
}

// Create creates a new discussion
func (r *SQLiteDiscussionRepository) Create(ctx context.Context, d *models.Discussion) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	_, err := r.db.GetExecutor(ctx).ExecContext(ctx, `
		INSERT INTO discussions (id, slug, title, owner_id, open, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.ID, d.Slug, d.Title, d.OwnerID, d.Open, sqlite.Nanos(d.CreatedAt))
	if err != nil {
		if sqlite.IsDuplicateError(err) {
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
func (r *SQLiteDiscussionRepository) GetByID(ctx context.Context, id string) (*models.Discussion, error) {
	row := r.db.GetExecutor(ctx).QueryRowContext(ctx, `
		SELECT id, slug, title, owner_id, open, created_at
		FROM discussions WHERE id = ?
	`, id)

	d, err := scanDiscussion(row)
	if err != nil {
		if sqlite.IsNoRowsError(err) {
			return nil, fmt.Errorf("discussion %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get discussion: %w", err)
	}
	return d, nil
}

// List returns all discussions ordered by creation
func (r *SQLiteDiscussionRepository) List(ctx context.Context) ([]models.Discussion, error) {
	rows, err := r.db.GetExecutor(ctx).QueryContext(ctx, `
		SELECT id, slug, title, owner_id, open, created_at
		FROM discussions ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list discussions: %w", err)
	}
	defer rows.Close()

	discussions := []models.Discussion{}
	for rows.Next() {
		d, err := scanDiscussion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan discussion: %w", err)
		}
		discussions = append(discussions, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate discussions: %w", err)
	}
	return discussions, nil
}

func scanDiscussion(row rowScanner) (*models.Discussion, error) {
	var (
		d       models.Discussion
		created int64
	)
	if err := row.Scan(&d.ID, &d.Slug, &d.Title, &d.OwnerID, &d.Open, &created); err != nil {
		return nil, err
	}
	d.CreatedAt = sqlite.FromNanos(created)
	return &d, nil
}

// NewRepositories wires every graph repository over db
func NewRepositories(db *sqlite.DB, logger *slog.Logger) graphRepo.Repositories {
	return graphRepo.Repositories{
		Discussions: NewDiscussionRepository(db),
		Ideas:       NewIdeaRepository(db),
		Links:       NewLinkRepository(db),
		Syntheses:   NewSynthesisRepository(db),
		TextBundles: NewTextBundleRepository(db),
		Tx:          sqlite.NewTransactionManager(db, logger),
	}
}
