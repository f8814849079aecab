package ideagraph

import (
	"context"

	models "agora/internal/domain/models/ideagraph"
)

// DiscussionRepository defines data access operations for discussions
type DiscussionRepository interface {
	// Create inserts a discussion, assigning ID when empty
	Create(ctx context.Context, d *models.Discussion) error

	// GetByID retrieves a discussion
	GetByID(ctx context.Context, id string) (*models.Discussion, error)

	// List returns all discussions ordered by creation
	List(ctx context.Context) ([]models.Discussion, error)
}
