package ideagraph

import (
	"context"
	"time"

	models "agora/internal/domain/models/ideagraph"
)

// IdeaRepository defines data access operations for idea rows
type IdeaRepository interface {
	// Create inserts an idea row, live or tombstoned, assigning its identity
	Create(ctx context.Context, idea *models.Idea) error

	// GetLive retrieves the live row of a logical idea
	GetLive(ctx context.Context, baseID string) (*models.Idea, error)

	// GetByID retrieves a physical row regardless of its tombstone
	GetByID(ctx context.Context, id string) (*models.Idea, error)

	// GetLiveMany retrieves the live rows of the given logical ideas, keyed by base id.
	// Missing ids are absent from the result.
	GetLiveMany(ctx context.Context, baseIDs []string) (map[string]*models.Idea, error)

	// Tombstone marks a live row as historical. Returns ErrNotFound if the row is not live.
	Tombstone(ctx context.Context, id string, at time.Time) error

	// ListLive returns every live idea of a discussion
	ListLive(ctx context.Context, discussionID string) ([]models.Idea, error)

	// ListLiveRoots returns the live root ideas of a discussion (exactly one when healthy)
	ListLiveRoots(ctx context.Context, discussionID string) ([]models.Idea, error)
}
