package ideagraph

import (
	"context"
	"time"

	models "agora/internal/domain/models/ideagraph"
)

// LinkRepository defines data access operations for link rows
type LinkRepository interface {
	// Create inserts a link row, live or tombstoned, assigning its identity
	Create(ctx context.Context, link *models.Link) error

	// GetLive retrieves the live row of a logical link
	GetLive(ctx context.Context, baseID string) (*models.Link, error)

	// Tombstone marks a live row as historical. Returns ErrNotFound if the row is not live.
	Tombstone(ctx context.Context, id string, at time.Time) error

	// ListLive returns every live link of a discussion, including links whose
	// endpoints are no longer live
	ListLive(ctx context.Context, discussionID string) ([]models.Link, error)

	// ListLiveFrom returns live links whose source is one of sourceIDs and
	// whose target is a live idea, ordered by (order, id)
	ListLiveFrom(ctx context.Context, sourceIDs []string) ([]models.Link, error)

	// ListLiveTo returns live links whose target is one of targetIDs and
	// whose source is a live idea, ordered by (order, id)
	ListLiveTo(ctx context.Context, targetIDs []string) ([]models.Link, error)

	// CountLiveFrom counts live links leaving sourceID towards live ideas
	CountLiveFrom(ctx context.Context, sourceID string) (int, error)
}
