package ideagraph

import (
	"context"

	models "agora/internal/domain/models/ideagraph"
)

// SynthesisRepository defines data access operations for syntheses and their membership
type SynthesisRepository interface {
	// Create inserts a synthesis, assigning ID when empty
	Create(ctx context.Context, s *models.Synthesis) error

	// GetByID retrieves a synthesis
	GetByID(ctx context.Context, id string) (*models.Synthesis, error)

	// ListByDiscussion returns the syntheses of a discussion, newest first
	ListByDiscussion(ctx context.Context, discussionID string) ([]models.Synthesis, error)

	// AddIdea registers an idea (by logical id) as a member
	AddIdea(ctx context.Context, synthesisID, ideaID string) error

	// RemoveIdea unregisters a member
	RemoveIdea(ctx context.Context, synthesisID, ideaID string) error

	// ListIdeaIDs returns member logical ids in insertion order
	ListIdeaIDs(ctx context.Context, synthesisID string) ([]string, error)

	// AddLink attaches a link row (by physical id) to the synthesis
	AddLink(ctx context.Context, synthesisID, linkID string) error

	// ListLinks returns the attached link rows
	ListLinks(ctx context.Context, synthesisID string) ([]models.Link, error)
}
