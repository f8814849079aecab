package ideagraph

import (
	"context"

	models "agora/internal/domain/models/ideagraph"
)

// SynthesisService manages draft syntheses and freezes them into publications
type SynthesisService interface {
	// CreateDraft creates an empty draft synthesis for a discussion
	CreateDraft(ctx context.Context, userID string, req *CreateSynthesisRequest) (*models.Synthesis, error)

	// GetSynthesis retrieves a synthesis
	GetSynthesis(ctx context.Context, synthesisID string) (*models.Synthesis, error)

	// ListSyntheses lists the syntheses of a discussion, newest first
	ListSyntheses(ctx context.Context, discussionID string) ([]models.Synthesis, error)

	// AddIdea selects a live idea as a draft member
	AddIdea(ctx context.Context, userID, synthesisID, ideaID string) error

	// RemoveIdea unselects a draft member
	RemoveIdea(ctx context.Context, userID, synthesisID, ideaID string) error

	// Publish freezes a draft into a new, immutable synthesis. Each call
	// creates an independent snapshot.
	Publish(ctx context.Context, userID, draftID string) (*models.Synthesis, error)

	// FrozenGraph returns the archived ideas and links of a published synthesis
	FrozenGraph(ctx context.Context, synthesisID string) (*models.FrozenGraph, error)
}

// CreateSynthesisRequest represents a draft synthesis creation request
type CreateSynthesisRequest struct {
	DiscussionID string            `json:"discussion_id"`
	Subject      map[string]string `json:"subject"`
	Introduction map[string]string `json:"introduction,omitempty"`
	Conclusion   map[string]string `json:"conclusion,omitempty"`
}
