package ideagraph

import (
	"context"

	models "agora/internal/domain/models/ideagraph"
)

// DiscussionService creates discussions together with their root idea
type DiscussionService interface {
	// CreateDiscussion creates a discussion and its root idea in one transaction
	CreateDiscussion(ctx context.Context, userID string, req *CreateDiscussionRequest) (*models.Discussion, *models.Idea, error)

	// GetDiscussion retrieves a discussion
	GetDiscussion(ctx context.Context, id string) (*models.Discussion, error)
}

// IdeaService handles idea mutations. Every successful mutation is reported
// to the change notifier after commit.
type IdeaService interface {
	// CreateIdea creates a live idea, linked under ParentID (or the root when nil)
	CreateIdea(ctx context.Context, userID string, req *CreateIdeaRequest) (*models.Idea, error)

	// GetIdea retrieves the live version of an idea
	GetIdea(ctx context.Context, ideaID string) (*models.Idea, error)

	// UpdateIdea records a new version of an idea
	UpdateIdea(ctx context.Context, userID, ideaID string, req *UpdateIdeaRequest) (*models.Idea, error)

	// RetypeIdea changes the semantic type of an idea and propagates type rules below it
	RetypeIdea(ctx context.Context, userID, ideaID, semanticType string) (*models.Idea, error)

	// MoveIdea re-parents an idea under NewParentID
	MoveIdea(ctx context.Context, userID, ideaID string, req *MoveIdeaRequest) (*models.Link, error)

	// DeleteIdea tombstones an idea and every live link touching it
	DeleteIdea(ctx context.Context, userID, ideaID string) error
}

// LinkService handles link mutations
type LinkService interface {
	// CreateLink creates a live link between two live ideas of the same discussion
	CreateLink(ctx context.Context, userID string, req *CreateLinkRequest) (*models.Link, error)

	// ReorderLink records a new version of a link with a different sibling order
	ReorderLink(ctx context.Context, userID, linkID string, order float64) (*models.Link, error)

	// RetypeLink changes a link type and propagates type rules from its source
	RetypeLink(ctx context.Context, userID, linkID, linkType string) (*models.Link, error)

	// DeleteLink tombstones a link
	DeleteLink(ctx context.Context, userID, linkID string) error
}

// TypeRulePropagator resolves idea and link types against the discussion typology
type TypeRulePropagator interface {
	// ApplyTypeRules re-validates the outgoing links of parentID and, transitively,
	// of every child whose type had to change. Must run inside a transaction.
	ApplyTypeRules(ctx context.Context, parentID string) error
}

// CreateDiscussionRequest represents a discussion creation request
type CreateDiscussionRequest struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Open  bool   `json:"open"`
}

// CreateIdeaRequest represents an idea creation request
type CreateIdeaRequest struct {
	DiscussionID string            `json:"discussion_id"`
	ParentID     *string           `json:"parent_id,omitempty"` // null links the idea under the root
	Title        map[string]string `json:"title"`               // locale -> text
	Description  map[string]string `json:"description,omitempty"`
	SemanticType string            `json:"semantic_type,omitempty"`
	LinkType     string            `json:"link_type,omitempty"`
	Order        *float64          `json:"order,omitempty"` // appended after the last sibling when null
	Hidden       bool              `json:"hidden"`
}

// UpdateIdeaRequest represents an idea update request. Nil fields are left unchanged.
type UpdateIdeaRequest struct {
	Title       map[string]string `json:"title,omitempty"`
	Description map[string]string `json:"description,omitempty"`
	Hidden      *bool             `json:"hidden,omitempty"`
	PubState    *string           `json:"pub_state,omitempty"`
}

// MoveIdeaRequest represents a re-parenting request
type MoveIdeaRequest struct {
	FromParentID string   `json:"from_parent_id"`
	NewParentID  string   `json:"new_parent_id"`
	Order        *float64 `json:"order,omitempty"`
}

// CreateLinkRequest represents a link creation request
type CreateLinkRequest struct {
	SourceID string   `json:"source_id"`
	TargetID string   `json:"target_id"`
	LinkType string   `json:"link_type,omitempty"`
	Order    *float64 `json:"order,omitempty"`
}
