package ideagraph

import (
	"context"

	models "agora/internal/domain/models/ideagraph"
)

// Ontology answers type hierarchy questions.
type Ontology interface {
	// Supertypes returns every ancestor type of term, nearest first, without term itself
	Supertypes(ctx context.Context, term string) ([]string, error)
}

// TypologyProvider returns the typology configured for a discussion.
type TypologyProvider interface {
	Typology(ctx context.Context, discussionID string) (models.Typology, error)
}

// PostSource returns the bodies of posts attached to an idea.
type PostSource interface {
	PostsForIdea(ctx context.Context, ideaID string) ([]string, error)
}

// ChangeKind describes what happened to an entity.
type ChangeKind string

const (
	ChangeCreated   ChangeKind = "created"
	ChangeUpdated   ChangeKind = "updated"
	ChangeDeleted   ChangeKind = "deleted"
	ChangePublished ChangeKind = "published"
)

// EntityType names the kind of entity a change event is about.
type EntityType string

const (
	EntityDiscussion EntityType = "discussion"
	EntityIdea       EntityType = "idea"
	EntityLink       EntityType = "link"
	EntitySynthesis  EntityType = "synthesis"
)

// ChangeEvent is emitted once per entity touched by a committed mutation.
type ChangeEvent struct {
	Kind         ChangeKind `json:"kind"`
	Entity       EntityType `json:"entity"`
	ID           string     `json:"id"`
	BaseID       string     `json:"base_id,omitempty"`
	DiscussionID string     `json:"discussion_id"`
	// SourceID is set for link events so caches keyed by parent can be dropped.
	SourceID string `json:"source_id,omitempty"`
	// PrevSourceID is set when a link version moved to another parent.
	PrevSourceID string `json:"prev_source_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}

// ChangeNotifier is the single extension point called after every
// successful mutation. It performs no writes on the graph.
type ChangeNotifier interface {
	EntityChanged(ctx context.Context, event ChangeEvent)
}
