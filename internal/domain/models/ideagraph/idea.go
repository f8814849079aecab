package ideagraph

import (
	"time"
)

// IdeaKind distinguishes the universal ancestor of a discussion from ordinary ideas.
type IdeaKind string

const (
	IdeaKindRoot IdeaKind = "root"
	IdeaKindIdea IdeaKind = "idea"
)

// Universal default types used when the typology cannot place a node or link.
const (
	DefaultIdeaType = "GenericIdeaNode"
	DefaultLinkType = "InclusionRelation"
)

// Publication states of an idea.
const (
	PubStateDraft     = "draft"
	PubStatePublished = "published"
)

// Idea is a node in a discussion's idea graph.
type Idea struct {
	Version
	DiscussionID string    `json:"discussion_id" db:"discussion_id"`
	Kind         IdeaKind  `json:"kind" db:"kind"`
	Title        *string   `json:"title,omitempty" db:"title_id"`             // text bundle handle
	Description  *string   `json:"description,omitempty" db:"description_id"` // text bundle handle
	Hidden       bool      `json:"hidden" db:"hidden"`
	CreatorID    string    `json:"creator_id" db:"creator_id"`
	SemanticType string    `json:"semantic_type" db:"semantic_type"`
	PubState     string    `json:"pub_state" db:"pub_state"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the idea is the discussion's root.
func (i *Idea) IsRoot() bool {
	return i.Kind == IdeaKindRoot
}

// NewVersion returns an edit of the idea: a live row sharing BaseID.
// The caller is responsible for tombstoning i in the same transaction.
func (i *Idea) NewVersion() *Idea {
	next := *i
	next.Version = i.Version.NextVersion()
	next.UpdatedAt = time.Now().UTC()
	return &next
}

// ArchiveCopy returns a frozen copy of the idea with a fresh logical identity.
func (i *Idea) ArchiveCopy(at time.Time) *Idea {
	frozen := *i
	frozen.Version = i.Version.Archive(at)
	frozen.UpdatedAt = at.UTC()
	return &frozen
}

// TypeOrDefault returns the semantic type, falling back to DefaultIdeaType.
func (i *Idea) TypeOrDefault() string {
	if i.SemanticType == "" {
		return DefaultIdeaType
	}
	return i.SemanticType
}
