package ideagraph

import "time"

// SynthesisState separates editable drafts from frozen publications.
type SynthesisState string

const (
	SynthesisDraft     SynthesisState = "draft"
	SynthesisPublished SynthesisState = "published"
)

// Synthesis is a curated selection of ideas. While in draft its members are
// live ideas; once published it is an immutable archive of copied ideas and links.
type Synthesis struct {
	ID           string         `json:"id" db:"id"`
	DiscussionID string         `json:"discussion_id" db:"discussion_id"`
	State        SynthesisState `json:"state" db:"state"`
	Subject      *string        `json:"subject,omitempty" db:"subject_id"`           // text bundle handle
	Introduction *string        `json:"introduction,omitempty" db:"introduction_id"` // text bundle handle
	Conclusion   *string        `json:"conclusion,omitempty" db:"conclusion_id"`     // text bundle handle
	SourceID     *string        `json:"source_id,omitempty" db:"source_id"`          // draft a publication was frozen from
	CreatorID    string         `json:"creator_id" db:"creator_id"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	PublishedAt  *time.Time     `json:"published_at,omitempty" db:"published_at"`
}

// IsPublished reports whether the synthesis is a frozen snapshot.
func (s *Synthesis) IsPublished() bool {
	return s.State == SynthesisPublished
}

// FrozenGraph is the content of a published synthesis.
type FrozenGraph struct {
	Synthesis *Synthesis `json:"synthesis"`
	Members   []Idea     `json:"members"` // copies of the selected ideas
	Ideas     []Idea     `json:"ideas"`   // every idea copy referenced by the frozen links
	Links     []Link     `json:"links"`
}
