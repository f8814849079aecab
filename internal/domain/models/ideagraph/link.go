package ideagraph

import (
	"fmt"
	"time"

	"agora/internal/domain"
)

// Link is a directed, typed, ordered edge from a parent idea (source) to a
// child idea (target). Endpoints hold the logical id (BaseID) of the idea.
type Link struct {
	Version
	DiscussionID string    `json:"discussion_id" db:"discussion_id"`
	SourceID     string    `json:"source_id" db:"source_id"`
	TargetID     string    `json:"target_id" db:"target_id"`
	Order        float64   `json:"order" db:"order"`
	LinkType     string    `json:"link_type" db:"link_type"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// CopyOverrides redirects the endpoints of an archival link copy.
// A nil field keeps the original endpoint.
type CopyOverrides struct {
	Source *Idea
	Target *Idea
}

// NewVersion returns an edit of the link: a live row sharing BaseID.
func (l *Link) NewVersion() *Link {
	next := *l
	next.Version = l.Version.NextVersion()
	return &next
}

// ArchiveCopy returns a frozen copy of the link. Overridden endpoints must
// already be persisted, otherwise the copy would reference a missing row.
func (l *Link) ArchiveCopy(at time.Time, overrides CopyOverrides) (*Link, error) {
	frozen := *l
	frozen.Version = l.Version.Archive(at)

	if overrides.Source != nil {
		if !overrides.Source.IsPersisted() {
			return nil, fmt.Errorf("link %s source: %w", l.ID, domain.ErrCopyOrder)
		}
		frozen.SourceID = overrides.Source.BaseID
	}
	if overrides.Target != nil {
		if !overrides.Target.IsPersisted() {
			return nil, fmt.Errorf("link %s target: %w", l.ID, domain.ErrCopyOrder)
		}
		frozen.TargetID = overrides.Target.BaseID
	}
	return &frozen, nil
}

// TypeOrDefault returns the link type, falling back to DefaultLinkType.
func (l *Link) TypeOrDefault() string {
	if l.LinkType == "" {
		return DefaultLinkType
	}
	return l.LinkType
}

// LessLink orders sibling links by Order, breaking ties by ID.
func LessLink(a, b *Link) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	return a.ID < b.ID
}
