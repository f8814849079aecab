package ideagraph

import (
	"context"

	models "agora/internal/domain/models/ideagraph"
)

// GraphService answers structural read queries over the live graph
type GraphService interface {
	// ChildrenOf returns every live parent -> ordered children relation of a discussion
	ChildrenOf(ctx context.Context, discussionID string) (models.ChildrenMap, error)

	// Children returns the live children of an idea ordered by link order
	Children(ctx context.Context, ideaID string) ([]models.Idea, error)

	// Parents returns the live parents of an idea ordered by link order
	Parents(ctx context.Context, ideaID string) ([]models.Idea, error)

	// NumChildren counts the live outgoing links of an idea
	NumChildren(ctx context.Context, ideaID string) (int, error)

	// Root returns the live root idea of a discussion
	Root(ctx context.Context, discussionID string) (*models.Idea, error)

	// Orphans returns live non-root ideas without any incoming live link
	Orphans(ctx context.Context, discussionID string) ([]models.Idea, error)

	// CheckIntegrity verifies the root and reachability invariants
	CheckIntegrity(ctx context.Context, discussionID string) (*models.IntegrityReport, error)

	// Load returns the live ideas of a discussion together with its children map
	Load(ctx context.Context, discussionID string) (*Graph, error)

	// Traverse lists the live ideas reachable from startID (the root when empty)
	// in traversal order. Hidden ideas and their subtrees are skipped unless
	// includeHidden is set.
	Traverse(ctx context.Context, discussionID, startID string, order TraversalOrder, includeHidden bool) ([]models.Idea, error)
}

// TraversalOrder selects the walk used by Traverse
type TraversalOrder string

const (
	DepthFirst   TraversalOrder = "dfs"
	BreadthFirst TraversalOrder = "bfs"
)

// AncestryResolver computes transitive closures over live links.
// Unknown ids yield empty sets rather than errors.
type AncestryResolver interface {
	// Descendants follows source -> target links from rootID
	Descendants(ctx context.Context, rootID string, inclusive bool) (map[string]struct{}, error)

	// Ancestors follows target -> source links from every target id
	Ancestors(ctx context.Context, inclusive bool, targetIDs ...string) (map[string]struct{}, error)
}

// Graph is an in-memory view of a discussion's live ideas and their order.
type Graph struct {
	DiscussionID string
	RootID       string
	Ideas        map[string]*models.Idea // keyed by logical id
	Children     models.ChildrenMap
}

// Idea returns the live idea with the given logical id.
func (g *Graph) Idea(id string) (*models.Idea, bool) {
	idea, ok := g.Ideas[id]
	return idea, ok
}
