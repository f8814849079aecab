package ideagraph

import (
	"errors"

	models "agora/internal/domain/models/ideagraph"
	graphSvc "agora/internal/domain/services/ideagraph"
)

// ErrSkipChildren is returned by Visitor.Visit to stop the traversal from
// descending below a node. The node is still folded, with no child results.
var ErrSkipChildren = errors.New("skip children")

// ChildResult pairs a child id with the folded result of its subtree.
type ChildResult[R any] struct {
	ID     string
	Result R
}

// Visitor is a traversal strategy. Visit runs once per node, top down, and
// receives the result of the parent's Visit. Fold runs once per visited node,
// bottom up, and combines the node's own result with its children's folds.
type Visitor[N any, R any] interface {
	Visit(node N, level int, parent R) (R, error)
	Fold(node N, level int, own R, children []ChildResult[R]) R
}

// IdentityFold can be embedded by visitors that do not aggregate bottom up.
type IdentityFold[N any, R any] struct{}

// Fold returns own unchanged.
func (IdentityFold[N, R]) Fold(_ N, _ int, own R, _ []ChildResult[R]) R { return own }

// source abstracts where nodes and their ordered children come from.
type source[N any] struct {
	node     func(id string) (N, bool)
	children func(id string) []string
}

func ideaSource(g *graphSvc.Graph) source[*models.Idea] {
	return source[*models.Idea]{
		node:     g.Idea,
		children: g.Children.Children,
	}
}

func idSource(children models.ChildrenMap) source[string] {
	return source[string]{
		node:     func(id string) (string, bool) { return id, true },
		children: children.Children,
	}
}

// DepthFirst walks the live ideas of g from its root in pre-order.
func DepthFirst[R any](g *graphSvc.Graph, v Visitor[*models.Idea, R]) (R, error) {
	return depthFirst(ideaSource(g), g.RootID, v)
}

// DepthFirstFrom walks the live ideas of g from startID in pre-order.
func DepthFirstFrom[R any](g *graphSvc.Graph, startID string, v Visitor[*models.Idea, R]) (R, error) {
	return depthFirst(ideaSource(g), startID, v)
}

// DepthFirstIDs walks a prefetched children map from startID without loading ideas.
func DepthFirstIDs[R any](children models.ChildrenMap, startID string, v Visitor[string, R]) (R, error) {
	return depthFirst(idSource(children), startID, v)
}

// BreadthFirst walks the live ideas of g from its root in level order.
func BreadthFirst[R any](g *graphSvc.Graph, v Visitor[*models.Idea, R]) (R, error) {
	return breadthFirst(ideaSource(g), g.RootID, v)
}

// BreadthFirstFrom walks the live ideas of g from startID in level order.
func BreadthFirstFrom[R any](g *graphSvc.Graph, startID string, v Visitor[*models.Idea, R]) (R, error) {
	return breadthFirst(ideaSource(g), startID, v)
}

// BreadthFirstIDs walks a prefetched children map from startID in level order.
func BreadthFirstIDs[R any](children models.ChildrenMap, startID string, v Visitor[string, R]) (R, error) {
	return breadthFirst(idSource(children), startID, v)
}

// depthFirst visits every reachable node at most once. A child already
// visited through another path, or through a cycle, is skipped.
func depthFirst[N any, R any](src source[N], startID string, v Visitor[N, R]) (R, error) {
	var zero R
	visited := map[string]bool{}

	var walk func(id string, level int, parent R) (R, bool, error)
	walk = func(id string, level int, parent R) (R, bool, error) {
		node, ok := src.node(id)
		if !ok {
			return zero, false, nil
		}
		visited[id] = true

		own, err := v.Visit(node, level, parent)
		if errors.Is(err, ErrSkipChildren) {
			return v.Fold(node, level, own, nil), true, nil
		}
		if err != nil {
			return zero, false, err
		}

		var results []ChildResult[R]
		for _, childID := range src.children(id) {
			if visited[childID] {
				continue
			}
			folded, ok, err := walk(childID, level+1, own)
			if err != nil {
				return zero, false, err
			}
			if ok {
				results = append(results, ChildResult[R]{ID: childID, Result: folded})
			}
		}
		return v.Fold(node, level, own, results), true, nil
	}

	result, _, err := walk(startID, 0, zero)
	return result, err
}

type bfsEntry[N any, R any] struct {
	id       string
	node     N
	level    int
	parent   int // index into the entry list, -1 for the start node
	own      R
	children []int
}

// breadthFirst visits nodes level by level, then folds in reverse visit
// order. Every child is visited after its parent, so by the time a node is
// folded the folds of its own children, and only those, are complete.
func breadthFirst[N any, R any](src source[N], startID string, v Visitor[N, R]) (R, error) {
	var zero R
	start, ok := src.node(startID)
	if !ok {
		return zero, nil
	}

	entries := []*bfsEntry[N, R]{{id: startID, node: start, parent: -1}}
	visited := map[string]bool{startID: true}

	for i := 0; i < len(entries); i++ {
		e := entries[i]
		parentResult := zero
		if e.parent >= 0 {
			parentResult = entries[e.parent].own
		}

		own, err := v.Visit(e.node, e.level, parentResult)
		e.own = own
		if errors.Is(err, ErrSkipChildren) {
			continue
		}
		if err != nil {
			return zero, err
		}

		for _, childID := range src.children(e.id) {
			if visited[childID] {
				continue
			}
			child, ok := src.node(childID)
			if !ok {
				continue
			}
			visited[childID] = true
			e.children = append(e.children, len(entries))
			entries = append(entries, &bfsEntry[N, R]{id: childID, node: child, level: e.level + 1, parent: i})
		}
	}

	folded := make([]R, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		var results []ChildResult[R]
		for _, c := range e.children {
			results = append(results, ChildResult[R]{ID: entries[c].id, Result: folded[c]})
		}
		folded[i] = v.Fold(e.node, e.level, e.own, results)
	}
	return folded[0], nil
}
