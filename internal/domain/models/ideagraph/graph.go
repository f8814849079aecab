package ideagraph

// NoParent is the ChildrenMap key whose single child is the root idea.
const NoParent = ""

// ChildrenMap maps a logical idea id to the ordered ids of its live children.
// The NoParent key always maps to the root idea.
type ChildrenMap map[string][]string

// Children returns the children of id, or nil.
func (m ChildrenMap) Children(id string) []string {
	return m[id]
}

// Root returns the root idea id recorded under NoParent.
func (m ChildrenMap) Root() string {
	if roots := m[NoParent]; len(roots) > 0 {
		return roots[0]
	}
	return ""
}

// IntegrityReport summarises the structural health of a discussion graph.
type IntegrityReport struct {
	DiscussionID string   `json:"discussion_id"`
	RootID       string   `json:"root_id"`
	LiveIdeas    int      `json:"live_ideas"`
	Reachable    int      `json:"reachable"`
	Orphans      []string `json:"orphans"`
	// Unreachable lists live ideas that have incoming live links but are not
	// reachable from the root, which happens only when a cycle is detached.
	Unreachable []string `json:"unreachable"`
}

// Healthy reports whether every live idea is reachable or an explicit orphan.
func (r *IntegrityReport) Healthy() bool {
	return len(r.Unreachable) == 0
}
