package ideagraph

import (
	"sort"
	"testing"

	"agora/internal/domain"
	models "agora/internal/domain/models/ideagraph"
	graphSvc "agora/internal/domain/services/ideagraph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDiscussion(t *testing.T) {
	env := newTestEnv(t)

	d, root := env.newDiscussion(t, "city-plan")
	assert.Equal(t, testUser, d.OwnerID)
	assert.True(t, root.IsRoot())
	assert.Equal(t, root.ID, root.BaseID)

	got, err := env.services.Graph.Root(env.ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, root.BaseID, got.BaseID)

	t.Run("invalid slug", func(t *testing.T) {
		_, _, err := env.services.Discussions.CreateDiscussion(env.ctx, testUser, &graphSvc.CreateDiscussionRequest{
			Slug:  "Not A Slug",
			Title: "x",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		_, _, err := env.services.Discussions.CreateDiscussion(env.ctx, testUser, &graphSvc.CreateDiscussionRequest{
			Slug:  "city-plan",
			Title: "again",
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("unknown discussion has no root", func(t *testing.T) {
		_, err := env.services.Graph.Root(env.ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestChildrenOfOrdersByLinkOrderThenID(t *testing.T) {
	env := newTestEnv(t)
	d, root := env.newDiscussion(t, "ordering")

	rootID := root.BaseID
	create := func(title string, order float64) *models.Idea {
		idea, err := env.services.Ideas.CreateIdea(env.ctx, testUser, &graphSvc.CreateIdeaRequest{
			DiscussionID: d.ID,
			ParentID:     &rootID,
			Title:        map[string]string{"en": title},
			Order:        float(order),
		})
		require.NoError(t, err)
		return idea
	}
	x := create("x", 1)
	y := create("y", 0)
	z := create("z", 1)

	links, err := env.repos.Links.ListLiveFrom(env.ctx, []string{rootID})
	require.NoError(t, err)
	sort.Slice(links, func(i, j int) bool { return models.LessLink(&links[i], &links[j]) })
	var expected []string
	for _, l := range links {
		expected = append(expected, l.TargetID)
	}

	children, err := env.services.Graph.ChildrenOf(env.ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{rootID}, children[models.NoParent])
	assert.Equal(t, expected, children[rootID])
	assert.Equal(t, y.BaseID, children[rootID][0])
	assert.ElementsMatch(t, []string{x.BaseID, z.BaseID}, children[rootID][1:])

	ordered, err := env.services.Graph.Children(env.ctx, rootID)
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	assert.Equal(t, y.BaseID, ordered[0].BaseID)

	t.Run("appends after the last sibling by default", func(t *testing.T) {
		w := env.addIdea(t, d.ID, root, "w")
		children, err := env.services.Graph.ChildrenOf(env.ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, w.BaseID, children[rootID][len(children[rootID])-1])
	})
}

func TestOrphansAndIntegrity(t *testing.T) {
	env := newTestEnv(t)
	d, root := env.newDiscussion(t, "integrity")

	a := env.addIdea(t, d.ID, root, "a")
	b := env.addIdea(t, d.ID, a, "b")
	c := env.addIdea(t, d.ID, b, "c")
	keep := env.addIdea(t, d.ID, root, "keep")

	report, err := env.services.Graph.CheckIntegrity(env.ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, report.Healthy())
	assert.Equal(t, 5, report.LiveIdeas)
	assert.Equal(t, 5, report.Reachable)
	assert.Empty(t, report.Orphans)

	require.NoError(t, env.services.Ideas.DeleteIdea(env.ctx, testUser, a.BaseID))

	orphans, err := env.services.Graph.Orphans(env.ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, b.BaseID, orphans[0].BaseID)

	report, err = env.services.Graph.CheckIntegrity(env.ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, report.LiveIdeas)
	assert.Equal(t, 2, report.Reachable)
	assert.Equal(t, []string{b.BaseID}, report.Orphans)
	assert.Equal(t, []string{c.BaseID}, report.Unreachable)
	assert.False(t, report.Healthy())

	_, err = env.services.Ideas.GetIdea(env.ctx, a.BaseID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.services.Ideas.GetIdea(env.ctx, keep.BaseID)
	assert.NoError(t, err)

	t.Run("root cannot be deleted", func(t *testing.T) {
		err := env.services.Ideas.DeleteIdea(env.ctx, testUser, root.BaseID)
		assert.ErrorIs(t, err, domain.ErrStructuralViolation)
	})
}

func TestStructuralViolations(t *testing.T) {
	env := newTestEnv(t)
	d, root := env.newDiscussion(t, "structure")
	other, otherRoot := env.newDiscussion(t, "other")

	a := env.addIdea(t, d.ID, root, "a")
	b := env.addIdea(t, d.ID, a, "b")
	foreign := env.addIdea(t, other.ID, otherRoot, "foreign")

	cases := []struct {
		name           string
		source, target string
	}{
		{"self loop", a.BaseID, a.BaseID},
		{"cycle", b.BaseID, a.BaseID},
		{"into the root", a.BaseID, root.BaseID},
		{"across discussions", a.BaseID, foreign.BaseID},
		{"dead target", a.BaseID, "missing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.services.Links.CreateLink(env.ctx, testUser, &graphSvc.CreateLinkRequest{
				SourceID: tc.source,
				TargetID: tc.target,
			})
			assert.ErrorIs(t, err, domain.ErrStructuralViolation)
		})
	}

	t.Run("duplicate link", func(t *testing.T) {
		_, err := env.services.Links.CreateLink(env.ctx, testUser, &graphSvc.CreateLinkRequest{
			SourceID: a.BaseID,
			TargetID: b.BaseID,
		})
		var conflict *domain.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "link", conflict.ResourceType)
	})

	t.Run("parent in another discussion", func(t *testing.T) {
		parentID := foreign.BaseID
		_, err := env.services.Ideas.CreateIdea(env.ctx, testUser, &graphSvc.CreateIdeaRequest{
			DiscussionID: d.ID,
			ParentID:     &parentID,
			Title:        map[string]string{"en": "stray"},
		})
		assert.ErrorIs(t, err, domain.ErrStructuralViolation)
	})
}

func TestMoveIdea(t *testing.T) {
	env := newTestEnv(t)
	d, root := env.newDiscussion(t, "move")
	a := env.addIdea(t, d.ID, root, "a")
	b := env.addIdea(t, d.ID, root, "b")
	c := env.addIdea(t, d.ID, a, "c")

	before, err := env.services.Graph.NumChildren(env.ctx, a.BaseID)
	require.NoError(t, err)
	assert.Equal(t, 1, before)

	moved, err := env.services.Ideas.MoveIdea(env.ctx, testUser, c.BaseID, &graphSvc.MoveIdeaRequest{
		FromParentID: a.BaseID,
		NewParentID:  b.BaseID,
	})
	require.NoError(t, err)
	assert.Equal(t, b.BaseID, moved.SourceID)
	assert.NotEqual(t, moved.ID, moved.BaseID, "a move is a new version of the same link")

	parents, err := env.services.Graph.Parents(env.ctx, c.BaseID)
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, b.BaseID, parents[0].BaseID)

	// The cache entry of the old parent was dropped by the link event
	after, err := env.services.Graph.NumChildren(env.ctx, a.BaseID)
	require.NoError(t, err)
	assert.Equal(t, 0, after)

	t.Run("move under own descendant", func(t *testing.T) {
		_, err := env.services.Ideas.MoveIdea(env.ctx, testUser, b.BaseID, &graphSvc.MoveIdeaRequest{
			FromParentID: root.BaseID,
			NewParentID:  c.BaseID,
		})
		assert.ErrorIs(t, err, domain.ErrStructuralViolation)
	})
}

func TestUpdateIdeaKeepsLogicalID(t *testing.T) {
	env := newTestEnv(t)
	d, root := env.newDiscussion(t, "update")
	a := env.addIdea(t, d.ID, root, "first")

	hidden := true
	updated, err := env.services.Ideas.UpdateIdea(env.ctx, testUser, a.BaseID, &graphSvc.UpdateIdeaRequest{
		Title:  map[string]string{"en": "second"},
		Hidden: &hidden,
	})
	require.NoError(t, err)
	assert.Equal(t, a.BaseID, updated.BaseID)
	assert.NotEqual(t, a.ID, updated.ID)
	assert.True(t, updated.Hidden)

	old, err := env.repos.Ideas.GetByID(env.ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, old.IsTombstoned())

	title, err := env.repos.TextBundles.Get(env.ctx, *updated.Title)
	require.NoError(t, err)
	assert.Equal(t, "second", title["en"])

	t.Run("hidden ideas are cut from traversals", func(t *testing.T) {
		visible, err := env.services.Graph.Traverse(env.ctx, d.ID, "", graphSvc.BreadthFirst, false)
		require.NoError(t, err)
		require.Len(t, visible, 1)
		assert.Equal(t, root.BaseID, visible[0].BaseID)

		all, err := env.services.Graph.Traverse(env.ctx, d.ID, "", graphSvc.DepthFirst, true)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		_, err = env.services.Graph.Traverse(env.ctx, d.ID, "", "sideways", true)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown pub state", func(t *testing.T) {
		state := "archived"
		_, err := env.services.Ideas.UpdateIdea(env.ctx, testUser, a.BaseID, &graphSvc.UpdateIdeaRequest{PubState: &state})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestAnalysis(t *testing.T) {
	env := newTestEnv(t)
	d, root := env.newDiscussion(t, "analysis")
	a := env.addIdea(t, d.ID, root, "Bike lanes")
	env.addIdea(t, d.ID, a, "Winter bike maintenance")
	env.addIdea(t, d.ID, root, "Buses")

	outline, err := env.services.Analysis.Outline(env.ctx, d.ID, "en")
	require.NoError(t, err)
	assert.Equal(t, "Discussion analysis\n"+
		"├── Bike lanes\n"+
		"│   └── Winter bike maintenance\n"+
		"└── Buses", outline)

	words, err := env.services.Analysis.MostCommonWords(env.ctx, d.ID, a.BaseID, "en", 2)
	require.NoError(t, err)
	assert.Equal(t, []graphSvc.WordCount{
		{Word: "bike", Count: 2},
		{Word: "lanes", Count: 1},
	}, words)

	none, err := env.services.Analysis.MostCommonWords(env.ctx, d.ID, "missing", "en", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDescriptionsAreSanitizedRichText(t *testing.T) {
	env := newTestEnv(t)
	d, root := env.newDiscussion(t, "rich")
	rootID := root.BaseID
	idea, err := env.services.Ideas.CreateIdea(env.ctx, testUser, &graphSvc.CreateIdeaRequest{
		DiscussionID: d.ID,
		ParentID:     &rootID,
		Title:        map[string]string{"en": "Transit"},
		Description:  map[string]string{"en": `<p>Ride trams</p><pre><code>trams trams</code></pre><script>steal()</script>`},
	})
	require.NoError(t, err)

	stored, err := env.repos.TextBundles.Get(env.ctx, *idea.Description)
	require.NoError(t, err)
	assert.NotContains(t, stored["en"], "script")
	assert.Contains(t, stored["en"], "<p>Ride trams</p>")

	// Code blocks do not count as words
	words, err := env.services.Analysis.MostCommonWords(env.ctx, d.ID, idea.BaseID, "en", 0)
	require.NoError(t, err)
	counts := map[string]int{}
	for _, wc := range words {
		counts[wc.Word] = wc.Count
	}
	assert.Equal(t, map[string]int{"transit": 1, "ride": 1, "trams": 1}, counts)
}
