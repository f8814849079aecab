package ideagraph

import (
	"testing"

	models "agora/internal/domain/models/ideagraph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAncestryOfSmallTree(t *testing.T) {
	env := newTestEnv(t)
	d, root := env.newDiscussion(t, "ancestry")
	a := env.addIdea(t, d.ID, root, "A")
	b := env.addIdea(t, d.ID, a, "B")
	c := env.addIdea(t, d.ID, a, "C")

	resolver := env.services.Ancestry

	desc, err := resolver.Descendants(env.ctx, root.BaseID, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.BaseID, b.BaseID, c.BaseID}, keys(desc))

	desc, err = resolver.Descendants(env.ctx, a.BaseID, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.BaseID, b.BaseID, c.BaseID}, keys(desc))

	anc, err := resolver.Ancestors(env.ctx, false, b.BaseID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.BaseID, root.BaseID}, keys(anc))

	anc, err = resolver.Ancestors(env.ctx, true, b.BaseID, c.BaseID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{b.BaseID, c.BaseID, a.BaseID, root.BaseID}, keys(anc))

	t.Run("leaf has no descendants", func(t *testing.T) {
		desc, err := resolver.Descendants(env.ctx, b.BaseID, false)
		require.NoError(t, err)
		assert.Empty(t, desc)
	})

	t.Run("unknown ids yield empty sets", func(t *testing.T) {
		desc, err := resolver.Descendants(env.ctx, "missing", true)
		require.NoError(t, err)
		assert.Empty(t, desc)

		anc, err := resolver.Ancestors(env.ctx, true, "missing")
		require.NoError(t, err)
		assert.Empty(t, anc)
	})
}

func TestDescendantsAndAncestorsAgree(t *testing.T) {
	env := newTestEnv(t)
	d, root := env.newDiscussion(t, "dag")

	// root -> a -> {b, c}; b -> d; c -> d; root -> e
	a := env.addIdea(t, d.ID, root, "a")
	b := env.addIdea(t, d.ID, a, "b")
	c := env.addIdea(t, d.ID, a, "c")
	dd := env.addIdea(t, d.ID, b, "d")
	env.link(t, c, dd)
	e := env.addIdea(t, d.ID, root, "e")

	all := []*models.Idea{root, a, b, c, dd, e}
	for _, x := range all {
		desc, err := env.services.Ancestry.Descendants(env.ctx, x.BaseID, false)
		require.NoError(t, err)
		for _, y := range all {
			anc, err := env.services.Ancestry.Ancestors(env.ctx, false, y.BaseID)
			require.NoError(t, err)

			_, yBelowX := desc[y.BaseID]
			_, xAboveY := anc[x.BaseID]
			assert.Equal(t, yBelowX, xAboveY, "x=%s y=%s", x.BaseID, y.BaseID)
		}
	}

	desc, err := env.services.Ancestry.Descendants(env.ctx, a.BaseID, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{b.BaseID, c.BaseID, dd.BaseID}, keys(desc))

	anc, err := env.services.Ancestry.Ancestors(env.ctx, false, dd.BaseID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{b.BaseID, c.BaseID, a.BaseID, root.BaseID}, keys(anc))
}
