package ideagraph

import (
	"sort"
	"testing"
	"time"

	"agora/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignIdentity(t *testing.T) {
	var v Version
	v.AssignIdentity()
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, v.ID, v.BaseID, "a fresh row starts its own logical entity")
	assert.True(t, v.IsPersisted())
	assert.True(t, v.IsLive())

	next := v.NextVersion()
	assert.False(t, next.IsPersisted())
	next.AssignIdentity()
	assert.NotEqual(t, v.ID, next.ID)
	assert.Equal(t, v.BaseID, next.BaseID)
}

func TestNextVersionOfUnpersistedBase(t *testing.T) {
	v := Version{ID: "row-1"}
	assert.Equal(t, "row-1", v.NextVersion().BaseID)
}

func TestArchive(t *testing.T) {
	v := Version{ID: "row-1", BaseID: "idea-1"}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	frozen := v.Archive(at)
	assert.Empty(t, frozen.ID)
	assert.Empty(t, frozen.BaseID)
	require.NotNil(t, frozen.ArchivedAt())
	assert.True(t, frozen.ArchivedAt().Equal(at))
	assert.Equal(t, time.UTC, frozen.ArchivedAt().Location())
	assert.True(t, frozen.IsTombstoned())

	frozen.AssignIdentity()
	assert.Equal(t, frozen.ID, frozen.BaseID)
	assert.NotEqual(t, v.BaseID, frozen.BaseID)
}

func TestIdeaVersions(t *testing.T) {
	idea := &Idea{Version: Version{ID: "r1", BaseID: "i1"}, Title: strPtr("t1")}

	next := idea.NewVersion()
	assert.Equal(t, "i1", next.BaseID)
	assert.Empty(t, next.ID)
	assert.Equal(t, idea.Title, next.Title)

	at := time.Now()
	frozen := idea.ArchiveCopy(at)
	assert.Empty(t, frozen.BaseID)
	assert.True(t, frozen.IsTombstoned())
	assert.Equal(t, "r1", idea.ID, "the original is left untouched")
}

func TestLinkArchiveCopy(t *testing.T) {
	link := &Link{Version: Version{ID: "l1", BaseID: "l1"}, SourceID: "a", TargetID: "b"}
	at := time.Now()

	t.Run("keeps endpoints without overrides", func(t *testing.T) {
		frozen, err := link.ArchiveCopy(at, CopyOverrides{})
		require.NoError(t, err)
		assert.Equal(t, "a", frozen.SourceID)
		assert.Equal(t, "b", frozen.TargetID)
		assert.True(t, frozen.IsTombstoned())
	})

	t.Run("redirects to persisted copies", func(t *testing.T) {
		target := &Idea{Version: Version{ID: "copy-b", BaseID: "copy-b"}}
		frozen, err := link.ArchiveCopy(at, CopyOverrides{Target: target})
		require.NoError(t, err)
		assert.Equal(t, "a", frozen.SourceID)
		assert.Equal(t, "copy-b", frozen.TargetID)
	})

	t.Run("rejects unpersisted copies", func(t *testing.T) {
		_, err := link.ArchiveCopy(at, CopyOverrides{Source: &Idea{}})
		assert.ErrorIs(t, err, domain.ErrCopyOrder)

		_, err = link.ArchiveCopy(at, CopyOverrides{Target: &Idea{}})
		assert.ErrorIs(t, err, domain.ErrCopyOrder)
	})
}

func TestLessLink(t *testing.T) {
	links := []Link{
		{Version: Version{ID: "c"}, Order: 1},
		{Version: Version{ID: "b"}, Order: 1},
		{Version: Version{ID: "z"}, Order: 0.5},
	}
	sort.Slice(links, func(i, j int) bool { return LessLink(&links[i], &links[j]) })

	var ids []string
	for _, l := range links {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"z", "b", "c"}, ids)
}

func TestTypeDefaults(t *testing.T) {
	assert.Equal(t, DefaultIdeaType, (&Idea{}).TypeOrDefault())
	assert.Equal(t, "Question", (&Idea{SemanticType: "Question"}).TypeOrDefault())
	assert.Equal(t, DefaultLinkType, (&Link{}).TypeOrDefault())

	rules := map[string][]string{"B": {"x"}, "A": {"y", "z"}}
	assert.True(t, Allows(rules, "A", "z"))
	assert.False(t, Allows(rules, "B", "z"))
	assert.False(t, Allows(rules, "C", "x"))
	assert.Equal(t, []string{"A", "B"}, SortedLinkTypes(rules))
}

func TestChildrenMap(t *testing.T) {
	m := ChildrenMap{NoParent: {"root"}, "root": {"a", "b"}}
	assert.Equal(t, "root", m.Root())
	assert.Equal(t, []string{"a", "b"}, m.Children("root"))
	assert.Nil(t, m.Children("a"))
	assert.Empty(t, ChildrenMap{}.Root())
}

func strPtr(s string) *string { return &s }
