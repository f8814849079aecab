package ideagraph

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"agora/internal/domain"
	models "agora/internal/domain/models/ideagraph"
	"agora/internal/repository/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRepositories connects to TEST_DATABASE_URL with a throwaway table
// prefix. The test is skipped when no database is configured.
func newTestRepositories(t *testing.T) (context.Context, *postgres.RepositoryConfig) {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, url)
	require.NoError(t, err)

	tables := postgres.NewTableNames(fmt.Sprintf("test_%d_", time.Now().UnixNano()))
	require.NoError(t, postgres.EnsureSchema(ctx, pool, tables))
	t.Cleanup(func() {
		_ = postgres.DropSchema(ctx, pool, tables)
		pool.Close()
	})

	return ctx, &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: slog.New(slog.DiscardHandler),
	}
}

func TestPostgresVersionedRows(t *testing.T) {
	ctx, cfg := newTestRepositories(t)
	repos := NewRepositories(cfg)

	d := &models.Discussion{Slug: "pg", Title: "pg", OwnerID: "u", CreatedAt: time.Now().UTC()}
	require.NoError(t, repos.Discussions.Create(ctx, d))
	err := repos.Discussions.Create(ctx, &models.Discussion{Slug: "pg", Title: "again", OwnerID: "u", CreatedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, domain.ErrConflict)

	root := &models.Idea{DiscussionID: d.ID, Kind: models.IdeaKindRoot, PubState: models.PubStatePublished, CreatedAt: time.Now().UTC()}
	child := &models.Idea{DiscussionID: d.ID, Kind: models.IdeaKindIdea, PubState: models.PubStatePublished, CreatedAt: time.Now().UTC()}
	require.NoError(t, repos.Tx.ExecTx(ctx, func(ctx context.Context) error {
		if err := repos.Ideas.Create(ctx, root); err != nil {
			return err
		}
		if err := repos.Ideas.Create(ctx, child); err != nil {
			return err
		}
		return repos.Links.Create(ctx, &models.Link{
			DiscussionID: d.ID,
			SourceID:     root.BaseID,
			TargetID:     child.BaseID,
			LinkType:     models.DefaultLinkType,
			CreatedAt:    time.Now().UTC(),
		})
	}))
	assert.Equal(t, root.ID, root.BaseID)

	n, err := repos.Links.CountLiveFrom(ctx, root.BaseID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// A new version keeps the logical id and supersedes the old row
	next := child.NewVersion()
	require.NoError(t, repos.Tx.ExecTx(ctx, func(ctx context.Context) error {
		if err := repos.Ideas.Tombstone(ctx, child.ID, time.Now().UTC()); err != nil {
			return err
		}
		return repos.Ideas.Create(ctx, next)
	}))
	live, err := repos.Ideas.GetLive(ctx, child.BaseID)
	require.NoError(t, err)
	assert.Equal(t, next.ID, live.ID)

	old, err := repos.Ideas.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.True(t, old.IsTombstoned())

	t.Run("failed transaction writes nothing", func(t *testing.T) {
		stray := &models.Idea{DiscussionID: d.ID, Kind: models.IdeaKindIdea, PubState: models.PubStateDraft, CreatedAt: time.Now().UTC()}
		err := repos.Tx.ExecTx(ctx, func(ctx context.Context) error {
			if err := repos.Ideas.Create(ctx, stray); err != nil {
				return err
			}
			return domain.ErrValidation
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
		_, err = repos.Ideas.GetLive(ctx, stray.BaseID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("text bundles clone", func(t *testing.T) {
		id, err := repos.TextBundles.Create(ctx, map[string]string{"en": "hello", "fr": "bonjour"})
		require.NoError(t, err)
		clone, err := repos.TextBundles.Clone(ctx, id)
		require.NoError(t, err)
		assert.NotEqual(t, id, clone)
		entries, err := repos.TextBundles.Get(ctx, clone)
		require.NoError(t, err)
		assert.Equal(t, "bonjour", entries["fr"])
	})
}
