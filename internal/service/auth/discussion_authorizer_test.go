package auth

import (
	"context"
	"log/slog"
	"testing"

	"agora/internal/config"
	"agora/internal/domain"
	graphSvc "agora/internal/domain/services/ideagraph"
	"agora/internal/repository/sqlite"
	sqliteGraph "agora/internal/repository/sqlite/ideagraph"
	"agora/internal/service/ideagraph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "owner-1"

func TestDiscussionAuthorizer(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.EnsureSchema(ctx))

	logger := slog.New(slog.DiscardHandler)
	repos := sqliteGraph.NewRepositories(db, logger)
	svc, err := ideagraph.SetupServices(repos, config.DefaultTypeRegistry(), nil, logger)
	require.NoError(t, err)

	open, openRoot, err := svc.Discussions.CreateDiscussion(ctx, owner, &graphSvc.CreateDiscussionRequest{Slug: "open", Title: "Open", Open: true})
	require.NoError(t, err)
	closed, _, err := svc.Discussions.CreateDiscussion(ctx, owner, &graphSvc.CreateDiscussionRequest{Slug: "closed", Title: "Closed"})
	require.NoError(t, err)

	rootID := openRoot.BaseID
	idea, err := svc.Ideas.CreateIdea(ctx, owner, &graphSvc.CreateIdeaRequest{
		DiscussionID: open.ID,
		ParentID:     &rootID,
		Title:        map[string]string{"en": "idea"},
	})
	require.NoError(t, err)
	draft, err := svc.Syntheses.CreateDraft(ctx, owner, &graphSvc.CreateSynthesisRequest{
		DiscussionID: closed.ID,
		Subject:      map[string]string{"en": "subject"},
	})
	require.NoError(t, err)

	a := NewDiscussionAuthorizer(repos)

	t.Run("owner has full access", func(t *testing.T) {
		assert.NoError(t, a.CanWriteDiscussion(ctx, owner, closed.ID))
		assert.NoError(t, a.CanReadSynthesis(ctx, owner, draft.ID))
		assert.NoError(t, a.CanWriteSynthesis(ctx, owner, draft.ID))
	})

	t.Run("open discussions accept other users", func(t *testing.T) {
		assert.NoError(t, a.CanReadDiscussion(ctx, "someone", open.ID))
		assert.NoError(t, a.CanWriteIdea(ctx, "someone", idea.BaseID))
	})

	t.Run("anonymous users can only read open discussions", func(t *testing.T) {
		assert.NoError(t, a.CanReadDiscussion(ctx, "", open.ID))
		assert.ErrorIs(t, a.CanWriteDiscussion(ctx, "", open.ID), domain.ErrUnauthorized)
		assert.ErrorIs(t, a.CanReadDiscussion(ctx, "", closed.ID), domain.ErrForbidden)
	})

	t.Run("closed discussions reject other users", func(t *testing.T) {
		assert.ErrorIs(t, a.CanReadDiscussion(ctx, "someone", closed.ID), domain.ErrForbidden)
		assert.ErrorIs(t, a.CanReadSynthesis(ctx, "someone", draft.ID), domain.ErrForbidden)
	})

	t.Run("unknown resources", func(t *testing.T) {
		assert.ErrorIs(t, a.CanReadDiscussion(ctx, owner, "missing"), domain.ErrNotFound)
		assert.ErrorIs(t, a.CanWriteIdea(ctx, owner, "missing"), domain.ErrNotFound)
		assert.ErrorIs(t, a.CanWriteLink(ctx, owner, "missing"), domain.ErrNotFound)
		assert.ErrorIs(t, a.CanWriteSynthesis(ctx, owner, "missing"), domain.ErrNotFound)
	})
}
