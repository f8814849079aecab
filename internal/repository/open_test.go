package repository

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"agora/internal/config"
	models "agora/internal/domain/models/ideagraph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndResetSQLite(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)
	cfg := &config.Config{
		Environment: "test",
		StoreDriver: config.StoreSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "agora.db"),
	}

	repos, closer, err := Open(ctx, cfg, logger)
	require.NoError(t, err)
	require.NoError(t, repos.Discussions.Create(ctx, &models.Discussion{Slug: "kept", Title: "kept", CreatedAt: time.Now().UTC()}))
	require.NoError(t, closer.Close())

	repos, closer, err = Open(ctx, cfg, logger)
	require.NoError(t, err)
	list, err := repos.Discussions.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	require.NoError(t, closer.Close())

	repos, closer, err = Reset(ctx, cfg, logger)
	require.NoError(t, err)
	defer closer.Close()
	list, err = repos.Discussions.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestResetRefusesProd(t *testing.T) {
	cfg := &config.Config{Environment: "prod", StoreDriver: config.StoreSQLite, SQLitePath: ":memory:"}
	_, _, err := Reset(context.Background(), cfg, slog.New(slog.DiscardHandler))
	assert.Error(t, err)
}

func TestOpenUnknownDriver(t *testing.T) {
	cfg := &config.Config{StoreDriver: "mysql"}
	_, _, err := Open(context.Background(), cfg, slog.New(slog.DiscardHandler))
	assert.Error(t, err)
}
