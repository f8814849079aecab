package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the idea graph tables for the configured prefix.
// Statements are idempotent so it is safe to run on every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, t *TableNames) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			slug TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			open BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, t.Discussions),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			entries JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, t.TextBundles),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			base_id UUID NOT NULL,
			tombstone_date TIMESTAMPTZ,
			discussion_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			title_id UUID REFERENCES %s(id),
			description_id UUID REFERENCES %s(id),
			hidden BOOLEAN NOT NULL DEFAULT FALSE,
			creator_id TEXT NOT NULL,
			semantic_type TEXT NOT NULL DEFAULT '',
			pub_state TEXT NOT NULL DEFAULT 'draft',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, t.Ideas, t.Discussions, t.TextBundles, t.TextBundles),

		// At most one live row per logical idea, and one live root per discussion
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s_live_base ON %s(base_id) WHERE tombstone_date IS NULL`,
			t.Ideas, t.Ideas),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s_live_root ON %s(discussion_id) WHERE kind = 'root' AND tombstone_date IS NULL`,
			t.Ideas, t.Ideas),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_discussion ON %s(discussion_id) WHERE tombstone_date IS NULL`,
			t.Ideas, t.Ideas),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			base_id UUID NOT NULL,
			tombstone_date TIMESTAMPTZ,
			discussion_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			source_id UUID NOT NULL,
			target_id UUID NOT NULL,
			sort_order DOUBLE PRECISION NOT NULL DEFAULT 0,
			link_type TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, t.Links, t.Discussions),

		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s_live_base ON %s(base_id) WHERE tombstone_date IS NULL`,
			t.Links, t.Links),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_source ON %s(source_id) WHERE tombstone_date IS NULL`,
			t.Links, t.Links),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_target ON %s(target_id) WHERE tombstone_date IS NULL`,
			t.Links, t.Links),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			discussion_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			state TEXT NOT NULL DEFAULT 'draft',
			subject_id UUID REFERENCES %s(id),
			introduction_id UUID REFERENCES %s(id),
			conclusion_id UUID REFERENCES %s(id),
			source_id UUID REFERENCES %s(id),
			creator_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			published_at TIMESTAMPTZ
		)`, t.Syntheses, t.Discussions, t.TextBundles, t.TextBundles, t.TextBundles, t.Syntheses),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			synthesis_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			idea_id UUID NOT NULL,
			position BIGSERIAL,
			PRIMARY KEY (synthesis_id, idea_id)
		)`, t.SynthesisIdeas, t.Syntheses),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			synthesis_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			link_id UUID NOT NULL REFERENCES %s(id),
			PRIMARY KEY (synthesis_id, link_id)
		)`, t.SynthesisLinks, t.Syntheses, t.Links),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// DropSchema removes every table for the configured prefix.
func DropSchema(ctx context.Context, pool *pgxpool.Pool, t *TableNames) error {
	for _, table := range []string{
		t.SynthesisLinks, t.SynthesisIdeas, t.Syntheses, t.Links, t.Ideas, t.TextBundles, t.Discussions,
	} {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
