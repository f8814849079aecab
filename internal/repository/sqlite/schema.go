package sqlite

import (
	"context"
	"fmt"
)

// Table names. A SQLite file belongs to one environment, so there is no prefix.
const (
	TableDiscussions    = "discussions"
	TableTextBundles    = "text_bundles"
	TableIdeas          = "ideas"
	TableLinks          = "idea_links"
	TableSyntheses      = "syntheses"
	TableSynthesisIdeas = "synthesis_ideas"
	TableSynthesisLinks = "synthesis_links"
)

// Timestamps are stored as INTEGER unix nanoseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS discussions (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		open INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS text_bundles (
		id TEXT PRIMARY KEY,
		entries TEXT NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS ideas (
		id TEXT PRIMARY KEY,
		base_id TEXT NOT NULL,
		tombstone_date INTEGER,
		discussion_id TEXT NOT NULL REFERENCES discussions(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		title_id TEXT REFERENCES text_bundles(id),
		description_id TEXT REFERENCES text_bundles(id),
		hidden INTEGER NOT NULL DEFAULT 0,
		creator_id TEXT NOT NULL,
		semantic_type TEXT NOT NULL DEFAULT '',
		pub_state TEXT NOT NULL DEFAULT 'draft',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ideas_live_base ON ideas(base_id) WHERE tombstone_date IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ideas_live_root ON ideas(discussion_id) WHERE kind = 'root' AND tombstone_date IS NULL`,
	`CREATE INDEX IF NOT EXISTS ideas_discussion ON ideas(discussion_id) WHERE tombstone_date IS NULL`,
	`CREATE TABLE IF NOT EXISTS idea_links (
		id TEXT PRIMARY KEY,
		base_id TEXT NOT NULL,
		tombstone_date INTEGER,
		discussion_id TEXT NOT NULL REFERENCES discussions(id) ON DELETE CASCADE,
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		sort_order REAL NOT NULL DEFAULT 0,
		link_type TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idea_links_live_base ON idea_links(base_id) WHERE tombstone_date IS NULL`,
	`CREATE INDEX IF NOT EXISTS idea_links_source ON idea_links(source_id) WHERE tombstone_date IS NULL`,
	`CREATE INDEX IF NOT EXISTS idea_links_target ON idea_links(target_id) WHERE tombstone_date IS NULL`,
	`CREATE TABLE IF NOT EXISTS syntheses (
		id TEXT PRIMARY KEY,
		discussion_id TEXT NOT NULL REFERENCES discussions(id) ON DELETE CASCADE,
		state TEXT NOT NULL DEFAULT 'draft',
		subject_id TEXT REFERENCES text_bundles(id),
		introduction_id TEXT REFERENCES text_bundles(id),
		conclusion_id TEXT REFERENCES text_bundles(id),
		source_id TEXT REFERENCES syntheses(id),
		creator_id TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		published_at INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS synthesis_ideas (
		synthesis_id TEXT NOT NULL REFERENCES syntheses(id) ON DELETE CASCADE,
		idea_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (synthesis_id, idea_id)
	)`,
	`CREATE TABLE IF NOT EXISTS synthesis_links (
		synthesis_id TEXT NOT NULL REFERENCES syntheses(id) ON DELETE CASCADE,
		link_id TEXT NOT NULL REFERENCES idea_links(id),
		PRIMARY KEY (synthesis_id, link_id)
	)`,
}

// EnsureSchema creates the idea graph tables if they do not exist
func (d *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// DropSchema removes every idea graph table, children first
func (d *DB) DropSchema(ctx context.Context) error {
	for _, table := range []string{
		"synthesis_links", "synthesis_ideas", "syntheses", "idea_links", "ideas", "text_bundles", "discussions",
	} {
		if _, err := d.conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
