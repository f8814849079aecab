package ideagraph

import (
	"database/sql"
	"fmt"

	models "agora/internal/domain/models/ideagraph"
	"agora/internal/repository/sqlite"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const ideaColumns = `id, base_id, tombstone_date, discussion_id, kind, title_id, description_id,
	hidden, creator_id, semantic_type, pub_state, created_at, updated_at`

const linkColumns = `id, base_id, tombstone_date, discussion_id, source_id, target_id,
	sort_order, link_type, created_at`

const qualifiedLinkColumns = `l.id, l.base_id, l.tombstone_date, l.discussion_id, l.source_id, l.target_id,
	l.sort_order, l.link_type, l.created_at`

func scanIdea(row rowScanner) (*models.Idea, error) {
	var (
		idea      models.Idea
		tombstone sql.NullInt64
		created   int64
		updated   int64
	)
	err := row.Scan(
		&idea.ID,
		&idea.BaseID,
		&tombstone,
		&idea.DiscussionID,
		&idea.Kind,
		&idea.Title,
		&idea.Description,
		&idea.Hidden,
		&idea.CreatorID,
		&idea.SemanticType,
		&idea.PubState,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err
	}
	idea.TombstoneDate = sqlite.FromNullNanos(tombstone)
	idea.CreatedAt = sqlite.FromNanos(created)
	idea.UpdatedAt = sqlite.FromNanos(updated)
	return &idea, nil
}

func scanLink(row rowScanner) (*models.Link, error) {
	var (
		link      models.Link
		tombstone sql.NullInt64
		created   int64
	)
	err := row.Scan(
		&link.ID,
		&link.BaseID,
		&tombstone,
		&link.DiscussionID,
		&link.SourceID,
		&link.TargetID,
		&link.Order,
		&link.LinkType,
		&created,
	)
	if err != nil {
		return nil, err
	}
	link.TombstoneDate = sqlite.FromNullNanos(tombstone)
	link.CreatedAt = sqlite.FromNanos(created)
	return &link, nil
}

func collectIdeas(rows *sql.Rows) ([]models.Idea, error) {
	defer rows.Close()

	ideas := []models.Idea{}
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("scan idea: %w", err)
		}
		ideas = append(ideas, *idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ideas: %w", err)
	}
	return ideas, nil
}

func collectLinks(rows *sql.Rows) ([]models.Link, error) {
	defer rows.Close()

	links := []models.Link{}
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, *link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}
	return links, nil
}
