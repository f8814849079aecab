package ideagraph

import (
	"fmt"
	"strings"

	models "agora/internal/domain/models/ideagraph"
)

// rowScanner is satisfied by both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

const ideaColumns = `id, base_id, tombstone_date, discussion_id, kind, title_id, description_id,
	hidden, creator_id, semantic_type, pub_state, created_at, updated_at`

func scanIdea(row rowScanner) (*models.Idea, error) {
	var idea models.Idea
	err := row.Scan(
		&idea.ID,
		&idea.BaseID,
		&idea.TombstoneDate,
		&idea.DiscussionID,
		&idea.Kind,
		&idea.Title,
		&idea.Description,
		&idea.Hidden,
		&idea.CreatorID,
		&idea.SemanticType,
		&idea.PubState,
		&idea.CreatedAt,
		&idea.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &idea, nil
}

// qualified prefixes every column of a column list with a table alias
func qualified(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

const linkColumns = `id, base_id, tombstone_date, discussion_id, source_id, target_id,
	sort_order, link_type, created_at`

func scanLink(row rowScanner) (*models.Link, error) {
	var link models.Link
	err := row.Scan(
		&link.ID,
		&link.BaseID,
		&link.TombstoneDate,
		&link.DiscussionID,
		&link.SourceID,
		&link.TargetID,
		&link.Order,
		&link.LinkType,
		&link.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

type rowsIterator interface {
	rowScanner
	Next() bool
	Err() error
	Close()
}

func collectLinks(rows rowsIterator) ([]models.Link, error) {
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

func collectIdeas(rows rowsIterator) ([]models.Idea, error) {
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
