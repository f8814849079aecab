package main

import (
	"context"
	"fmt"
	"strings"

	models "agora/internal/domain/models/ideagraph"
	graphSvc "agora/internal/domain/services/ideagraph"

	loremgen "github.com/bozaro/golorem"
	"github.com/spf13/cobra"
)

type seedIdea struct {
	path        string // "/"-separated titles, parent first
	description string
}

var seedIdeas = []seedIdea{
	{path: "Transport", description: "How should the city move people around?"},
	{path: "Transport/More bike lanes", description: "Protected lanes on every arterial road."},
	{path: "Transport/More bike lanes/Winter maintenance", description: "Lanes must be cleared before car lanes."},
	{path: "Transport/Free buses", description: "Fare-free buses funded by parking revenue."},
	{path: "Housing", description: "Where should new homes be built?"},
	{path: "Housing/Densify near stations", description: "Allow six storeys within walking distance of rail."},
	{path: "Housing/Densify near stations/Shadow studies", description: "Require shadow studies for towers over ten storeys."},
}

var (
	seedSlug   string
	seedFiller int
)

func init() {
	seedCmd.Flags().StringVar(&seedSlug, "slug", "city-plan", "slug of the demo discussion")
	seedCmd.Flags().IntVar(&seedFiller, "filler", 0, "number of lorem ipsum ideas to add under each top-level idea")
}

// fillerIdeas adds n generated ideas below parent, each with a paragraph of
// placeholder text, to give word counts and outlines some bulk.
func fillerIdeas(ctx context.Context, e *env, discussionID string, parent *models.Idea, n int, gen *loremgen.Lorem) ([]string, error) {
	ids := make([]string, 0, n)
	parentID := parent.BaseID
	for i := 0; i < n; i++ {
		idea, err := e.services.Ideas.CreateIdea(ctx, actingUser, &graphSvc.CreateIdeaRequest{
			DiscussionID: discussionID,
			ParentID:     &parentID,
			Title:        map[string]string{"en": strings.TrimSuffix(gen.Sentence(2, 5), ".")},
			Description:  map[string]string{"en": "<p>" + gen.Paragraph(2, 4) + "</p>"},
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, idea.BaseID)
	}
	return ids, nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		discussion, root, err := e.services.Discussions.CreateDiscussion(ctx, actingUser, &graphSvc.CreateDiscussionRequest{
			Slug:  seedSlug,
			Title: "City plan",
			Open:  true,
		})
		if err != nil {
			return err
		}

		byPath := map[string]*models.Idea{"": root}
		var created []string
		for i, s := range seedIdeas {
			parentPath, title := splitSeedPath(s.path)
			parent, ok := byPath[parentPath]
			if !ok {
				return fmt.Errorf("seed idea %q listed before its parent", s.path)
			}
			parentID := parent.BaseID
			idea, err := e.services.Ideas.CreateIdea(ctx, actingUser, &graphSvc.CreateIdeaRequest{
				DiscussionID: discussion.ID,
				ParentID:     &parentID,
				Title:        map[string]string{"en": title},
				Description:  map[string]string{"en": s.description},
			})
			if err != nil {
				return fmt.Errorf("create %q: %w", s.path, err)
			}
			byPath[s.path] = idea
			created = append(created, idea.BaseID)
			e.logger.Info("seeded idea", "n", i+1, "of", len(seedIdeas), "path", s.path, "idea_id", idea.BaseID)
		}

		if seedFiller > 0 {
			gen := loremgen.New()
			for _, path := range []string{"Transport", "Housing"} {
				ids, err := fillerIdeas(ctx, e, discussion.ID, byPath[path], seedFiller, gen)
				if err != nil {
					return fmt.Errorf("filler under %q: %w", path, err)
				}
				created = append(created, ids...)
			}
			e.logger.Info("seeded filler ideas", "per_parent", seedFiller)
		}

		// A draft synthesis over two ideas, ready for "agoractl publish"
		draft, err := e.services.Syntheses.CreateDraft(ctx, actingUser, &graphSvc.CreateSynthesisRequest{
			DiscussionID: discussion.ID,
			Subject:      map[string]string{"en": "Where the city agrees"},
		})
		if err != nil {
			return err
		}
		for _, path := range []string{"Transport/More bike lanes/Winter maintenance", "Housing/Densify near stations"} {
			if err := e.services.Syntheses.AddIdea(ctx, actingUser, draft.ID, byPath[path].BaseID); err != nil {
				return err
			}
		}

		return printResult(cmd.OutOrStdout(), map[string]any{
			"discussion_id": discussion.ID,
			"root_id":       root.BaseID,
			"ideas":         created,
			"synthesis_id":  draft.ID,
		})
	})
}

func splitSeedPath(path string) (parent, title string) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}
