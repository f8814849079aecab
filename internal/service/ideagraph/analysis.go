package ideagraph

import (
	"context"
	"log/slog"
	"strings"

	graphRepo "agora/internal/domain/repositories/ideagraph"
	graphSvc "agora/internal/domain/services/ideagraph"
	"agora/internal/richtext"
)

type analysisService struct {
	graph   graphSvc.GraphService
	bundles graphRepo.TextBundleRepository
	posts   graphSvc.PostSource
	md      *richtext.Converter
	logger  *slog.Logger
}

// NewAnalysisService creates the analysis service. posts may be nil, in which
// case only idea texts are counted.
func NewAnalysisService(
	graph graphSvc.GraphService,
	repos graphRepo.Repositories,
	posts graphSvc.PostSource,
	logger *slog.Logger,
) graphSvc.AnalysisService {
	return &analysisService{
		graph:   graph,
		bundles: repos.TextBundles,
		posts:   posts,
		md:      richtext.NewConverter(),
		logger:  logger,
	}
}

// MostCommonWords counts words below startID over the id-only traversal
func (s *analysisService) MostCommonWords(ctx context.Context, discussionID, startID, locale string, n int) ([]graphSvc.WordCount, error) {
	g, err := s.graph.Load(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	if startID == "" {
		startID = g.RootID
	}
	if _, ok := g.Idea(startID); !ok {
		return []graphSvc.WordCount{}, nil
	}

	texts, err := s.ideaTexts(ctx, g, locale, true)
	if err != nil {
		return nil, err
	}

	posts := map[string][]string{}
	if s.posts != nil {
		bodies, err := s.posts.PostsForIdea(ctx, startID)
		if err != nil {
			return nil, err
		}
		posts[startID] = bodies
	}

	visitor := NewWordCountVisitor(texts, posts)
	if _, err := DepthFirstIDs(g.Children, startID, visitor); err != nil {
		return nil, err
	}
	return visitor.MostCommonWords(n), nil
}

// Outline renders the live graph as an ASCII tree labelled with idea titles
func (s *analysisService) Outline(ctx context.Context, discussionID, locale string) (string, error) {
	g, err := s.graph.Load(ctx, discussionID)
	if err != nil {
		return "", err
	}
	labels, err := s.ideaTexts(ctx, g, locale, false)
	if err != nil {
		return "", err
	}

	visitor := &OutlineVisitor{Labels: labels}
	lines, err := DepthFirstIDs(g.Children, g.RootID, visitor)
	if err != nil {
		return "", err
	}
	return visitor.Render(lines), nil
}

// ideaTexts prefetches the title, and optionally the description, of every
// live idea in the chosen locale. Descriptions are read as markdown.
func (s *analysisService) ideaTexts(ctx context.Context, g *graphSvc.Graph, locale string, withDescription bool) (map[string]string, error) {
	texts := make(map[string]string, len(g.Ideas))
	for id, idea := range g.Ideas {
		var parts []string
		title, err := s.text(ctx, idea.Title, locale)
		if err != nil {
			return nil, err
		}
		if title != "" {
			parts = append(parts, title)
		}
		if withDescription {
			desc, err := s.text(ctx, idea.Description, locale)
			if err != nil {
				return nil, err
			}
			if desc != "" {
				desc, err = s.md.ToMarkdown(desc)
				if err != nil {
					s.logger.Warn("description is not valid html", "idea_id", id, "error", err)
				} else {
					parts = append(parts, desc)
				}
			}
		}
		texts[id] = strings.Join(parts, "\n")
	}
	return texts, nil
}

func (s *analysisService) text(ctx context.Context, handle *string, locale string) (string, error) {
	if handle == nil {
		return "", nil
	}
	entries, err := s.bundles.Get(ctx, *handle)
	if err != nil {
		return "", err
	}
	return pickLocale(entries, locale), nil
}
