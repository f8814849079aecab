package ideagraph

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"agora/internal/domain"
	models "agora/internal/domain/models/ideagraph"
	"agora/internal/domain/repositories"
	graphRepo "agora/internal/domain/repositories/ideagraph"
	graphSvc "agora/internal/domain/services/ideagraph"
)

type graphService struct {
	discussionRepo graphRepo.DiscussionRepository
	ideaRepo       graphRepo.IdeaRepository
	linkRepo       graphRepo.LinkRepository
	txManager      repositories.TransactionManager
	counts         *ChildCountCache
	logger         *slog.Logger
}

// NewGraphService creates a new graph read service
func NewGraphService(repos graphRepo.Repositories, counts *ChildCountCache, logger *slog.Logger) graphSvc.GraphService {
	if counts == nil {
		counts = NewChildCountCache()
	}
	return &graphService{
		discussionRepo: repos.Discussions,
		ideaRepo:       repos.Ideas,
		linkRepo:       repos.Links,
		txManager:      repos.Tx,
		counts:         counts,
		logger:         logger,
	}
}

// requireRoot returns the single live root of a discussion. Zero or several
// live roots break a core invariant and are reported as such.
func requireRoot(ctx context.Context, discussions graphRepo.DiscussionRepository, ideas graphRepo.IdeaRepository, discussionID string) (*models.Idea, error) {
	roots, err := ideas.ListLiveRoots(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	switch len(roots) {
	case 1:
		return &roots[0], nil
	case 0:
		if _, err := discussions.GetByID(ctx, discussionID); err != nil {
			return nil, err
		}
		return nil, &domain.InvariantViolationError{DiscussionID: discussionID, Message: "no live root idea"}
	default:
		return nil, &domain.InvariantViolationError{
			DiscussionID: discussionID,
			Message:      fmt.Sprintf("%d live root ideas", len(roots)),
		}
	}
}

// buildChildrenMap groups live links between live ideas by source.
func buildChildrenMap(rootID string, ideas map[string]*models.Idea, links []models.Link) models.ChildrenMap {
	live := make([]*models.Link, 0, len(links))
	for i := range links {
		l := &links[i]
		if _, ok := ideas[l.SourceID]; !ok {
			continue
		}
		if _, ok := ideas[l.TargetID]; !ok {
			continue
		}
		live = append(live, l)
	}
	sort.SliceStable(live, func(i, j int) bool { return models.LessLink(live[i], live[j]) })

	children := models.ChildrenMap{
		models.NoParent: {rootID},
		rootID:          {},
	}
	for _, l := range live {
		children[l.SourceID] = append(children[l.SourceID], l.TargetID)
	}
	return children
}

func (s *graphService) load(ctx context.Context, discussionID string) (*graphSvc.Graph, error) {
	root, err := requireRoot(ctx, s.discussionRepo, s.ideaRepo, discussionID)
	if err != nil {
		return nil, err
	}
	ideas, err := s.ideaRepo.ListLive(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	links, err := s.linkRepo.ListLive(ctx, discussionID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Idea, len(ideas))
	for i := range ideas {
		byID[ideas[i].BaseID] = &ideas[i]
	}

	return &graphSvc.Graph{
		DiscussionID: discussionID,
		RootID:       root.BaseID,
		Ideas:        byID,
		Children:     buildChildrenMap(root.BaseID, byID, links),
	}, nil
}

// Load returns the live ideas of a discussion and their children map, read
// from one snapshot.
func (s *graphService) Load(ctx context.Context, discussionID string) (*graphSvc.Graph, error) {
	var g *graphSvc.Graph
	err := s.txManager.ExecReadTx(ctx, func(ctx context.Context) error {
		var err error
		g, err = s.load(ctx, discussionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ChildrenOf returns every parent -> ordered children relation of a discussion
func (s *graphService) ChildrenOf(ctx context.Context, discussionID string) (models.ChildrenMap, error) {
	g, err := s.Load(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	return g.Children, nil
}

// Children returns the live children of an idea ordered by link order
func (s *graphService) Children(ctx context.Context, ideaID string) ([]models.Idea, error) {
	var out []models.Idea
	err := s.txManager.ExecReadTx(ctx, func(ctx context.Context) error {
		links, err := s.linkRepo.ListLiveFrom(ctx, []string{ideaID})
		if err != nil {
			return err
		}
		ids := make([]string, len(links))
		for i, l := range links {
			ids[i] = l.TargetID
		}
		out, err = s.orderedIdeas(ctx, ids)
		return err
	})
	return out, err
}

// Parents returns the live parents of an idea ordered by link order
func (s *graphService) Parents(ctx context.Context, ideaID string) ([]models.Idea, error) {
	var out []models.Idea
	err := s.txManager.ExecReadTx(ctx, func(ctx context.Context) error {
		links, err := s.linkRepo.ListLiveTo(ctx, []string{ideaID})
		if err != nil {
			return err
		}
		ids := make([]string, len(links))
		for i, l := range links {
			ids[i] = l.SourceID
		}
		out, err = s.orderedIdeas(ctx, ids)
		return err
	})
	return out, err
}

// orderedIdeas resolves ids to live ideas, keeping the order of ids
func (s *graphService) orderedIdeas(ctx context.Context, ids []string) ([]models.Idea, error) {
	byID, err := s.ideaRepo.GetLiveMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.Idea, 0, len(ids))
	for _, id := range ids {
		if idea, ok := byID[id]; ok {
			out = append(out, *idea)
		}
	}
	return out, nil
}

// NumChildren counts the live outgoing links of an idea
func (s *graphService) NumChildren(ctx context.Context, ideaID string) (int, error) {
	if n, ok := s.counts.get(ideaID); ok {
		return n, nil
	}
	gen := s.counts.generation()
	n, err := s.linkRepo.CountLiveFrom(ctx, ideaID)
	if err != nil {
		return 0, err
	}
	s.counts.setAt(ideaID, n, gen)
	return n, nil
}

// Traverse lists the live ideas reachable from startID in traversal order
func (s *graphService) Traverse(ctx context.Context, discussionID, startID string, order graphSvc.TraversalOrder, includeHidden bool) ([]models.Idea, error) {
	g, err := s.Load(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	if startID == "" {
		startID = g.RootID
	}

	v := &ListVisitor{IncludeHidden: includeHidden}
	switch order {
	case graphSvc.BreadthFirst:
		_, err = BreadthFirstFrom[struct{}](g, startID, v)
	case graphSvc.DepthFirst, "":
		_, err = DepthFirstFrom[struct{}](g, startID, v)
	default:
		return nil, fmt.Errorf("%w: unknown traversal order %q", domain.ErrValidation, order)
	}
	if err != nil {
		return nil, err
	}

	out := make([]models.Idea, len(v.Ideas))
	for i, idea := range v.Ideas {
		out[i] = *idea
	}
	return out, nil
}

// Root returns the live root idea of a discussion
func (s *graphService) Root(ctx context.Context, discussionID string) (*models.Idea, error) {
	var root *models.Idea
	err := s.txManager.ExecReadTx(ctx, func(ctx context.Context) error {
		var err error
		root, err = requireRoot(ctx, s.discussionRepo, s.ideaRepo, discussionID)
		return err
	})
	return root, err
}

// Orphans returns live non-root ideas without any incoming live link
func (s *graphService) Orphans(ctx context.Context, discussionID string) ([]models.Idea, error) {
	g, err := s.Load(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	return orphansOf(g), nil
}

func orphansOf(g *graphSvc.Graph) []models.Idea {
	hasParent := map[string]bool{}
	for parent, children := range g.Children {
		if parent == models.NoParent {
			continue
		}
		for _, c := range children {
			hasParent[c] = true
		}
	}

	orphans := []models.Idea{}
	for id, idea := range g.Ideas {
		if id == g.RootID || hasParent[id] {
			continue
		}
		orphans = append(orphans, *idea)
	}
	sort.Slice(orphans, func(i, j int) bool { return orphans[i].BaseID < orphans[j].BaseID })
	return orphans
}

// reachableVisitor counts the ids reached by a traversal
type reachableVisitor struct {
	IdentityFold[string, struct{}]
	seen map[string]bool
}

func (v *reachableVisitor) Visit(id string, _ int, _ struct{}) (struct{}, error) {
	v.seen[id] = true
	return struct{}{}, nil
}

// CheckIntegrity verifies the root and reachability invariants
func (s *graphService) CheckIntegrity(ctx context.Context, discussionID string) (*models.IntegrityReport, error) {
	g, err := s.Load(ctx, discussionID)
	if err != nil {
		return nil, err
	}

	reach := &reachableVisitor{seen: map[string]bool{}}
	if _, err := DepthFirstIDs[struct{}](g.Children, g.RootID, reach); err != nil {
		return nil, err
	}

	orphans := orphansOf(g)
	isOrphan := make(map[string]bool, len(orphans))
	report := &models.IntegrityReport{
		DiscussionID: discussionID,
		RootID:       g.RootID,
		LiveIdeas:    len(g.Ideas),
		Reachable:    len(reach.seen),
		Orphans:      []string{},
		Unreachable:  []string{},
	}
	for _, o := range orphans {
		isOrphan[o.BaseID] = true
		report.Orphans = append(report.Orphans, o.BaseID)
	}
	for id := range g.Ideas {
		if !reach.seen[id] && !isOrphan[id] {
			report.Unreachable = append(report.Unreachable, id)
		}
	}
	sort.Strings(report.Unreachable)

	if !report.Healthy() {
		s.logger.Warn("discussion graph has unreachable ideas",
			"discussion_id", discussionID,
			"unreachable", len(report.Unreachable),
		)
	}
	return report, nil
}
