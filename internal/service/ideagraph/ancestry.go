package ideagraph

import (
	"context"

	models "agora/internal/domain/models/ideagraph"
	"agora/internal/domain/repositories"
	graphRepo "agora/internal/domain/repositories/ideagraph"
	graphSvc "agora/internal/domain/services/ideagraph"
)

type ancestryResolver struct {
	ideaRepo  graphRepo.IdeaRepository
	linkRepo  graphRepo.LinkRepository
	txManager repositories.TransactionManager
}

// NewAncestryResolver creates a resolver over live links
func NewAncestryResolver(repos graphRepo.Repositories) graphSvc.AncestryResolver {
	return &ancestryResolver{
		ideaRepo:  repos.Ideas,
		linkRepo:  repos.Links,
		txManager: repos.Tx,
	}
}

// Descendants follows source -> target links from rootID until no new idea appears
func (r *ancestryResolver) Descendants(ctx context.Context, rootID string, inclusive bool) (map[string]struct{}, error) {
	var out map[string]struct{}
	err := r.txManager.ExecReadTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = r.closure(ctx, []string{rootID}, inclusive, func(l models.Link) string { return l.TargetID },
			r.linkRepo.ListLiveFrom)
		return err
	})
	return out, err
}

// Ancestors follows target -> source links from every target id
func (r *ancestryResolver) Ancestors(ctx context.Context, inclusive bool, targetIDs ...string) (map[string]struct{}, error) {
	var out map[string]struct{}
	err := r.txManager.ExecReadTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = r.closure(ctx, targetIDs, inclusive, func(l models.Link) string { return l.SourceID },
			r.linkRepo.ListLiveTo)
		return err
	})
	return out, err
}

// closure expands a frontier to a fixpoint. Seeds that are not live ideas
// are dropped, so unknown ids yield an empty set.
func (r *ancestryResolver) closure(
	ctx context.Context,
	seeds []string,
	inclusive bool,
	next func(models.Link) string,
	expand func(ctx context.Context, ids []string) ([]models.Link, error),
) (map[string]struct{}, error) {
	result := map[string]struct{}{}

	live, err := r.ideaRepo.GetLiveMany(ctx, seeds)
	if err != nil {
		return nil, err
	}

	visited := map[string]bool{}
	var frontier []string
	for _, id := range seeds {
		if _, ok := live[id]; !ok || visited[id] {
			continue
		}
		visited[id] = true
		frontier = append(frontier, id)
		if inclusive {
			result[id] = struct{}{}
		}
	}

	for len(frontier) > 0 {
		links, err := expand(ctx, frontier)
		if err != nil {
			return nil, err
		}
		frontier = nil
		for _, l := range links {
			id := next(l)
			result[id] = struct{}{}
			if visited[id] {
				continue
			}
			visited[id] = true
			frontier = append(frontier, id)
		}
	}
	return result, nil
}

// linkClosure is the in-memory counterpart of closure over a loaded link
// set. It walks towards sources when up is set and towards targets otherwise.
// Seeds only appear in the result when another seed reaches them.
func linkClosure(links []models.Link, seeds []string, up bool) map[string]struct{} {
	adjacent := make(map[string][]string, len(links))
	for _, l := range links {
		if up {
			adjacent[l.TargetID] = append(adjacent[l.TargetID], l.SourceID)
		} else {
			adjacent[l.SourceID] = append(adjacent[l.SourceID], l.TargetID)
		}
	}

	result := map[string]struct{}{}
	visited := make(map[string]bool, len(seeds))
	frontier := make([]string, 0, len(seeds))
	for _, id := range seeds {
		if !visited[id] {
			visited[id] = true
			frontier = append(frontier, id)
		}
	}
	for len(frontier) > 0 {
		id := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		for _, next := range adjacent[id] {
			result[next] = struct{}{}
			if !visited[next] {
				visited[next] = true
				frontier = append(frontier, next)
			}
		}
	}
	return result
}
