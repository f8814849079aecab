package ideagraph

import (
	"fmt"
	"log/slog"

	graphRepo "agora/internal/domain/repositories/ideagraph"
	graphSvc "agora/internal/domain/services/ideagraph"
	"agora/internal/richtext"
)

// Services bundles the graph services built over one store
type Services struct {
	Discussions graphSvc.DiscussionService
	Ideas       graphSvc.IdeaService
	Links       graphSvc.LinkService
	Syntheses   graphSvc.SynthesisService
	Graph       graphSvc.GraphService
	Ancestry    graphSvc.AncestryResolver
	TypeRules   graphSvc.TypeRulePropagator
	Analysis    graphSvc.AnalysisService
	Hooks       *HookManager
	Counts      *ChildCountCache
}

// Types is implemented by a type registry that answers both ontology and
// typology lookups.
type Types interface {
	graphSvc.Ontology
	graphSvc.TypologyProvider
}

// SetupServices wires the graph services together. Every mutation reports to
// the returned HookManager, which already carries the child count cache hook;
// callers register further hooks (metrics, logging) on it.
// posts may be nil.
func SetupServices(repos graphRepo.Repositories, types Types, posts graphSvc.PostSource, logger *slog.Logger) (*Services, error) {
	hooks := NewHookManager(logger)
	counts := NewChildCountCache()
	if err := hooks.Register("child-counts", counts.Hook()); err != nil {
		return nil, fmt.Errorf("register cache hook: %w", err)
	}

	validator := NewStructureValidator(repos)
	typeRules := NewTypeRulePropagator(repos, types, types, hooks, logger)
	graph := NewGraphService(repos, counts, logger)
	ancestry := NewAncestryResolver(repos)
	sanitizer := richtext.NewSanitizer()

	return &Services{
		Discussions: NewDiscussionService(repos, hooks, logger),
		Ideas:       NewIdeaService(repos, validator, typeRules, sanitizer, hooks, logger),
		Links:       NewLinkService(repos, validator, typeRules, hooks, logger),
		Syntheses:   NewSynthesisService(repos, sanitizer, hooks, logger),
		Graph:       graph,
		Ancestry:    ancestry,
		TypeRules:   typeRules,
		Analysis:    NewAnalysisService(graph, repos, posts, logger),
		Hooks:       hooks,
		Counts:      counts,
	}, nil
}
