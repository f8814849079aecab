package ideagraph

import (
	"context"
	"errors"
	"log/slog"

	"agora/internal/domain"
	models "agora/internal/domain/models/ideagraph"
	"agora/internal/domain/repositories"
	graphRepo "agora/internal/domain/repositories/ideagraph"
	graphSvc "agora/internal/domain/services/ideagraph"
)

type typeRulePropagator struct {
	ideaRepo   graphRepo.IdeaRepository
	linkRepo   graphRepo.LinkRepository
	txManager  repositories.TransactionManager
	ontology   graphSvc.Ontology
	typologies graphSvc.TypologyProvider
	notifier   graphSvc.ChangeNotifier
	logger     *slog.Logger
}

// NewTypeRulePropagator creates a new type rule propagator
func NewTypeRulePropagator(
	repos graphRepo.Repositories,
	ontology graphSvc.Ontology,
	typologies graphSvc.TypologyProvider,
	notifier graphSvc.ChangeNotifier,
	logger *slog.Logger,
) graphSvc.TypeRulePropagator {
	return &typeRulePropagator{
		ideaRepo:   repos.Ideas,
		linkRepo:   repos.Links,
		txManager:  repos.Tx,
		ontology:   ontology,
		typologies: typologies,
		notifier:   notifier,
		logger:     logger,
	}
}

// ApplyTypeRules re-validates the outgoing links of parentID against the
// discussion typology. Ideas whose type had to change are queued so their own
// links are checked too. Each idea is processed at most once, so the pass
// terminates even on a graph with a cycle.
func (p *typeRulePropagator) ApplyTypeRules(ctx context.Context, parentID string) error {
	return mutate(ctx, p.txManager, p.notifier, "", func(ctx context.Context) error {
		return p.propagate(ctx, parentID)
	})
}

func (p *typeRulePropagator) propagate(ctx context.Context, parentID string) error {
	queue := []string{parentID}
	processed := map[string]bool{}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if processed[id] {
			continue
		}
		processed[id] = true

		retyped, err := p.applyToParent(ctx, id)
		if err != nil {
			return err
		}
		queue = append(queue, retyped...)
	}
	return nil
}

// applyToParent fixes the outgoing links of one idea and returns the ids of
// children whose type changed.
func (p *typeRulePropagator) applyToParent(ctx context.Context, parentID string) ([]string, error) {
	parent, err := p.ideaRepo.GetLive(ctx, parentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	typology, err := p.typologies.Typology(ctx, parent.DiscussionID)
	if err != nil {
		return nil, err
	}
	rules, ok, err := p.rulesForParent(ctx, typology, parent.TypeOrDefault())
	if err != nil || !ok {
		return nil, err
	}

	links, err := p.linkRepo.ListLiveFrom(ctx, []string{parentID})
	if err != nil {
		return nil, err
	}
	targets := make([]string, len(links))
	for i, l := range links {
		targets[i] = l.TargetID
	}
	children, err := p.ideaRepo.GetLiveMany(ctx, targets)
	if err != nil {
		return nil, err
	}

	var retyped []string
	for i := range links {
		link := &links[i]
		child, ok := children[link.TargetID]
		if !ok {
			continue
		}

		linkType, childType, err := p.resolve(ctx, rules, link.TypeOrDefault(), child.TypeOrDefault())
		if err != nil {
			var unresolvable *domain.UnresolvableTypeError
			if errors.As(err, &unresolvable) {
				unresolvable.ParentType = parent.TypeOrDefault()
			}
			return nil, err
		}

		if linkType != link.TypeOrDefault() {
			next := link.NewVersion()
			next.LinkType = linkType
			if err := supersedeLink(ctx, p.linkRepo, link, next); err != nil {
				return nil, err
			}
			p.logger.Debug("link retyped by typology",
				"link_id", link.BaseID,
				"from", link.TypeOrDefault(),
				"to", linkType,
			)
		}

		if childType != child.TypeOrDefault() {
			next := child.NewVersion()
			next.SemanticType = childType
			if err := supersedeIdea(ctx, p.ideaRepo, child, next); err != nil {
				return nil, err
			}
			children[child.BaseID] = next
			retyped = append(retyped, child.BaseID)
			p.logger.Debug("idea retyped by typology",
				"idea_id", child.BaseID,
				"from", child.TypeOrDefault(),
				"to", childType,
			)
		}
	}
	return retyped, nil
}

// rulesForParent finds the rule set for a parent type: its own entry, the
// entry of its nearest supertype, or the entry of the default idea type.
// A parent covered by none of those is not constrained by the typology.
func (p *typeRulePropagator) rulesForParent(ctx context.Context, typology models.Typology, parentType string) (map[string][]string, bool, error) {
	if rules, ok := typology.RulesFor(parentType); ok {
		return rules, true, nil
	}
	supers, err := p.ontology.Supertypes(ctx, parentType)
	if err != nil {
		return nil, false, err
	}
	for _, st := range supers {
		if rules, ok := typology.RulesFor(st); ok {
			return rules, true, nil
		}
	}
	rules, ok := typology.RulesFor(models.DefaultIdeaType)
	return rules, ok, nil
}

func (p *typeRulePropagator) supertypes(ctx context.Context, term, universal string) ([]string, error) {
	if term == universal {
		return nil, nil
	}
	return p.ontology.Supertypes(ctx, term)
}

// resolve picks the (link type, child type) pair the typology accepts for
// one link. The link type is first resolved to one that has a rule entry;
// when the child type is not listed under it, substitutes are tried in a
// fixed priority order.
func (p *typeRulePropagator) resolve(ctx context.Context, rules map[string][]string, linkType, childType string) (string, string, error) {
	linkSupers, err := p.supertypes(ctx, linkType, models.DefaultLinkType)
	if err != nil {
		return "", "", err
	}

	resolved := models.DefaultLinkType
	if _, ok := rules[linkType]; ok {
		resolved = linkType
	} else {
		for _, st := range linkSupers {
			if _, ok := rules[st]; ok {
				resolved = st
				break
			}
		}
	}

	if models.Allows(rules, resolved, childType) {
		return resolved, childType, nil
	}

	resolvedSupers, err := p.supertypes(ctx, resolved, models.DefaultLinkType)
	if err != nil {
		return "", "", err
	}
	childSupers, err := p.supertypes(ctx, childType, models.DefaultIdeaType)
	if err != nil {
		return "", "", err
	}

	// (0) a supertype of the link type accepting the exact child type
	for _, st := range resolvedSupers {
		if models.Allows(rules, st, childType) {
			return st, childType, nil
		}
	}
	// (1) any link type accepting the exact child type
	for _, lt := range models.SortedLinkTypes(rules) {
		if models.Allows(rules, lt, childType) {
			return lt, childType, nil
		}
	}
	// (2) the link type accepting a child supertype
	for _, cs := range childSupers {
		if models.Allows(rules, resolved, cs) {
			return resolved, cs, nil
		}
	}
	// (3) a supertype of the link type accepting a child supertype
	for _, st := range resolvedSupers {
		for _, cs := range childSupers {
			if models.Allows(rules, st, cs) {
				return st, cs, nil
			}
		}
	}
	// (4) the link type with the default child type
	if models.Allows(rules, resolved, models.DefaultIdeaType) {
		return resolved, models.DefaultIdeaType, nil
	}
	// (5) both defaults
	if models.Allows(rules, models.DefaultLinkType, models.DefaultIdeaType) {
		return models.DefaultLinkType, models.DefaultIdeaType, nil
	}

	return "", "", &domain.UnresolvableTypeError{LinkType: linkType, ChildType: childType}
}
