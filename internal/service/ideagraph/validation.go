package ideagraph

import (
	"context"
	"errors"
	"fmt"

	"agora/internal/config"
	"agora/internal/domain"
	models "agora/internal/domain/models/ideagraph"
	graphRepo "agora/internal/domain/repositories/ideagraph"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// StructureValidator checks graph shape rules before any row is written.
type StructureValidator struct {
	ideaRepo graphRepo.IdeaRepository
	linkRepo graphRepo.LinkRepository
}

// NewStructureValidator creates a new structure validator
func NewStructureValidator(repos graphRepo.Repositories) *StructureValidator {
	return &StructureValidator{ideaRepo: repos.Ideas, linkRepo: repos.Links}
}

// LinkEndpoints loads both endpoints of a prospective link and rejects
// dead endpoints, cross-discussion links, self loops, links into the root
// and links that would close a cycle.
func (v *StructureValidator) LinkEndpoints(ctx context.Context, sourceID, targetID string) (*models.Idea, *models.Idea, error) {
	violation := func(reason string) error {
		return &domain.StructuralViolationError{SourceID: sourceID, TargetID: targetID, Reason: reason}
	}

	if sourceID == targetID {
		return nil, nil, violation("self loop")
	}

	ideas, err := v.ideaRepo.GetLiveMany(ctx, []string{sourceID, targetID})
	if err != nil {
		return nil, nil, err
	}
	source, ok := ideas[sourceID]
	if !ok {
		return nil, nil, violation("source is not a live idea")
	}
	target, ok := ideas[targetID]
	if !ok {
		return nil, nil, violation("target is not a live idea")
	}
	if source.DiscussionID != target.DiscussionID {
		return nil, nil, violation("endpoints belong to different discussions")
	}
	if target.IsRoot() {
		return nil, nil, violation("the root idea cannot have a parent")
	}

	cycle, err := v.Reaches(ctx, targetID, sourceID)
	if err != nil {
		return nil, nil, err
	}
	if cycle {
		return nil, nil, violation("link would create a cycle")
	}
	return source, target, nil
}

// Reaches reports whether to is reachable from from over live links.
func (v *StructureValidator) Reaches(ctx context.Context, from, to string) (bool, error) {
	if from == to {
		return true, nil
	}
	visited := map[string]bool{from: true}
	frontier := []string{from}
	for len(frontier) > 0 {
		links, err := v.linkRepo.ListLiveFrom(ctx, frontier)
		if err != nil {
			return false, err
		}
		frontier = nil
		for _, l := range links {
			if l.TargetID == to {
				return true, nil
			}
			if !visited[l.TargetID] {
				visited[l.TargetID] = true
				frontier = append(frontier, l.TargetID)
			}
		}
	}
	return false, nil
}

// LiveLink returns the live link from parentID to childID
func (v *StructureValidator) LiveLink(ctx context.Context, parentID, childID string) (*models.Link, error) {
	links, err := v.linkRepo.ListLiveFrom(ctx, []string{parentID})
	if err != nil {
		return nil, err
	}
	for i := range links {
		if links[i].TargetID == childID {
			return &links[i], nil
		}
	}
	return nil, fmt.Errorf("link %s -> %s: %w", parentID, childID, domain.ErrNotFound)
}

// NextOrder returns an order placing a new link after every live sibling
func (v *StructureValidator) NextOrder(ctx context.Context, parentID string) (float64, error) {
	links, err := v.linkRepo.ListLiveFrom(ctx, []string{parentID})
	if err != nil {
		return 0, err
	}
	next := 0.0
	for _, l := range links {
		if l.Order >= next {
			next = l.Order + 1
		}
	}
	return next, nil
}

// LiveIdea returns the live idea or a not found error
func (v *StructureValidator) LiveIdea(ctx context.Context, ideaID string) (*models.Idea, error) {
	idea, err := v.ideaRepo.GetLive(ctx, ideaID)
	if err != nil {
		return nil, fmt.Errorf("invalid idea: %w", err)
	}
	return idea, nil
}

// Request validation rules shared by the services

func bundleRules(maxLen int, required bool) []validation.Rule {
	rules := []validation.Rule{validation.Each(validation.Length(0, maxLen))}
	if required {
		rules = append([]validation.Rule{validation.Required}, rules...)
	}
	return rules
}

func typeNameRule() validation.Rule {
	return validation.Length(0, config.MaxTypeNameLength)
}

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}
