package ideagraph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"agora/internal/domain"
	models "agora/internal/domain/models/ideagraph"
	graphRepo "agora/internal/domain/repositories/ideagraph"
	graphSvc "agora/internal/domain/services/ideagraph"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type linkService struct {
	repos     graphRepo.Repositories
	validator *StructureValidator
	typeRules graphSvc.TypeRulePropagator
	notifier  graphSvc.ChangeNotifier
	logger    *slog.Logger
}

// NewLinkService creates a new link service
func NewLinkService(
	repos graphRepo.Repositories,
	validator *StructureValidator,
	typeRules graphSvc.TypeRulePropagator,
	notifier graphSvc.ChangeNotifier,
	logger *slog.Logger,
) graphSvc.LinkService {
	return &linkService{
		repos:     repos,
		validator: validator,
		typeRules: typeRules,
		notifier:  notifier,
		logger:    logger,
	}
}

// createLink inserts a live link between endpoints that have already been
// validated. A nil order appends the link after the last live sibling.
func createLink(
	ctx context.Context,
	repos graphRepo.Repositories,
	validator *StructureValidator,
	source, target *models.Idea,
	linkType string,
	order *float64,
) error {
	link := &models.Link{
		DiscussionID: source.DiscussionID,
		SourceID:     source.BaseID,
		TargetID:     target.BaseID,
		LinkType:     linkType,
		CreatedAt:    time.Now().UTC(),
	}
	if link.LinkType == "" {
		link.LinkType = models.DefaultLinkType
	}
	if order != nil {
		link.Order = *order
	} else {
		next, err := validator.NextOrder(ctx, source.BaseID)
		if err != nil {
			return err
		}
		link.Order = next
	}

	if err := repos.Links.Create(ctx, link); err != nil {
		return err
	}
	recordChange(ctx, graphSvc.ChangeEvent{
		Kind:         graphSvc.ChangeCreated,
		Entity:       graphSvc.EntityLink,
		ID:           link.ID,
		BaseID:       link.BaseID,
		DiscussionID: link.DiscussionID,
		SourceID:     link.SourceID,
	})
	return nil
}

// CreateLink adds a second parent to an idea, or links two existing ideas.
func (s *linkService) CreateLink(ctx context.Context, userID string, req *graphSvc.CreateLinkRequest) (*models.Link, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.SourceID, validation.Required),
		validation.Field(&req.TargetID, validation.Required),
		validation.Field(&req.LinkType, typeNameRule()),
	)
	if err != nil {
		return nil, wrapValidation(err)
	}

	var created *models.Link
	err = mutate(ctx, s.repos.Tx, s.notifier, userID, func(ctx context.Context) error {
		source, target, err := s.validator.LinkEndpoints(ctx, req.SourceID, req.TargetID)
		if err != nil {
			return err
		}

		existing, err := s.validator.LiveLink(ctx, req.SourceID, req.TargetID)
		if err == nil {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("link %s -> %s already exists", req.SourceID, req.TargetID),
				ResourceType: "link",
				ResourceID:   existing.BaseID,
			}
		}

		if err := createLink(ctx, s.repos, s.validator, source, target, req.LinkType, req.Order); err != nil {
			return err
		}
		if err := s.typeRules.ApplyTypeRules(ctx, source.BaseID); err != nil {
			return err
		}
		// Type rules may have superseded the new link
		created, err = s.validator.LiveLink(ctx, req.SourceID, req.TargetID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("link created",
		"link_id", created.BaseID,
		"source", created.SourceID,
		"target", created.TargetID,
		"type", created.LinkType,
	)
	return created, nil
}

// ReorderLink records a new version of a link with a different sibling order
func (s *linkService) ReorderLink(ctx context.Context, userID, linkID string, order float64) (*models.Link, error) {
	var reordered *models.Link
	err := mutate(ctx, s.repos.Tx, s.notifier, userID, func(ctx context.Context) error {
		current, err := s.repos.Links.GetLive(ctx, linkID)
		if err != nil {
			return err
		}
		if current.Order == order {
			reordered = current
			return nil
		}
		next := current.NewVersion()
		next.Order = order
		if err := supersedeLink(ctx, s.repos.Links, current, next); err != nil {
			return err
		}
		reordered = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reordered, nil
}

// RetypeLink changes a link type and re-applies the rules of its source.
// The typology may settle on a different type than the one requested.
func (s *linkService) RetypeLink(ctx context.Context, userID, linkID, linkType string) (*models.Link, error) {
	if err := validation.Validate(linkType, validation.Required, typeNameRule()); err != nil {
		return nil, wrapValidation(err)
	}

	var retyped *models.Link
	err := mutate(ctx, s.repos.Tx, s.notifier, userID, func(ctx context.Context) error {
		current, err := s.repos.Links.GetLive(ctx, linkID)
		if err != nil {
			return err
		}
		if current.TypeOrDefault() != linkType {
			next := current.NewVersion()
			next.LinkType = linkType
			if err := supersedeLink(ctx, s.repos.Links, current, next); err != nil {
				return err
			}
		}
		if err := s.typeRules.ApplyTypeRules(ctx, current.SourceID); err != nil {
			return err
		}
		retyped, err = s.repos.Links.GetLive(ctx, linkID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return retyped, nil
}

// DeleteLink tombstones a link. The target stays live and becomes an orphan
// when this was its last parent.
func (s *linkService) DeleteLink(ctx context.Context, userID, linkID string) error {
	return mutate(ctx, s.repos.Tx, s.notifier, userID, func(ctx context.Context) error {
		current, err := s.repos.Links.GetLive(ctx, linkID)
		if err != nil {
			return err
		}
		if err := s.repos.Links.Tombstone(ctx, current.ID, time.Now().UTC()); err != nil {
			return err
		}
		recordChange(ctx, graphSvc.ChangeEvent{
			Kind:         graphSvc.ChangeDeleted,
			Entity:       graphSvc.EntityLink,
			ID:           current.ID,
			BaseID:       current.BaseID,
			DiscussionID: current.DiscussionID,
			SourceID:     current.SourceID,
		})
		return nil
	})
}
