package ideagraph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"agora/internal/config"
	"agora/internal/domain"
	models "agora/internal/domain/models/ideagraph"
	graphRepo "agora/internal/domain/repositories/ideagraph"
	graphSvc "agora/internal/domain/services/ideagraph"
	"agora/internal/richtext"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type ideaService struct {
	repos     graphRepo.Repositories
	validator *StructureValidator
	typeRules graphSvc.TypeRulePropagator
	sanitizer *richtext.Sanitizer
	notifier  graphSvc.ChangeNotifier
	logger    *slog.Logger
}

// NewIdeaService creates a new idea service
func NewIdeaService(
	repos graphRepo.Repositories,
	validator *StructureValidator,
	typeRules graphSvc.TypeRulePropagator,
	sanitizer *richtext.Sanitizer,
	notifier graphSvc.ChangeNotifier,
	logger *slog.Logger,
) graphSvc.IdeaService {
	return &ideaService{
		repos:     repos,
		validator: validator,
		typeRules: typeRules,
		sanitizer: sanitizer,
		notifier:  notifier,
		logger:    logger,
	}
}

// CreateIdea creates a live idea and the link attaching it to its parent.
// Type rules of the parent are applied in the same transaction, so the
// returned idea carries the type the typology settled on.
func (s *ideaService) CreateIdea(ctx context.Context, userID string, req *graphSvc.CreateIdeaRequest) (*models.Idea, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, wrapValidation(err)
	}

	var created *models.Idea
	err := mutate(ctx, s.repos.Tx, s.notifier, userID, func(ctx context.Context) error {
		if _, err := s.repos.Discussions.GetByID(ctx, req.DiscussionID); err != nil {
			return fmt.Errorf("invalid discussion: %w", err)
		}

		var parent *models.Idea
		var err error
		if req.ParentID == nil || *req.ParentID == "" {
			parent, err = requireRoot(ctx, s.repos.Discussions, s.repos.Ideas, req.DiscussionID)
		} else {
			parent, err = s.validator.LiveIdea(ctx, *req.ParentID)
		}
		if err != nil {
			return err
		}
		if parent.DiscussionID != req.DiscussionID {
			return &domain.StructuralViolationError{
				SourceID: parent.BaseID,
				Reason:   "parent belongs to another discussion",
			}
		}

		now := time.Now().UTC()
		idea := &models.Idea{
			DiscussionID: req.DiscussionID,
			Kind:         models.IdeaKindIdea,
			Hidden:       req.Hidden,
			CreatorID:    userID,
			SemanticType: req.SemanticType,
			PubState:     models.PubStateDraft,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if idea.SemanticType == "" {
			idea.SemanticType = models.DefaultIdeaType
		}

		titleID, err := s.repos.TextBundles.Create(ctx, req.Title)
		if err != nil {
			return err
		}
		idea.Title = &titleID
		if len(req.Description) > 0 {
			descID, err := s.repos.TextBundles.Create(ctx, s.sanitizer.SanitizeBundle(req.Description))
			if err != nil {
				return err
			}
			idea.Description = &descID
		}
		if err := s.repos.Ideas.Create(ctx, idea); err != nil {
			return err
		}
		recordChange(ctx, graphSvc.ChangeEvent{
			Kind:         graphSvc.ChangeCreated,
			Entity:       graphSvc.EntityIdea,
			ID:           idea.ID,
			BaseID:       idea.BaseID,
			DiscussionID: idea.DiscussionID,
		})

		if err := createLink(ctx, s.repos, s.validator, parent, idea, req.LinkType, req.Order); err != nil {
			return err
		}
		if err := s.typeRules.ApplyTypeRules(ctx, parent.BaseID); err != nil {
			return err
		}

		created, err = s.repos.Ideas.GetLive(ctx, idea.BaseID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("idea created",
		"idea_id", created.BaseID,
		"discussion_id", created.DiscussionID,
		"type", created.SemanticType,
	)
	return created, nil
}

// GetIdea retrieves the live version of an idea
func (s *ideaService) GetIdea(ctx context.Context, ideaID string) (*models.Idea, error) {
	return s.repos.Ideas.GetLive(ctx, ideaID)
}

// UpdateIdea records a new version of an idea. Text fields get new bundles.
func (s *ideaService) UpdateIdea(ctx context.Context, userID, ideaID string, req *graphSvc.UpdateIdeaRequest) (*models.Idea, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, wrapValidation(err)
	}

	var updated *models.Idea
	err := mutate(ctx, s.repos.Tx, s.notifier, userID, func(ctx context.Context) error {
		current, err := s.validator.LiveIdea(ctx, ideaID)
		if err != nil {
			return err
		}

		next := current.NewVersion()
		if req.Title != nil {
			titleID, err := s.repos.TextBundles.Create(ctx, req.Title)
			if err != nil {
				return err
			}
			next.Title = &titleID
		}
		if req.Description != nil {
			descID, err := s.repos.TextBundles.Create(ctx, s.sanitizer.SanitizeBundle(req.Description))
			if err != nil {
				return err
			}
			next.Description = &descID
		}
		if req.Hidden != nil {
			next.Hidden = *req.Hidden
		}
		if req.PubState != nil {
			next.PubState = *req.PubState
		}

		if err := supersedeIdea(ctx, s.repos.Ideas, current, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RetypeIdea changes the semantic type of an idea and re-applies the type
// rules to the links leaving it.
func (s *ideaService) RetypeIdea(ctx context.Context, userID, ideaID, semanticType string) (*models.Idea, error) {
	if err := validation.Validate(semanticType, validation.Required, typeNameRule()); err != nil {
		return nil, wrapValidation(err)
	}

	var retyped *models.Idea
	err := mutate(ctx, s.repos.Tx, s.notifier, userID, func(ctx context.Context) error {
		current, err := s.validator.LiveIdea(ctx, ideaID)
		if err != nil {
			return err
		}
		if current.TypeOrDefault() != semanticType {
			next := current.NewVersion()
			next.SemanticType = semanticType
			if err := supersedeIdea(ctx, s.repos.Ideas, current, next); err != nil {
				return err
			}
		}
		if err := s.typeRules.ApplyTypeRules(ctx, ideaID); err != nil {
			return err
		}
		retyped, err = s.repos.Ideas.GetLive(ctx, ideaID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return retyped, nil
}

// MoveIdea re-parents an idea: the link from FromParentID gets a new version
// whose source is NewParentID.
func (s *ideaService) MoveIdea(ctx context.Context, userID, ideaID string, req *graphSvc.MoveIdeaRequest) (*models.Link, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.FromParentID, validation.Required),
		validation.Field(&req.NewParentID, validation.Required),
	)
	if err != nil {
		return nil, wrapValidation(err)
	}

	var moved *models.Link
	err = mutate(ctx, s.repos.Tx, s.notifier, userID, func(ctx context.Context) error {
		current, err := s.validator.LiveLink(ctx, req.FromParentID, ideaID)
		if err != nil {
			return err
		}
		if _, _, err := s.validator.LinkEndpoints(ctx, req.NewParentID, ideaID); err != nil {
			return err
		}

		next := current.NewVersion()
		next.SourceID = req.NewParentID
		if req.Order != nil {
			next.Order = *req.Order
		} else if next.Order, err = s.validator.NextOrder(ctx, req.NewParentID); err != nil {
			return err
		}
		if err := supersedeLink(ctx, s.repos.Links, current, next); err != nil {
			return err
		}
		if err := s.typeRules.ApplyTypeRules(ctx, req.NewParentID); err != nil {
			return err
		}
		moved, err = s.repos.Links.GetLive(ctx, next.BaseID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("idea moved",
		"idea_id", ideaID,
		"from", req.FromParentID,
		"to", req.NewParentID,
	)
	return moved, nil
}

// DeleteIdea tombstones an idea and every live link touching it. Its former
// children that have no other parent become orphans.
func (s *ideaService) DeleteIdea(ctx context.Context, userID, ideaID string) error {
	return mutate(ctx, s.repos.Tx, s.notifier, userID, func(ctx context.Context) error {
		idea, err := s.validator.LiveIdea(ctx, ideaID)
		if err != nil {
			return err
		}
		if idea.IsRoot() {
			return &domain.StructuralViolationError{SourceID: ideaID, Reason: "the root idea cannot be deleted"}
		}

		links, err := s.repos.Links.ListLive(ctx, idea.DiscussionID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, l := range links {
			if l.SourceID != ideaID && l.TargetID != ideaID {
				continue
			}
			if err := s.repos.Links.Tombstone(ctx, l.ID, now); err != nil {
				return err
			}
			recordChange(ctx, graphSvc.ChangeEvent{
				Kind:         graphSvc.ChangeDeleted,
				Entity:       graphSvc.EntityLink,
				ID:           l.ID,
				BaseID:       l.BaseID,
				DiscussionID: l.DiscussionID,
				SourceID:     l.SourceID,
			})
		}

		if err := s.repos.Ideas.Tombstone(ctx, idea.ID, now); err != nil {
			return err
		}
		recordChange(ctx, graphSvc.ChangeEvent{
			Kind:         graphSvc.ChangeDeleted,
			Entity:       graphSvc.EntityIdea,
			ID:           idea.ID,
			BaseID:       idea.BaseID,
			DiscussionID: idea.DiscussionID,
		})
		return nil
	})
}

func (s *ideaService) validateCreateRequest(req *graphSvc.CreateIdeaRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.DiscussionID, validation.Required),
		validation.Field(&req.Title, bundleRules(config.MaxTitleLength, true)...),
		validation.Field(&req.Description, bundleRules(config.MaxDescriptionLength, false)...),
		validation.Field(&req.SemanticType, typeNameRule()),
		validation.Field(&req.LinkType, typeNameRule()),
	)
}

func (s *ideaService) validateUpdateRequest(req *graphSvc.UpdateIdeaRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title, bundleRules(config.MaxTitleLength, false)...),
		validation.Field(&req.Description, bundleRules(config.MaxDescriptionLength, false)...),
		validation.Field(&req.PubState, validation.NilOrNotEmpty,
			validation.In(models.PubStateDraft, models.PubStatePublished)),
	)
}
