package ideagraph

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"agora/internal/config"
	models "agora/internal/domain/models/ideagraph"
	graphRepo "agora/internal/domain/repositories/ideagraph"
	graphSvc "agora/internal/domain/services/ideagraph"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// RootTitleLocale is the locale of the title bundle created for a root idea
const RootTitleLocale = "en"

type discussionService struct {
	repos    graphRepo.Repositories
	notifier graphSvc.ChangeNotifier
	logger   *slog.Logger
}

// NewDiscussionService creates a new discussion service
func NewDiscussionService(repos graphRepo.Repositories, notifier graphSvc.ChangeNotifier, logger *slog.Logger) graphSvc.DiscussionService {
	return &discussionService{repos: repos, notifier: notifier, logger: logger}
}

// CreateDiscussion creates a discussion and its root idea in one transaction
func (s *discussionService) CreateDiscussion(ctx context.Context, userID string, req *graphSvc.CreateDiscussionRequest) (*models.Discussion, *models.Idea, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, nil, wrapValidation(err)
	}

	now := time.Now().UTC()
	discussion := &models.Discussion{
		Slug:      req.Slug,
		Title:     req.Title,
		OwnerID:   userID,
		Open:      req.Open,
		CreatedAt: now,
	}
	root := &models.Idea{
		Kind:         models.IdeaKindRoot,
		CreatorID:    userID,
		SemanticType: models.DefaultIdeaType,
		PubState:     models.PubStatePublished,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := mutate(ctx, s.repos.Tx, s.notifier, userID, func(ctx context.Context) error {
		if err := s.repos.Discussions.Create(ctx, discussion); err != nil {
			return err
		}

		titleID, err := s.repos.TextBundles.Create(ctx, map[string]string{RootTitleLocale: req.Title})
		if err != nil {
			return err
		}
		root.DiscussionID = discussion.ID
		root.Title = &titleID
		if err := s.repos.Ideas.Create(ctx, root); err != nil {
			return err
		}

		recordChange(ctx, graphSvc.ChangeEvent{
			Kind:         graphSvc.ChangeCreated,
			Entity:       graphSvc.EntityDiscussion,
			ID:           discussion.ID,
			DiscussionID: discussion.ID,
		})
		recordChange(ctx, graphSvc.ChangeEvent{
			Kind:         graphSvc.ChangeCreated,
			Entity:       graphSvc.EntityIdea,
			ID:           root.ID,
			BaseID:       root.BaseID,
			DiscussionID: discussion.ID,
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("discussion created",
		"discussion_id", discussion.ID,
		"slug", discussion.Slug,
		"root_id", root.BaseID,
		"owner_id", userID,
	)
	return discussion, root, nil
}

// GetDiscussion retrieves a discussion
func (s *discussionService) GetDiscussion(ctx context.Context, id string) (*models.Discussion, error) {
	return s.repos.Discussions.GetByID(ctx, id)
}

func (s *discussionService) validateCreateRequest(req *graphSvc.CreateDiscussionRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Slug,
			validation.Required,
			validation.Length(1, config.MaxSlugLength),
			validation.Match(slugPattern).Error("slug must be lower-case words separated by dashes"),
		),
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxTitleLength),
		),
	)
}
