package ideagraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"agora/internal/config"
	"agora/internal/domain"
	models "agora/internal/domain/models/ideagraph"
	graphRepo "agora/internal/domain/repositories/ideagraph"
	graphSvc "agora/internal/domain/services/ideagraph"
	"agora/internal/richtext"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type synthesisService struct {
	repos     graphRepo.Repositories
	sanitizer *richtext.Sanitizer
	notifier  graphSvc.ChangeNotifier
	logger    *slog.Logger
}

// NewSynthesisService creates a new synthesis service
func NewSynthesisService(
	repos graphRepo.Repositories,
	sanitizer *richtext.Sanitizer,
	notifier graphSvc.ChangeNotifier,
	logger *slog.Logger,
) graphSvc.SynthesisService {
	return &synthesisService{
		repos:     repos,
		sanitizer: sanitizer,
		notifier:  notifier,
		logger:    logger,
	}
}

// CreateDraft creates an empty draft synthesis for a discussion
func (s *synthesisService) CreateDraft(ctx context.Context, userID string, req *graphSvc.CreateSynthesisRequest) (*models.Synthesis, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.DiscussionID, validation.Required),
		validation.Field(&req.Subject, bundleRules(config.MaxTitleLength, true)...),
		validation.Field(&req.Introduction, bundleRules(config.MaxDescriptionLength, false)...),
		validation.Field(&req.Conclusion, bundleRules(config.MaxDescriptionLength, false)...),
	)
	if err != nil {
		return nil, wrapValidation(err)
	}

	draft := &models.Synthesis{
		DiscussionID: req.DiscussionID,
		State:        models.SynthesisDraft,
		CreatorID:    userID,
		CreatedAt:    time.Now().UTC(),
	}

	err = mutate(ctx, s.repos.Tx, s.notifier, userID, func(ctx context.Context) error {
		if _, err := s.repos.Discussions.GetByID(ctx, req.DiscussionID); err != nil {
			return fmt.Errorf("invalid discussion: %w", err)
		}

		bundles := []struct {
			entries map[string]string
			handle  **string
		}{
			{req.Subject, &draft.Subject},
			{req.Introduction, &draft.Introduction},
			{req.Conclusion, &draft.Conclusion},
		}
		for _, b := range bundles {
			if len(b.entries) == 0 {
				continue
			}
			id, err := s.repos.TextBundles.Create(ctx, s.sanitizer.SanitizeBundle(b.entries))
			if err != nil {
				return err
			}
			*b.handle = &id
		}

		if err := s.repos.Syntheses.Create(ctx, draft); err != nil {
			return err
		}
		recordChange(ctx, graphSvc.ChangeEvent{
			Kind:         graphSvc.ChangeCreated,
			Entity:       graphSvc.EntitySynthesis,
			ID:           draft.ID,
			DiscussionID: draft.DiscussionID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// GetSynthesis retrieves a synthesis
func (s *synthesisService) GetSynthesis(ctx context.Context, synthesisID string) (*models.Synthesis, error) {
	return s.repos.Syntheses.GetByID(ctx, synthesisID)
}

// ListSyntheses lists the syntheses of a discussion, newest first
func (s *synthesisService) ListSyntheses(ctx context.Context, discussionID string) ([]models.Synthesis, error) {
	return s.repos.Syntheses.ListByDiscussion(ctx, discussionID)
}

// requireDraft loads a synthesis that can still be edited
func (s *synthesisService) requireDraft(ctx context.Context, synthesisID string) (*models.Synthesis, error) {
	synthesis, err := s.repos.Syntheses.GetByID(ctx, synthesisID)
	if err != nil {
		return nil, err
	}
	if synthesis.IsPublished() {
		return nil, fmt.Errorf("%w: synthesis %s is published and cannot be changed", domain.ErrValidation, synthesisID)
	}
	return synthesis, nil
}

// AddIdea selects a live idea of the draft's discussion
func (s *synthesisService) AddIdea(ctx context.Context, userID, synthesisID, ideaID string) error {
	return mutate(ctx, s.repos.Tx, s.notifier, userID, func(ctx context.Context) error {
		draft, err := s.requireDraft(ctx, synthesisID)
		if err != nil {
			return err
		}
		idea, err := s.repos.Ideas.GetLive(ctx, ideaID)
		if err != nil {
			return fmt.Errorf("invalid idea: %w", err)
		}
		if idea.DiscussionID != draft.DiscussionID {
			return fmt.Errorf("%w: idea %s belongs to another discussion", domain.ErrValidation, ideaID)
		}
		if idea.IsRoot() {
			return fmt.Errorf("%w: the root idea cannot be selected", domain.ErrValidation)
		}
		if err := s.repos.Syntheses.AddIdea(ctx, draft.ID, idea.BaseID); err != nil {
			return err
		}
		recordChange(ctx, graphSvc.ChangeEvent{
			Kind:         graphSvc.ChangeUpdated,
			Entity:       graphSvc.EntitySynthesis,
			ID:           draft.ID,
			DiscussionID: draft.DiscussionID,
		})
		return nil
	})
}

// RemoveIdea unselects a draft member
func (s *synthesisService) RemoveIdea(ctx context.Context, userID, synthesisID, ideaID string) error {
	return mutate(ctx, s.repos.Tx, s.notifier, userID, func(ctx context.Context) error {
		draft, err := s.requireDraft(ctx, synthesisID)
		if err != nil {
			return err
		}
		if err := s.repos.Syntheses.RemoveIdea(ctx, draft.ID, ideaID); err != nil {
			return err
		}
		recordChange(ctx, graphSvc.ChangeEvent{
			Kind:         graphSvc.ChangeUpdated,
			Entity:       graphSvc.EntitySynthesis,
			ID:           draft.ID,
			DiscussionID: draft.DiscussionID,
		})
		return nil
	})
}

// snapshot holds the state of one publish while copies are being written.
type snapshot struct {
	repos  graphRepo.Repositories
	at     time.Time
	ideas  map[string]*models.Idea // live ideas by logical id
	copies map[string]*models.Idea // archive copies by original logical id
}

// copyOf returns the archive copy of a live idea, creating it on first use.
func (sn *snapshot) copyOf(ctx context.Context, id string) (*models.Idea, error) {
	if c, ok := sn.copies[id]; ok {
		return c, nil
	}
	original := sn.ideas[id]
	frozen := original.ArchiveCopy(sn.at)

	var err error
	if frozen.Title, err = sn.cloneBundle(ctx, original.Title); err != nil {
		return nil, err
	}
	if frozen.Description, err = sn.cloneBundle(ctx, original.Description); err != nil {
		return nil, err
	}
	if err := sn.repos.Ideas.Create(ctx, frozen); err != nil {
		return nil, err
	}
	sn.copies[id] = frozen
	return frozen, nil
}

func (sn *snapshot) cloneBundle(ctx context.Context, handle *string) (*string, error) {
	if handle == nil {
		return nil, nil
	}
	id, err := sn.repos.TextBundles.Clone(ctx, *handle)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// Publish freezes a draft into a new published synthesis in one transaction.
//
// Every live link of the discussion is archived with the snapshot. Link
// endpoints that are members, or that connect two members through parent
// links, point at archive copies of the ideas; the root and any other idea
// stay referenced by logical id.
func (s *synthesisService) Publish(ctx context.Context, userID, draftID string) (*models.Synthesis, error) {
	var frozen *models.Synthesis
	var stats struct{ members, connectors, links int }

	err := mutate(ctx, s.repos.Tx, s.notifier, userID, func(ctx context.Context) error {
		draft, err := s.requireDraft(ctx, draftID)
		if err != nil {
			return err
		}
		root, err := requireRoot(ctx, s.repos.Discussions, s.repos.Ideas, draft.DiscussionID)
		if err != nil {
			return err
		}

		// Truncated so the archive time round-trips through every store
		now := time.Now().UTC().Truncate(time.Microsecond)
		sn := &snapshot{
			repos:  s.repos,
			at:     now,
			ideas:  map[string]*models.Idea{},
			copies: map[string]*models.Idea{},
		}

		frozen = &models.Synthesis{
			DiscussionID: draft.DiscussionID,
			State:        models.SynthesisPublished,
			SourceID:     &draft.ID,
			CreatorID:    userID,
			CreatedAt:    now,
			PublishedAt:  &now,
		}
		if frozen.Subject, err = sn.cloneBundle(ctx, draft.Subject); err != nil {
			return err
		}
		if frozen.Introduction, err = sn.cloneBundle(ctx, draft.Introduction); err != nil {
			return err
		}
		if frozen.Conclusion, err = sn.cloneBundle(ctx, draft.Conclusion); err != nil {
			return err
		}
		if err := s.repos.Syntheses.Create(ctx, frozen); err != nil {
			return err
		}

		ideas, err := s.repos.Ideas.ListLive(ctx, draft.DiscussionID)
		if err != nil {
			return err
		}
		for i := range ideas {
			sn.ideas[ideas[i].BaseID] = &ideas[i]
		}
		links, err := s.repos.Links.ListLive(ctx, draft.DiscussionID)
		if err != nil {
			return err
		}
		for _, l := range links {
			for _, endpoint := range []string{l.SourceID, l.TargetID} {
				if _, ok := sn.ideas[endpoint]; !ok {
					return &domain.SnapshotInconsistencyError{LinkID: l.BaseID, IdeaID: endpoint}
				}
			}
		}
		sort.SliceStable(links, func(i, j int) bool { return models.LessLink(&links[i], &links[j]) })

		memberIDs, err := s.repos.Syntheses.ListIdeaIDs(ctx, draft.ID)
		if err != nil {
			return err
		}
		var members []string
		for _, id := range memberIDs {
			if _, ok := sn.ideas[id]; ok {
				members = append(members, id)
			}
		}

		relevant := relevantSet(links, root.BaseID, members)
		stats.members = len(members)
		stats.connectors = len(relevant) - len(members)

		for i := range links {
			link := &links[i]
			var overrides models.CopyOverrides
			if _, ok := relevant[link.SourceID]; ok {
				if overrides.Source, err = sn.copyOf(ctx, link.SourceID); err != nil {
					return err
				}
			}
			if _, ok := relevant[link.TargetID]; ok {
				if overrides.Target, err = sn.copyOf(ctx, link.TargetID); err != nil {
					return err
				}
			}

			linkCopy, err := link.ArchiveCopy(now, overrides)
			if err != nil {
				return err
			}
			if err := s.repos.Links.Create(ctx, linkCopy); err != nil {
				return err
			}
			if err := s.repos.Syntheses.AddLink(ctx, frozen.ID, linkCopy.ID); err != nil {
				return err
			}
			stats.links++
		}

		// Members without any link still get their copy
		for _, id := range members {
			c, err := sn.copyOf(ctx, id)
			if err != nil {
				return err
			}
			if err := s.repos.Syntheses.AddIdea(ctx, frozen.ID, c.BaseID); err != nil {
				return err
			}
		}

		recordChange(ctx, graphSvc.ChangeEvent{
			Kind:         graphSvc.ChangePublished,
			Entity:       graphSvc.EntitySynthesis,
			ID:           frozen.ID,
			DiscussionID: frozen.DiscussionID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("synthesis published",
		"synthesis_id", frozen.ID,
		"draft_id", draftID,
		"members", stats.members,
		"connectors", stats.connectors,
		"links", stats.links,
	)
	return frozen, nil
}

// relevantSet returns the members plus every idea lying on a parent path
// between two members. The root is never part of it.
//
// It works on the links publish already loaded, so the connectors and the
// archived links come from the same view of the graph. An idea on such a
// path is both an ancestor and a descendant of some member.
func relevantSet(links []models.Link, rootID string, members []string) map[string]struct{} {
	relevant := make(map[string]struct{}, len(members))
	for _, id := range members {
		relevant[id] = struct{}{}
	}
	if len(members) < 2 {
		return relevant
	}

	above := linkClosure(links, members, true)
	below := linkClosure(links, members, false)
	for id := range above {
		if id == rootID {
			continue
		}
		if _, ok := below[id]; ok {
			relevant[id] = struct{}{}
		}
	}
	return relevant
}

// FrozenGraph returns the archived content of a published synthesis
func (s *synthesisService) FrozenGraph(ctx context.Context, synthesisID string) (*models.FrozenGraph, error) {
	var graph *models.FrozenGraph
	err := s.repos.Tx.ExecReadTx(ctx, func(ctx context.Context) error {
		synthesis, err := s.repos.Syntheses.GetByID(ctx, synthesisID)
		if err != nil {
			return err
		}
		if !synthesis.IsPublished() {
			return fmt.Errorf("%w: synthesis %s is a draft", domain.ErrValidation, synthesisID)
		}

		memberIDs, err := s.repos.Syntheses.ListIdeaIDs(ctx, synthesis.ID)
		if err != nil {
			return err
		}
		links, err := s.repos.Syntheses.ListLinks(ctx, synthesis.ID)
		if err != nil {
			return err
		}
		sort.SliceStable(links, func(i, j int) bool { return models.LessLink(&links[i], &links[j]) })

		graph = &models.FrozenGraph{Synthesis: synthesis, Members: []models.Idea{}, Ideas: []models.Idea{}, Links: links}
		seen := map[string]bool{}
		addCopy := func(id string) (*models.Idea, error) {
			if seen[id] {
				return nil, nil
			}
			seen[id] = true
			idea, err := s.repos.Ideas.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if !s.isArchiveCopy(idea, synthesis) {
				return nil, nil
			}
			graph.Ideas = append(graph.Ideas, *idea)
			return idea, nil
		}

		for _, id := range memberIDs {
			idea, err := addCopy(id)
			if err != nil {
				return err
			}
			if idea != nil {
				graph.Members = append(graph.Members, *idea)
			}
		}
		for _, l := range links {
			for _, id := range []string{l.SourceID, l.TargetID} {
				if _, err := addCopy(id); err != nil && !errors.Is(err, domain.ErrNotFound) {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return graph, nil
}

// isArchiveCopy reports whether idea is a copy frozen by the given publication.
func (s *synthesisService) isArchiveCopy(idea *models.Idea, synthesis *models.Synthesis) bool {
	if idea.ArchivedAt() == nil || synthesis.PublishedAt == nil {
		return false
	}
	return idea.ID == idea.BaseID && idea.ArchivedAt().Equal(*synthesis.PublishedAt)
}
