package ideagraph

import (
	"context"
	"time"

	models "agora/internal/domain/models/ideagraph"
	graphRepo "agora/internal/domain/repositories/ideagraph"
	graphSvc "agora/internal/domain/services/ideagraph"
)

// supersedeIdea tombstones the live row of an idea and inserts next as its
// new live version. Must run inside a transaction.
func supersedeIdea(ctx context.Context, repo graphRepo.IdeaRepository, current, next *models.Idea) error {
	if err := repo.Tombstone(ctx, current.ID, time.Now().UTC()); err != nil {
		return err
	}
	if err := repo.Create(ctx, next); err != nil {
		return err
	}
	recordChange(ctx, graphSvc.ChangeEvent{
		Kind:         graphSvc.ChangeUpdated,
		Entity:       graphSvc.EntityIdea,
		ID:           next.ID,
		BaseID:       next.BaseID,
		DiscussionID: next.DiscussionID,
	})
	return nil
}

// supersedeLink tombstones the live row of a link and inserts next as its
// new live version. Must run inside a transaction.
func supersedeLink(ctx context.Context, repo graphRepo.LinkRepository, current, next *models.Link) error {
	if err := repo.Tombstone(ctx, current.ID, time.Now().UTC()); err != nil {
		return err
	}
	if err := repo.Create(ctx, next); err != nil {
		return err
	}
	event := graphSvc.ChangeEvent{
		Kind:         graphSvc.ChangeUpdated,
		Entity:       graphSvc.EntityLink,
		ID:           next.ID,
		BaseID:       next.BaseID,
		DiscussionID: next.DiscussionID,
		SourceID:     next.SourceID,
	}
	if current.SourceID != next.SourceID {
		event.PrevSourceID = current.SourceID
	}
	recordChange(ctx, event)
	return nil
}
