package auth

import (
	"context"
	"errors"
	"fmt"

	"agora/internal/domain"
	graphRepo "agora/internal/domain/repositories/ideagraph"
)

// DiscussionAuthorizer implements ResourceAuthorizer from discussion
// ownership and the discussion's open flag. Every resource resolves to the
// discussion that contains it.
type DiscussionAuthorizer struct {
	discussionRepo graphRepo.DiscussionRepository
	ideaRepo       graphRepo.IdeaRepository
	linkRepo       graphRepo.LinkRepository
	synthesisRepo  graphRepo.SynthesisRepository
}

// NewDiscussionAuthorizer creates a new discussion-based authorizer
func NewDiscussionAuthorizer(repos graphRepo.Repositories) *DiscussionAuthorizer {
	return &DiscussionAuthorizer{
		discussionRepo: repos.Discussions,
		ideaRepo:       repos.Ideas,
		linkRepo:       repos.Links,
		synthesisRepo:  repos.Syntheses,
	}
}

func (a *DiscussionAuthorizer) check(ctx context.Context, userID, discussionID string, write bool) error {
	discussion, err := a.discussionRepo.GetByID(ctx, discussionID)
	if err != nil {
		return fmt.Errorf("get discussion for auth: %w", err)
	}
	if discussion.OwnerID == userID {
		return nil
	}
	if !discussion.Open {
		return fmt.Errorf("access denied to discussion %s: %w", discussionID, domain.ErrForbidden)
	}
	if write && userID == "" {
		return fmt.Errorf("anonymous write to discussion %s: %w", discussionID, domain.ErrUnauthorized)
	}
	return nil
}

// CanReadDiscussion checks read access to a discussion
func (a *DiscussionAuthorizer) CanReadDiscussion(ctx context.Context, userID, discussionID string) error {
	return a.check(ctx, userID, discussionID, false)
}

// CanWriteDiscussion checks write access to a discussion
func (a *DiscussionAuthorizer) CanWriteDiscussion(ctx context.Context, userID, discussionID string) error {
	return a.check(ctx, userID, discussionID, true)
}

// CanWriteIdea checks write access to an idea (via its discussion)
func (a *DiscussionAuthorizer) CanWriteIdea(ctx context.Context, userID, ideaID string) error {
	idea, err := a.ideaRepo.GetLive(ctx, ideaID)
	if err != nil {
		return fmt.Errorf("get idea for auth: %w", err)
	}
	return a.CanWriteDiscussion(ctx, userID, idea.DiscussionID)
}

// CanWriteLink checks write access to a link (via its discussion)
func (a *DiscussionAuthorizer) CanWriteLink(ctx context.Context, userID, linkID string) error {
	link, err := a.linkRepo.GetLive(ctx, linkID)
	if err != nil {
		return fmt.Errorf("get link for auth: %w", err)
	}
	return a.CanWriteDiscussion(ctx, userID, link.DiscussionID)
}

// CanReadSynthesis checks read access to a synthesis (via its discussion)
func (a *DiscussionAuthorizer) CanReadSynthesis(ctx context.Context, userID, synthesisID string) error {
	discussionID, err := a.synthesisDiscussion(ctx, synthesisID)
	if err != nil {
		return err
	}
	return a.CanReadDiscussion(ctx, userID, discussionID)
}

// CanWriteSynthesis checks write access to a synthesis (via its discussion)
func (a *DiscussionAuthorizer) CanWriteSynthesis(ctx context.Context, userID, synthesisID string) error {
	discussionID, err := a.synthesisDiscussion(ctx, synthesisID)
	if err != nil {
		return err
	}
	return a.CanWriteDiscussion(ctx, userID, discussionID)
}

func (a *DiscussionAuthorizer) synthesisDiscussion(ctx context.Context, synthesisID string) (string, error) {
	synthesis, err := a.synthesisRepo.GetByID(ctx, synthesisID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("get synthesis for auth: %w", err)
	}
	return synthesis.DiscussionID, nil
}
