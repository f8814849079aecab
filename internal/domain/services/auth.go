package services

import "context"

// ResourceAuthorizer checks if a user can read or change graph resources.
// Current implementation: a discussion is readable by everyone while open and
// by its owner only once closed; only the owner may change a closed discussion.
//
// Handlers call the authorizer before invoking a service, so the graph core
// never evaluates permissions itself.
type ResourceAuthorizer interface {
	// CanReadDiscussion checks read access to a discussion
	CanReadDiscussion(ctx context.Context, userID, discussionID string) error

	// CanWriteDiscussion checks write access to a discussion
	CanWriteDiscussion(ctx context.Context, userID, discussionID string) error

	// CanWriteIdea checks write access to an idea (via its discussion)
	CanWriteIdea(ctx context.Context, userID, ideaID string) error

	// CanWriteLink checks write access to a link (via its discussion)
	CanWriteLink(ctx context.Context, userID, linkID string) error

	// CanReadSynthesis checks read access to a synthesis (via its discussion)
	CanReadSynthesis(ctx context.Context, userID, synthesisID string) error

	// CanWriteSynthesis checks write access to a synthesis (via its discussion)
	CanWriteSynthesis(ctx context.Context, userID, synthesisID string) error
}
