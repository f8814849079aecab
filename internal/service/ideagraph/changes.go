package ideagraph

import (
	"context"

	"agora/internal/domain/repositories"
	graphSvc "agora/internal/domain/services/ideagraph"
)

type changeSetKey struct{}

// changeSet collects the entities written by one mutation so they can be
// reported once the transaction has committed.
type changeSet struct {
	userID string
	events []graphSvc.ChangeEvent
}

// withChangeSet returns a context carrying a fresh change set, or the one
// already present when called from inside another mutation.
func withChangeSet(ctx context.Context, userID string) (context.Context, *changeSet, bool) {
	if cs, ok := ctx.Value(changeSetKey{}).(*changeSet); ok {
		return ctx, cs, false
	}
	cs := &changeSet{userID: userID}
	return context.WithValue(ctx, changeSetKey{}, cs), cs, true
}

func recordChange(ctx context.Context, event graphSvc.ChangeEvent) {
	cs, ok := ctx.Value(changeSetKey{}).(*changeSet)
	if !ok {
		return
	}
	if event.UserID == "" {
		event.UserID = cs.userID
	}
	cs.events = append(cs.events, event)
}

// mutate runs fn in a write transaction and, when this call owns the change
// set, reports every recorded change after commit.
func mutate(ctx context.Context, tx repositories.TransactionManager, notifier graphSvc.ChangeNotifier, userID string, fn repositories.TxFn) error {
	ctx, cs, owner := withChangeSet(ctx, userID)
	if err := tx.ExecTx(ctx, fn); err != nil {
		return err
	}
	if owner && notifier != nil {
		for _, event := range cs.events {
			notifier.EntityChanged(ctx, event)
		}
	}
	return nil
}
