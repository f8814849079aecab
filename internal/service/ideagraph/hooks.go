package ideagraph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	graphSvc "agora/internal/domain/services/ideagraph"
)

// Hook reacts to a committed change. It must not write to the graph.
type Hook func(ctx context.Context, event graphSvc.ChangeEvent) error

type namedHook struct {
	name string
	hook Hook
}

// HookManager fans change events out to registered hooks in registration order.
// It implements ChangeNotifier.
type HookManager struct {
	hooks  []namedHook
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHookManager creates a new hook manager
func NewHookManager(logger *slog.Logger) *HookManager {
	return &HookManager{logger: logger}
}

// Register adds a hook. Registering the same name twice is an error.
func (m *HookManager) Register(name string, hook Hook) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range m.hooks {
		if h.name == name {
			return fmt.Errorf("hook %s already registered", name)
		}
	}
	m.hooks = append(m.hooks, namedHook{name: name, hook: hook})
	return nil
}

// EntityChanged runs every hook. The change is already committed, so hook
// failures are logged and never returned to the caller.
func (m *HookManager) EntityChanged(ctx context.Context, event graphSvc.ChangeEvent) {
	m.mu.RLock()
	hooks := m.hooks
	m.mu.RUnlock()

	for _, h := range hooks {
		if err := h.hook(ctx, event); err != nil {
			m.logger.Warn("change hook failed",
				"hook", h.name,
				"entity", event.Entity,
				"id", event.ID,
				"error", err,
			)
		}
	}
}

// LogHook writes every change as a structured log line
func LogHook(logger *slog.Logger) Hook {
	return func(_ context.Context, event graphSvc.ChangeEvent) error {
		logger.Info("entity changed",
			"kind", event.Kind,
			"entity", event.Entity,
			"id", event.ID,
			"base_id", event.BaseID,
			"discussion_id", event.DiscussionID,
			"user_id", event.UserID,
		)
		return nil
	}
}
