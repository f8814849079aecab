package ideagraph

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"agora/internal/config"
	models "agora/internal/domain/models/ideagraph"
	graphRepo "agora/internal/domain/repositories/ideagraph"
	graphSvc "agora/internal/domain/services/ideagraph"
	"agora/internal/repository/sqlite"
	sqliteGraph "agora/internal/repository/sqlite/ideagraph"

	"github.com/stretchr/testify/require"
)

const testUser = "user-1"

type testEnv struct {
	ctx      context.Context
	repos    graphRepo.Repositories
	types    *config.TypeRegistry
	services *Services
	events   *eventRecorder
}

// eventRecorder is a change hook that keeps every event it sees.
type eventRecorder struct {
	mu     sync.Mutex
	events []graphSvc.ChangeEvent
}

func (r *eventRecorder) hook(_ context.Context, event graphSvc.ChangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func (r *eventRecorder) count(entity graphSvc.EntityType, kind graphSvc.ChangeKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Entity == entity && e.Kind == kind {
			n++
		}
	}
	return n
}

func (r *eventRecorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// newTestEnv wires the graph services over a fresh in-memory SQLite store
// and the default type registry.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithTypes(t, config.DefaultTypeRegistry())
}

func newTestEnvWithTypes(t *testing.T, types *config.TypeRegistry) *testEnv {
	t.Helper()
	return buildTestEnv(t, types, nil)
}

// newTestEnvWithLinks lets a test wrap the link repository the services use
func newTestEnvWithLinks(t *testing.T, wrap func(graphRepo.LinkRepository) graphRepo.LinkRepository) *testEnv {
	t.Helper()
	return buildTestEnv(t, config.DefaultTypeRegistry(), wrap)
}

func buildTestEnv(t *testing.T, types *config.TypeRegistry, wrapLinks func(graphRepo.LinkRepository) graphRepo.LinkRepository) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.EnsureSchema(ctx))

	logger := slog.New(slog.DiscardHandler)
	repos := sqliteGraph.NewRepositories(db, logger)
	if wrapLinks != nil {
		repos.Links = wrapLinks(repos.Links)
	}
	services, err := SetupServices(repos, types, nil, logger)
	require.NoError(t, err)

	events := &eventRecorder{}
	require.NoError(t, services.Hooks.Register("recorder", events.hook))

	return &testEnv{ctx: ctx, repos: repos, types: types, services: services, events: events}
}

func (e *testEnv) newDiscussion(t *testing.T, slug string) (*models.Discussion, *models.Idea) {
	t.Helper()
	d, root, err := e.services.Discussions.CreateDiscussion(e.ctx, testUser, &graphSvc.CreateDiscussionRequest{
		Slug:  slug,
		Title: "Discussion " + slug,
		Open:  true,
	})
	require.NoError(t, err)
	return d, root
}

// addIdea creates an idea titled title under parent and returns its logical id
func (e *testEnv) addIdea(t *testing.T, discussionID string, parent *models.Idea, title string) *models.Idea {
	t.Helper()
	return e.addTypedIdea(t, discussionID, parent, title, "", "")
}

func (e *testEnv) addTypedIdea(t *testing.T, discussionID string, parent *models.Idea, title, semanticType, linkType string) *models.Idea {
	t.Helper()
	parentID := parent.BaseID
	idea, err := e.services.Ideas.CreateIdea(e.ctx, testUser, &graphSvc.CreateIdeaRequest{
		DiscussionID: discussionID,
		ParentID:     &parentID,
		Title:        map[string]string{"en": title},
		SemanticType: semanticType,
		LinkType:     linkType,
	})
	require.NoError(t, err)
	return idea
}

func (e *testEnv) link(t *testing.T, source, target *models.Idea) *models.Link {
	t.Helper()
	l, err := e.services.Links.CreateLink(e.ctx, testUser, &graphSvc.CreateLinkRequest{
		SourceID: source.BaseID,
		TargetID: target.BaseID,
	})
	require.NoError(t, err)
	return l
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

func float(v float64) *float64 { return &v }

// interceptedLinks runs a callback right after a read returns, which lets a
// test commit a change between a read and its use.
type interceptedLinks struct {
	graphRepo.LinkRepository
	afterListLive func(ctx context.Context)
	afterCount    func(ctx context.Context)
}

func (l *interceptedLinks) ListLive(ctx context.Context, discussionID string) ([]models.Link, error) {
	links, err := l.LinkRepository.ListLive(ctx, discussionID)
	if err == nil && l.afterListLive != nil {
		l.afterListLive(ctx)
	}
	return links, err
}

func (l *interceptedLinks) CountLiveFrom(ctx context.Context, sourceID string) (int, error) {
	n, err := l.LinkRepository.CountLiveFrom(ctx, sourceID)
	if err == nil && l.afterCount != nil {
		l.afterCount(ctx)
	}
	return n, err
}
