package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agora/internal/config"
	models "agora/internal/domain/models/ideagraph"
	"agora/internal/httputil"
	"agora/internal/repository/sqlite"
	sqliteGraph "agora/internal/repository/sqlite/ideagraph"
	authService "agora/internal/service/auth"
	"agora/internal/service/ideagraph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "owner-1"

type apiClient struct {
	t   *testing.T
	mux *http.ServeMux
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.EnsureSchema(ctx))

	logger := slog.New(slog.DiscardHandler)
	repos := sqliteGraph.NewRepositories(db, logger)
	svc, err := ideagraph.SetupServices(repos, config.DefaultTypeRegistry(), nil, logger)
	require.NoError(t, err)
	authz := authService.NewDiscussionAuthorizer(repos)

	h := Handlers{
		Discussions: NewDiscussionHandler(svc.Discussions, svc.Graph, svc.Analysis, authz, logger),
		Ideas:       NewIdeaHandler(svc.Ideas, svc.Graph, svc.Ancestry, authz, logger),
		Links:       NewLinkHandler(svc.Links, authz, logger),
		Syntheses:   NewSynthesisHandler(svc.Syntheses, authz, logger),
	}
	return &apiClient{t: t, mux: NewRouter(h, nil)}
}

// do sends a request as user, or anonymously when user is empty, and
// decodes a JSON body into out when out is not nil.
func (c *apiClient) do(user, method, path string, body, out any) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req = httputil.WithUserID(req, user)
	}
	rec := httptest.NewRecorder()
	c.mux.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

func (c *apiClient) createDiscussion(slug string, open bool) createDiscussionResponse {
	c.t.Helper()
	var resp createDiscussionResponse
	rec := c.do(owner, http.MethodPost, "/api/discussions", map[string]any{"slug": slug, "title": slug, "open": open}, &resp)
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	return resp
}

func (c *apiClient) createIdea(discussionID, parentID, title string) models.Idea {
	c.t.Helper()
	body := map[string]any{"title": map[string]string{"en": title}}
	if parentID != "" {
		body["parent_id"] = parentID
	}
	var idea models.Idea
	rec := c.do(owner, http.MethodPost, "/api/discussions/"+discussionID+"/ideas", body, &idea)
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	return idea
}

func TestHealthCheck(t *testing.T) {
	api := newAPI(t)
	rec := api.do("", http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestIdeaLifecycle(t *testing.T) {
	api := newAPI(t)
	d := api.createDiscussion("transport", true)
	a := api.createIdea(d.Discussion.ID, "", "Bike lanes")
	b := api.createIdea(d.Discussion.ID, a.BaseID, "Winter maintenance")

	var children models.ChildrenMap
	rec := api.do("", http.MethodGet, "/api/discussions/"+d.Discussion.ID+"/children", nil, &children)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{a.BaseID}, children[d.Root.BaseID])
	assert.Equal(t, []string{b.BaseID}, children[a.BaseID])

	rec = api.do("", http.MethodGet, "/api/discussions/"+d.Discussion.ID+"/outline?locale=en", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "transport\n└── Bike lanes\n    └── Winter maintenance\n", rec.Body.String())

	var updated models.Idea
	rec = api.do(owner, http.MethodPatch, "/api/ideas/"+a.BaseID, map[string]any{"title": map[string]string{"en": "Cycle lanes"}}, &updated)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, a.BaseID, updated.BaseID)
	assert.NotEqual(t, a.ID, updated.ID)

	var count map[string]int
	rec = api.do("", http.MethodGet, "/api/ideas/"+a.BaseID+"/num-children", nil, &count)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, count["num_children"])

	rec = api.do(owner, http.MethodDelete, "/api/ideas/"+b.BaseID, nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do("", http.MethodGet, "/api/ideas/"+b.BaseID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestErrorMapping(t *testing.T) {
	api := newAPI(t)
	d := api.createDiscussion("errors", true)
	a := api.createIdea(d.Discussion.ID, "", "a")
	b := api.createIdea(d.Discussion.ID, a.BaseID, "b")

	t.Run("cycle is a structural violation", func(t *testing.T) {
		rec := api.do(owner, http.MethodPost, "/api/links", map[string]any{"source_id": b.BaseID, "target_id": a.BaseID}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var problem map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
		assert.Equal(t, a.BaseID, problem["target_id"])
		assert.Equal(t, "urn:agora:problem:structural-violation", problem["type"])
	})

	t.Run("duplicate link is a conflict", func(t *testing.T) {
		rec := api.do(owner, http.MethodPost, "/api/links", map[string]any{"source_id": a.BaseID, "target_id": b.BaseID}, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("duplicate slug is a conflict", func(t *testing.T) {
		rec := api.do(owner, http.MethodPost, "/api/discussions", map[string]any{"slug": "errors", "title": "x"}, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		rec := api.do(owner, http.MethodPost, "/api/discussions", map[string]any{"slug": "x", "bogus": true}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("anonymous writes need a user", func(t *testing.T) {
		rec := api.do("", http.MethodPost, "/api/discussions/"+d.Discussion.ID+"/ideas", map[string]any{"title": map[string]string{"en": "x"}}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestClosedDiscussionIsPrivate(t *testing.T) {
	api := newAPI(t)
	d := api.createDiscussion("private", false)

	rec := api.do("someone", http.MethodGet, "/api/discussions/"+d.Discussion.ID, nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = api.do(owner, http.MethodGet, "/api/discussions/"+d.Discussion.ID, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPublishOverHTTP(t *testing.T) {
	api := newAPI(t)
	d := api.createDiscussion("synth", true)
	a := api.createIdea(d.Discussion.ID, "", "a")
	b := api.createIdea(d.Discussion.ID, a.BaseID, "b")
	c := api.createIdea(d.Discussion.ID, b.BaseID, "c")

	var draft models.Synthesis
	rec := api.do(owner, http.MethodPost, "/api/discussions/"+d.Discussion.ID+"/syntheses",
		map[string]any{"subject": map[string]string{"en": "Summary"}}, &draft)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for _, id := range []string{a.BaseID, c.BaseID} {
		rec = api.do(owner, http.MethodPut, "/api/syntheses/"+draft.ID+"/ideas/"+id, nil, nil)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	}

	var published models.Synthesis
	rec = api.do(owner, http.MethodPost, "/api/syntheses/"+draft.ID+"/publish", nil, &published)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, published.IsPublished())

	var frozen models.FrozenGraph
	rec = api.do("", http.MethodGet, "/api/syntheses/"+published.ID+"/frozen", nil, &frozen)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, frozen.Members, 2)
	assert.Len(t, frozen.Ideas, 3)

	rec = api.do(owner, http.MethodPut, "/api/syntheses/"+published.ID+"/ideas/"+b.BaseID, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/problem+json"))
}
