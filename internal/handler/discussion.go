package handler

import (
	"log/slog"
	"net/http"

	models "agora/internal/domain/models/ideagraph"
	"agora/internal/domain/services"
	graphSvc "agora/internal/domain/services/ideagraph"
	"agora/internal/httputil"
)

// DiscussionHandler handles discussion-level HTTP requests
type DiscussionHandler struct {
	discussions graphSvc.DiscussionService
	graph       graphSvc.GraphService
	analysis    graphSvc.AnalysisService
	authorizer  services.ResourceAuthorizer
	logger      *slog.Logger
}

// NewDiscussionHandler creates a new discussion handler
func NewDiscussionHandler(
	discussions graphSvc.DiscussionService,
	graph graphSvc.GraphService,
	analysis graphSvc.AnalysisService,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) *DiscussionHandler {
	return &DiscussionHandler{
		discussions: discussions,
		graph:       graph,
		analysis:    analysis,
		authorizer:  authorizer,
		logger:      logger,
	}
}

// createDiscussionResponse returns the discussion together with its root idea
type createDiscussionResponse struct {
	Discussion *models.Discussion `json:"discussion"`
	Root       *models.Idea       `json:"root"`
}

// CreateDiscussion creates a discussion and its root idea
// POST /api/discussions
func (h *DiscussionHandler) CreateDiscussion(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req graphSvc.CreateDiscussionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	discussion, root, err := h.discussions.CreateDiscussion(r.Context(), userID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, createDiscussionResponse{Discussion: discussion, Root: root})
}

// readable resolves the discussion path parameter and checks read access
func (h *DiscussionHandler) readable(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return "", false
	}
	if err := h.authorizer.CanReadDiscussion(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, h.logger, err)
		return "", false
	}
	return id, true
}

// GetDiscussion retrieves a discussion
// GET /api/discussions/{id}
func (h *DiscussionHandler) GetDiscussion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.readable(w, r)
	if !ok {
		return
	}
	discussion, err := h.discussions.GetDiscussion(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, discussion)
}

// GetRoot returns the root idea
// GET /api/discussions/{id}/root
func (h *DiscussionHandler) GetRoot(w http.ResponseWriter, r *http.Request) {
	id, ok := h.readable(w, r)
	if !ok {
		return
	}
	root, err := h.graph.Root(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, root)
}

// GetChildrenMap returns every parent -> ordered children relation.
// The "" key holds the root.
// GET /api/discussions/{id}/children
func (h *DiscussionHandler) GetChildrenMap(w http.ResponseWriter, r *http.Request) {
	id, ok := h.readable(w, r)
	if !ok {
		return
	}
	children, err := h.graph.ChildrenOf(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, children)
}

// ListIdeas lists live ideas in traversal order
// GET /api/discussions/{id}/ideas?order=dfs|bfs&start=&include_hidden=
func (h *DiscussionHandler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	id, ok := h.readable(w, r)
	if !ok {
		return
	}
	includeHidden, err := httputil.QueryBool(r, "include_hidden", false)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	ideas, err := h.graph.Traverse(r.Context(), id, q.Get("start"), graphSvc.TraversalOrder(q.Get("order")), includeHidden)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, ideas)
}

// GetOrphans lists live ideas without a parent
// GET /api/discussions/{id}/orphans
func (h *DiscussionHandler) GetOrphans(w http.ResponseWriter, r *http.Request) {
	id, ok := h.readable(w, r)
	if !ok {
		return
	}
	orphans, err := h.graph.Orphans(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, orphans)
}

// CheckIntegrity reports root and reachability invariants
// GET /api/discussions/{id}/integrity
func (h *DiscussionHandler) CheckIntegrity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.readable(w, r)
	if !ok {
		return
	}
	report, err := h.graph.CheckIntegrity(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, report)
}

// GetOutline renders the graph as an ASCII tree
// GET /api/discussions/{id}/outline?locale=
func (h *DiscussionHandler) GetOutline(w http.ResponseWriter, r *http.Request) {
	id, ok := h.readable(w, r)
	if !ok {
		return
	}
	outline, err := h.analysis.Outline(r.Context(), id, r.URL.Query().Get("locale"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(outline + "\n"))
}

// GetWords returns the most common words below an idea
// GET /api/discussions/{id}/words?start=&locale=&n=
func (h *DiscussionHandler) GetWords(w http.ResponseWriter, r *http.Request) {
	id, ok := h.readable(w, r)
	if !ok {
		return
	}
	n, err := httputil.QueryInt(r, "n", 20)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	words, err := h.analysis.MostCommonWords(r.Context(), id, q.Get("start"), q.Get("locale"), n)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, words)
}
