package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"agora/internal/domain"
	"agora/internal/domain/services"
	graphSvc "agora/internal/domain/services/ideagraph"
	"agora/internal/httputil"
)

// IdeaHandler handles idea HTTP requests
type IdeaHandler struct {
	ideas      graphSvc.IdeaService
	graph      graphSvc.GraphService
	ancestry   graphSvc.AncestryResolver
	authorizer services.ResourceAuthorizer
	logger     *slog.Logger
}

// NewIdeaHandler creates a new idea handler
func NewIdeaHandler(
	ideas graphSvc.IdeaService,
	graph graphSvc.GraphService,
	ancestry graphSvc.AncestryResolver,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) *IdeaHandler {
	return &IdeaHandler{
		ideas:      ideas,
		graph:      graph,
		ancestry:   ancestry,
		authorizer: authorizer,
		logger:     logger,
	}
}

// CreateIdea creates an idea in a discussion
// POST /api/discussions/{id}/ideas
func (h *IdeaHandler) CreateIdea(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	discussionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.authorizer.CanWriteDiscussion(r.Context(), userID, discussionID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	var req graphSvc.CreateIdeaRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.DiscussionID = discussionID

	idea, err := h.ideas.CreateIdea(r.Context(), userID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, idea)
}

// readable resolves the idea path parameter and checks read access through its discussion
func (h *IdeaHandler) readable(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return "", false
	}
	idea, err := h.ideas.GetIdea(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return "", false
	}
	if err := h.authorizer.CanReadDiscussion(r.Context(), httputil.GetUserID(r), idea.DiscussionID); err != nil {
		handleError(w, h.logger, err)
		return "", false
	}
	return id, true
}

// writable resolves the idea path parameter and checks write access
func (h *IdeaHandler) writable(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return "", "", false
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return "", "", false
	}
	if err := h.authorizer.CanWriteIdea(r.Context(), userID, id); err != nil {
		handleError(w, h.logger, err)
		return "", "", false
	}
	return userID, id, true
}

// GetIdea retrieves the live version of an idea
// GET /api/ideas/{id}
func (h *IdeaHandler) GetIdea(w http.ResponseWriter, r *http.Request) {
	id, ok := h.readable(w, r)
	if !ok {
		return
	}
	idea, err := h.ideas.GetIdea(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, idea)
}

// UpdateIdea records a new version of an idea
// PATCH /api/ideas/{id}
func (h *IdeaHandler) UpdateIdea(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.writable(w, r)
	if !ok {
		return
	}
	var req graphSvc.UpdateIdeaRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	idea, err := h.ideas.UpdateIdea(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, idea)
}

type retypeRequest struct {
	Type string `json:"type"`
}

// RetypeIdea changes the semantic type of an idea
// PUT /api/ideas/{id}/type
func (h *IdeaHandler) RetypeIdea(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.writable(w, r)
	if !ok {
		return
	}
	var req retypeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	idea, err := h.ideas.RetypeIdea(r.Context(), userID, id, req.Type)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, idea)
}

// MoveIdea re-parents an idea
// POST /api/ideas/{id}/move
func (h *IdeaHandler) MoveIdea(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.writable(w, r)
	if !ok {
		return
	}
	var req graphSvc.MoveIdeaRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	link, err := h.ideas.MoveIdea(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, link)
}

// DeleteIdea tombstones an idea and its links
// DELETE /api/ideas/{id}
func (h *IdeaHandler) DeleteIdea(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.writable(w, r)
	if !ok {
		return
	}
	if err := h.ideas.DeleteIdea(r.Context(), userID, id); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetChildren lists the live children of an idea
// GET /api/ideas/{id}/children
func (h *IdeaHandler) GetChildren(w http.ResponseWriter, r *http.Request) {
	id, ok := h.readable(w, r)
	if !ok {
		return
	}
	children, err := h.graph.Children(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, children)
}

// GetParents lists the live parents of an idea
// GET /api/ideas/{id}/parents
func (h *IdeaHandler) GetParents(w http.ResponseWriter, r *http.Request) {
	id, ok := h.readable(w, r)
	if !ok {
		return
	}
	parents, err := h.graph.Parents(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, parents)
}

// GetNumChildren counts the live children of an idea
// GET /api/ideas/{id}/num-children
func (h *IdeaHandler) GetNumChildren(w http.ResponseWriter, r *http.Request) {
	id, ok := h.readable(w, r)
	if !ok {
		return
	}
	n, err := h.graph.NumChildren(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]int{"num_children": n})
}

// GetDescendants returns the transitive children of an idea
// GET /api/ideas/{id}/descendants?inclusive=
func (h *IdeaHandler) GetDescendants(w http.ResponseWriter, r *http.Request) {
	h.closure(w, r, func(id string, inclusive bool) (map[string]struct{}, error) {
		return h.ancestry.Descendants(r.Context(), id, inclusive)
	})
}

// GetAncestors returns the transitive parents of an idea
// GET /api/ideas/{id}/ancestors?inclusive=
func (h *IdeaHandler) GetAncestors(w http.ResponseWriter, r *http.Request) {
	h.closure(w, r, func(id string, inclusive bool) (map[string]struct{}, error) {
		return h.ancestry.Ancestors(r.Context(), inclusive, id)
	})
}

// closure answers ancestry queries. An unknown idea yields an empty list.
func (h *IdeaHandler) closure(w http.ResponseWriter, r *http.Request, resolve func(string, bool) (map[string]struct{}, error)) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	inclusive, err := httputil.QueryBool(r, "inclusive", false)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	idea, err := h.ideas.GetIdea(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		httputil.RespondJSON(w, http.StatusOK, []string{})
		return
	}
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if err := h.authorizer.CanReadDiscussion(r.Context(), httputil.GetUserID(r), idea.DiscussionID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	set, err := resolve(id, inclusive)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	ids := make([]string, 0, len(set))
	for k := range set {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	httputil.RespondJSON(w, http.StatusOK, ids)
}
