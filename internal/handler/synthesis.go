package handler

import (
	"log/slog"
	"net/http"

	"agora/internal/domain/services"
	graphSvc "agora/internal/domain/services/ideagraph"
	"agora/internal/httputil"
)

// SynthesisHandler handles synthesis HTTP requests
type SynthesisHandler struct {
	syntheses  graphSvc.SynthesisService
	authorizer services.ResourceAuthorizer
	logger     *slog.Logger
}

// NewSynthesisHandler creates a new synthesis handler
func NewSynthesisHandler(syntheses graphSvc.SynthesisService, authorizer services.ResourceAuthorizer, logger *slog.Logger) *SynthesisHandler {
	return &SynthesisHandler{syntheses: syntheses, authorizer: authorizer, logger: logger}
}

// CreateDraft creates a draft synthesis
// POST /api/discussions/{id}/syntheses
func (h *SynthesisHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
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

	var req graphSvc.CreateSynthesisRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.DiscussionID = discussionID

	draft, err := h.syntheses.CreateDraft(r.Context(), userID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, draft)
}

// ListSyntheses lists the syntheses of a discussion
// GET /api/discussions/{id}/syntheses
func (h *SynthesisHandler) ListSyntheses(w http.ResponseWriter, r *http.Request) {
	discussionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.authorizer.CanReadDiscussion(r.Context(), httputil.GetUserID(r), discussionID); err != nil {
		handleError(w, h.logger, err)
		return
	}
	list, err := h.syntheses.ListSyntheses(r.Context(), discussionID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, list)
}

// GetSynthesis retrieves a synthesis
// GET /api/syntheses/{id}
func (h *SynthesisHandler) GetSynthesis(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.authorizer.CanReadSynthesis(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, h.logger, err)
		return
	}
	synthesis, err := h.syntheses.GetSynthesis(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, synthesis)
}

// GetFrozenGraph returns the archived content of a published synthesis
// GET /api/syntheses/{id}/frozen
func (h *SynthesisHandler) GetFrozenGraph(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.authorizer.CanReadSynthesis(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, h.logger, err)
		return
	}
	graph, err := h.syntheses.FrozenGraph(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, graph)
}

// writable checks write access to the synthesis in the path
func (h *SynthesisHandler) writable(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return "", "", false
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return "", "", false
	}
	if err := h.authorizer.CanWriteSynthesis(r.Context(), userID, id); err != nil {
		handleError(w, h.logger, err)
		return "", "", false
	}
	return userID, id, true
}

// AddIdea selects an idea
// PUT /api/syntheses/{id}/ideas/{ideaId}
func (h *SynthesisHandler) AddIdea(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.writable(w, r)
	if !ok {
		return
	}
	ideaID, ok := pathID(w, r, "ideaId")
	if !ok {
		return
	}
	if err := h.syntheses.AddIdea(r.Context(), userID, id, ideaID); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveIdea unselects an idea
// DELETE /api/syntheses/{id}/ideas/{ideaId}
func (h *SynthesisHandler) RemoveIdea(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.writable(w, r)
	if !ok {
		return
	}
	ideaID, ok := pathID(w, r, "ideaId")
	if !ok {
		return
	}
	if err := h.syntheses.RemoveIdea(r.Context(), userID, id, ideaID); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Publish freezes a draft into a new published synthesis
// POST /api/syntheses/{id}/publish
func (h *SynthesisHandler) Publish(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.writable(w, r)
	if !ok {
		return
	}
	frozen, err := h.syntheses.Publish(r.Context(), userID, id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, frozen)
}
