package handler

import (
	"log/slog"
	"net/http"

	models "agora/internal/domain/models/ideagraph"
	"agora/internal/domain/services"
	graphSvc "agora/internal/domain/services/ideagraph"
	"agora/internal/httputil"
)

// LinkHandler handles link HTTP requests
type LinkHandler struct {
	links      graphSvc.LinkService
	authorizer services.ResourceAuthorizer
	logger     *slog.Logger
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(links graphSvc.LinkService, authorizer services.ResourceAuthorizer, logger *slog.Logger) *LinkHandler {
	return &LinkHandler{links: links, authorizer: authorizer, logger: logger}
}

// CreateLink links two existing ideas
// POST /api/links
func (h *LinkHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req graphSvc.CreateLinkRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	// The source decides the discussion; the service rejects a foreign target
	if req.SourceID != "" {
		if err := h.authorizer.CanWriteIdea(r.Context(), userID, req.SourceID); err != nil {
			handleError(w, h.logger, err)
			return
		}
	}

	link, err := h.links.CreateLink(r.Context(), userID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, link)
}

// updateLinkRequest changes the order and/or type of a link
type updateLinkRequest struct {
	Order    *float64 `json:"order,omitempty"`
	LinkType *string  `json:"link_type,omitempty"`
}

// UpdateLink reorders and/or retypes a link
// PATCH /api/links/{id}
func (h *LinkHandler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.authorizer.CanWriteLink(r.Context(), userID, id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	var req updateLinkRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Order == nil && req.LinkType == nil {
		httputil.RespondError(w, http.StatusBadRequest, "order or link_type is required")
		return
	}

	var link *models.Link
	var err error
	if req.Order != nil {
		if link, err = h.links.ReorderLink(r.Context(), userID, id, *req.Order); err != nil {
			handleError(w, h.logger, err)
			return
		}
	}
	if req.LinkType != nil {
		if link, err = h.links.RetypeLink(r.Context(), userID, id, *req.LinkType); err != nil {
			handleError(w, h.logger, err)
			return
		}
	}
	httputil.RespondJSON(w, http.StatusOK, link)
}

// DeleteLink tombstones a link
// DELETE /api/links/{id}
func (h *LinkHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.authorizer.CanWriteLink(r.Context(), userID, id); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if err := h.links.DeleteLink(r.Context(), userID, id); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
