package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"agora/internal/domain"
	"agora/internal/httputil"
)

// handleError converts domain errors to RFC 7807 responses
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		conflictErr   *domain.ConflictError
		structuralErr *domain.StructuralViolationError
		snapshotErr   *domain.SnapshotInconsistencyError
		typeErr       *domain.UnresolvableTypeError
		invariantErr  *domain.InvariantViolationError
	)

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.WriteProblem(w, httputil.Problem{
			Kind:   "conflict",
			Status: conflictErr.StatusCode(),
			Detail: conflictErr.Error(),
			Fields: map[string]any{
				"resource_type": conflictErr.ResourceType,
				"resource_id":   conflictErr.ResourceID,
			},
		})
	case errors.As(err, &structuralErr):
		httputil.WriteProblem(w, httputil.Problem{
			Kind:   "structural-violation",
			Status: structuralErr.StatusCode(),
			Detail: structuralErr.Error(),
			Fields: map[string]any{
				"source_id": structuralErr.SourceID,
				"target_id": structuralErr.TargetID,
				"reason":    structuralErr.Reason,
			},
		})
	case errors.As(err, &snapshotErr):
		httputil.WriteProblem(w, httputil.Problem{
			Kind:   "snapshot-inconsistency",
			Status: snapshotErr.StatusCode(),
			Detail: snapshotErr.Error(),
			Fields: map[string]any{
				"link_id": snapshotErr.LinkID,
				"idea_id": snapshotErr.IdeaID,
			},
		})
	case errors.As(err, &typeErr):
		// Broken typology configuration, surfaced so the operator can fix it
		logger.Error("unresolvable type", "error", err)
		httputil.WriteProblem(w, httputil.Problem{
			Kind:   "unresolvable-type",
			Status: typeErr.StatusCode(),
			Detail: typeErr.Error(),
			Fields: map[string]any{
				"parent_type": typeErr.ParentType,
				"link_type":   typeErr.LinkType,
				"child_type":  typeErr.ChildType,
			},
		})
	case errors.As(err, &invariantErr):
		logger.Error("graph invariant violated", "discussion_id", invariantErr.DiscussionID, "error", err)
		httputil.WriteProblem(w, httputil.Problem{
			Kind:   "invariant-violation",
			Status: invariantErr.StatusCode(),
			Detail: invariantErr.Error(),
			Fields: map[string]any{"discussion_id": invariantErr.DiscussionID},
		})
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathID reads a required path parameter
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, name+" is required")
		return "", false
	}
	return id, true
}

// requireUser rejects anonymous requests to mutating endpoints
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}
