package handler

import (
	"net/http"
	"time"

	"agora/internal/httputil"
)

// Handlers groups the HTTP handlers served by the API
type Handlers struct {
	Discussions *DiscussionHandler
	Ideas       *IdeaHandler
	Links       *LinkHandler
	Syntheses   *SynthesisHandler
}

// Instrumenter wraps a route handler, e.g. with latency metrics
type Instrumenter func(route string, next http.Handler) http.Handler

// NewRouter registers every route on a new ServeMux (Go 1.22+ patterns).
// instrument may be nil.
func NewRouter(h Handlers, instrument Instrumenter) *http.ServeMux {
	mux := http.NewServeMux()
	handle := func(pattern string, fn http.HandlerFunc) {
		if instrument != nil {
			mux.Handle(pattern, instrument(pattern, fn))
			return
		}
		mux.Handle(pattern, fn)
	}

	handle("GET /health", HealthCheck)

	// Discussions
	handle("POST /api/discussions", h.Discussions.CreateDiscussion)
	handle("GET /api/discussions/{id}", h.Discussions.GetDiscussion)
	handle("GET /api/discussions/{id}/root", h.Discussions.GetRoot)
	handle("GET /api/discussions/{id}/children", h.Discussions.GetChildrenMap)
	handle("GET /api/discussions/{id}/ideas", h.Discussions.ListIdeas)
	handle("GET /api/discussions/{id}/orphans", h.Discussions.GetOrphans)
	handle("GET /api/discussions/{id}/integrity", h.Discussions.CheckIntegrity)
	handle("GET /api/discussions/{id}/outline", h.Discussions.GetOutline)
	handle("GET /api/discussions/{id}/words", h.Discussions.GetWords)

	// Ideas
	handle("POST /api/discussions/{id}/ideas", h.Ideas.CreateIdea)
	handle("GET /api/ideas/{id}", h.Ideas.GetIdea)
	handle("PATCH /api/ideas/{id}", h.Ideas.UpdateIdea)
	handle("DELETE /api/ideas/{id}", h.Ideas.DeleteIdea)
	handle("PUT /api/ideas/{id}/type", h.Ideas.RetypeIdea)
	handle("POST /api/ideas/{id}/move", h.Ideas.MoveIdea)
	handle("GET /api/ideas/{id}/children", h.Ideas.GetChildren)
	handle("GET /api/ideas/{id}/parents", h.Ideas.GetParents)
	handle("GET /api/ideas/{id}/num-children", h.Ideas.GetNumChildren)
	handle("GET /api/ideas/{id}/descendants", h.Ideas.GetDescendants)
	handle("GET /api/ideas/{id}/ancestors", h.Ideas.GetAncestors)

	// Links
	handle("POST /api/links", h.Links.CreateLink)
	handle("PATCH /api/links/{id}", h.Links.UpdateLink)
	handle("DELETE /api/links/{id}", h.Links.DeleteLink)

	// Syntheses
	handle("POST /api/discussions/{id}/syntheses", h.Syntheses.CreateDraft)
	handle("GET /api/discussions/{id}/syntheses", h.Syntheses.ListSyntheses)
	handle("GET /api/syntheses/{id}", h.Syntheses.GetSynthesis)
	handle("GET /api/syntheses/{id}/frozen", h.Syntheses.GetFrozenGraph)
	handle("PUT /api/syntheses/{id}/ideas/{ideaId}", h.Syntheses.AddIdea)
	handle("DELETE /api/syntheses/{id}/ideas/{ideaId}", h.Syntheses.RemoveIdea)
	handle("POST /api/syntheses/{id}/publish", h.Syntheses.Publish)

	return mux
}

// HealthCheck is a simple health check endpoint
func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}
