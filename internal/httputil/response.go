package httputil

import (
	"encoding/json"
	"net/http"
)

// RespondJSON writes data as JSON. The body is encoded before any header is
// sent, so an encoding failure still produces a clean 500.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

const problemNamespace = "urn:agora:problem:"

// Problem is an RFC 7807 error document. Kind names the failure inside the
// agora problem namespace and defaults to one derived from Status. Fields
// holds the ids of the ideas, links or syntheses involved and is flattened
// into the top-level object.
type Problem struct {
	Kind   string
	Status int
	Detail string
	Fields map[string]any
}

// MarshalJSON flattens Fields next to the standard members. Standard members
// win over a field of the same name.
func (p Problem) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(p.Fields)+4)
	for k, v := range p.Fields {
		doc[k] = v
	}
	kind := p.Kind
	if kind == "" {
		kind = kindForStatus(p.Status)
	}
	doc["type"] = problemNamespace + kind
	doc["title"] = http.StatusText(p.Status)
	doc["status"] = p.Status
	if p.Detail != "" {
		doc["detail"] = p.Detail
	}
	return json.Marshal(doc)
}

// WriteProblem sends p as application/problem+json
func WriteProblem(w http.ResponseWriter, p Problem) {
	payload, err := json.Marshal(p)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	w.Write(payload)
}

// RespondError sends a problem whose kind follows from status
func RespondError(w http.ResponseWriter, status int, detail string) {
	WriteProblem(w, Problem{Status: status, Detail: detail})
}

func kindForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid-request"
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not-found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "structural-violation"
	default:
		return "internal"
	}
}
