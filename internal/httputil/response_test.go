package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteProblem(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteProblem(rec, Problem{
		Kind:   "snapshot-inconsistency",
		Status: http.StatusConflict,
		Detail: "link l1 points at a dead idea",
		Fields: map[string]any{"link_id": "l1", "status": "ignored"},
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "urn:agora:problem:snapshot-inconsistency", doc["type"])
	assert.Equal(t, "Conflict", doc["title"])
	assert.EqualValues(t, http.StatusConflict, doc["status"])
	assert.Equal(t, "l1", doc["link_id"])
}

func TestRespondErrorDerivesKind(t *testing.T) {
	tests := []struct {
		status int
		kind   string
	}{
		{http.StatusBadRequest, "invalid-request"},
		{http.StatusUnauthorized, "unauthenticated"},
		{http.StatusNotFound, "not-found"},
		{http.StatusTeapot, "internal"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		RespondError(rec, tt.status, "")

		var doc map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Equal(t, problemNamespace+tt.kind, doc["type"])
		assert.NotContains(t, doc, "detail")
	}
}

func TestRespondJSONFallsBackOnEncodingError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusOK, map[string]any{"bad": make(chan int)})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}
