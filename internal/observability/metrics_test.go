package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	graphSvc "agora/internal/domain/services/ideagraph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeHookCountsEvents(t *testing.T) {
	m := NewMetrics()
	hook := m.ChangeHook()

	ctx := context.Background()
	require.NoError(t, hook(ctx, graphSvc.ChangeEvent{Entity: graphSvc.EntityIdea, Kind: graphSvc.ChangeCreated}))
	require.NoError(t, hook(ctx, graphSvc.ChangeEvent{Entity: graphSvc.EntityIdea, Kind: graphSvc.ChangeCreated}))
	require.NoError(t, hook(ctx, graphSvc.ChangeEvent{Entity: graphSvc.EntityLink, Kind: graphSvc.ChangeDeleted}))

	assert.Equal(t, 2.0, m.ChangeCount(graphSvc.EntityIdea, graphSvc.ChangeCreated))
	assert.Equal(t, 1.0, m.ChangeCount(graphSvc.EntityLink, graphSvc.ChangeDeleted))
	assert.Equal(t, 0.0, m.ChangeCount(graphSvc.EntitySynthesis, graphSvc.ChangePublished))
}

func TestInstrumentAndHandler(t *testing.T) {
	m := NewMetrics()
	h := m.Instrument("/teapot", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `agora_http_request_duration_seconds_count{method="GET",route="/teapot",status="418"} 1`)
}
