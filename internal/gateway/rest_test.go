package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"timeclock/internal/core/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "ws-42", zap.NewNop().Sugar())
}

func writeSession(w http.ResponseWriter, session map[string]any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"session": session})
}

func TestCreateSessionDecodesResponse(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeSession(w, map[string]any{
			"id":               "sess-1",
			"title":            "deep work",
			"start_time":       "2026-03-02T09:00:00Z",
			"duration_seconds": 0,
			"status":           "running",
		})
	})

	session, err := client.CreateSession(context.Background(), model.SessionDescriptor{
		Title:      "deep work",
		CategoryID: "cat-7",
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/workspaces/ws-42/time-tracking/sessions", gotPath)
	assert.Equal(t, "deep work", gotBody["title"])
	assert.Equal(t, "cat-7", gotBody["categoryId"])
	assert.Nil(t, gotBody["taskId"], "empty ids are sent as null")

	assert.Equal(t, "sess-1", session.ID)
	assert.Equal(t, "ws-42", session.WorkspaceID)
	assert.Equal(t, model.SessionRunning, session.Status)
}

func TestPauseSendsActionAndBreakType(t *testing.T) {
	var gotMethod string
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeSession(w, map[string]any{
			"id":               "sess-1",
			"title":            "deep work",
			"start_time":       "2026-03-02T09:00:00Z",
			"duration_seconds": 1800,
			"status":           "paused",
		})
	})

	session, err := client.PauseSession(context.Background(), "sess-1", BreakRequest{TypeName: "coffee"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "pause", gotBody["action"])
	assert.Equal(t, "coffee", gotBody["breakTypeName"])
	assert.Equal(t, model.SessionPaused, session.Status)
	assert.Equal(t, 30*time.Minute, session.Duration)
}

func TestThresholdErrorCarriesChainSummary(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": "session chain exceeds workspace threshold",
			"code":  "THRESHOLD_EXCEEDED",
			"chain_summary": map[string]any{
				"sessions":               3,
				"total_duration_seconds": 46800,
				"chain_start":            "2026-03-01T20:00:00Z",
			},
		})
	})

	_, err := client.StopSession(context.Background(), "sess-1")
	var threshold *ThresholdError
	require.ErrorAs(t, err, &threshold)
	require.NotNil(t, threshold.Chain)
	assert.Equal(t, 3, threshold.Chain.Sessions)
	assert.Equal(t, 13*time.Hour, threshold.Chain.TotalDuration)
	assert.Equal(t, time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC), threshold.Chain.ChainStart.UTC())
}

func TestServerErrorsAreTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.RunningSession(context.Background())
	assert.True(t, IsTransient(err))
}

func TestUnreachableServerIsTransient(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "ws-42", zap.NewNop().Sugar())
	_, err := client.RunningSession(context.Background())
	assert.True(t, IsTransient(err))
}

func TestNotFoundAndConflictMapping(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "no such session"})
		default:
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "already stopped"})
		}
	})

	err := client.DiscardSession(context.Background(), "ghost")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = client.StopSession(context.Background(), "sess-1")
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestQueryWithoutSessionReturnsNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "running", r.URL.Query().Get("type"))
		_ = json.NewEncoder(w).Encode(map[string]any{"session": nil})
	})

	session, err := client.RunningSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestActiveBreakDecodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/workspaces/ws-42/time-tracking/sessions/sess-1/breaks/active", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"break": map[string]any{
			"id":              "brk-1",
			"session_id":      "sess-1",
			"break_type_name": "lunch",
			"break_start":     "2026-03-02T12:00:00Z",
		}})
	})

	activeBreak, err := client.ActiveBreak(context.Background(), "sess-1")
	require.NoError(t, err)
	require.NotNil(t, activeBreak)
	assert.Equal(t, "lunch", activeBreak.Type)
	assert.Nil(t, activeBreak.End)
}

func TestBackfillRequestShape(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/workspaces/ws-42/time-tracking/missed-entries", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{"session": nil})
	})

	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	_, err := client.BackfillSession(context.Background(), BackfillRequest{
		SessionID: "sess-1",
		Title:     "evening write-up",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		AsBreak:   true,
		BreakType: "overnight",
	})
	require.NoError(t, err)
	assert.Equal(t, "sess-1", gotBody["sessionId"])
	assert.Equal(t, "2026-03-01T20:00:00Z", gotBody["startTime"])
	assert.Equal(t, "2026-03-01T22:00:00Z", gotBody["endTime"])
	assert.Equal(t, true, gotBody["asBreak"])
	assert.Equal(t, "overnight", gotBody["breakType"])
}
