package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/stroked/internal/geom"
	"github.com/ayusman/stroked/internal/profile"
	"github.com/ayusman/stroked/internal/runtime"
)

func TestHealthEndpoint(t *testing.T) {
	s := New(Config{Profiles: profile.NewHandle(profile.Default())})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.NotEmpty(t, resp["uptime"])
}

func TestHealthEndpoint_MethodNotAllowed(t *testing.T) {
	s := New(Config{})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/health", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestOverlayHub_BroadcastsStrokeEvents(t *testing.T) {
	hub := NewOverlayHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/overlay"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The client registers asynchronously after the upgrade; keep emitting
	// until an event arrives.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				hub.StrokeStarted(geom.Point{X: 5, Y: 7})
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var event overlayEvent
	require.NoError(t, json.Unmarshal(msg, &event))
	assert.Equal(t, "start", event.Kind)
	assert.Equal(t, 5.0, event.X)
	assert.Equal(t, 7.0, event.Y)
	assert.NotZero(t, event.Timestamp)
}

func TestOverlayHub_EndEventCarriesResult(t *testing.T) {
	hub := NewOverlayHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	result := runtime.Result{
		Outcome:      runtime.OutcomeMatched,
		GestureLabel: "Back",
		Action:       "nav/back",
		Tokens:       "L",
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				hub.StrokeEnded(result)
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var event overlayEvent
	require.NoError(t, json.Unmarshal(msg, &event))
	assert.Equal(t, "end", event.Kind)
	require.NotNil(t, event.Result)
	assert.Equal(t, "nav/back", event.Result.Action)
	assert.Equal(t, runtime.OutcomeMatched, event.Result.Outcome)
}
