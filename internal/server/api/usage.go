package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ayusman/stroked/internal/store"
)

// defaultUsageLimit bounds GET /api/usage when no limit is given.
const defaultUsageLimit = 50

// UsageHandler serves the gesture dispatch history.
type UsageHandler struct {
	store *store.Store
}

// NewUsageHandler creates a new UsageHandler with the given store.
func NewUsageHandler(s *store.Store) *UsageHandler {
	return &UsageHandler{store: s}
}

type usageEventResponse struct {
	OccurredAt   string  `json:"occurred_at"`
	ProfileID    string  `json:"profile_id,omitempty"`
	GestureID    string  `json:"gesture_id"`
	GestureLabel string  `json:"gesture_label,omitempty"`
	Tokens       string  `json:"tokens,omitempty"`
	DirMode      string  `json:"dir_mode,omitempty"`
	Action       string  `json:"action"`
	Distance     float64 `json:"distance"`
}

type gestureCountResponse struct {
	GestureID    string `json:"gesture_id"`
	GestureLabel string `json:"gesture_label,omitempty"`
	Count        int    `json:"count"`
}

type usageResponse struct {
	Events []usageEventResponse   `json:"events"`
	Counts []gestureCountResponse `json:"counts"`
}

// ServeHTTP handles GET /api/usage?limit=N&since=RFC3339. The since cutoff
// applies to the per-gesture counts; the event list is bounded by limit.
func (h *UsageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultUsageLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid since timestamp")
			return
		}
		since = parsed
	}

	events, err := h.store.Usage().Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load usage history")
		return
	}
	counts, err := h.store.Usage().CountsByGesture(since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to aggregate usage history")
		return
	}

	resp := usageResponse{
		Events: make([]usageEventResponse, 0, len(events)),
		Counts: make([]gestureCountResponse, 0, len(counts)),
	}
	for _, e := range events {
		resp.Events = append(resp.Events, usageEventResponse{
			OccurredAt:   e.OccurredAt.Format("2006-01-02T15:04:05Z07:00"),
			ProfileID:    e.ProfileID,
			GestureID:    e.GestureID,
			GestureLabel: e.GestureLabel,
			Tokens:       e.Tokens,
			DirMode:      e.DirMode,
			Action:       e.Action,
			Distance:     e.Distance,
		})
	}
	for _, c := range counts {
		resp.Counts = append(resp.Counts, gestureCountResponse{
			GestureID:    c.GestureID,
			GestureLabel: c.GestureLabel,
			Count:        c.Count,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
