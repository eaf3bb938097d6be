package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/stroked/internal/gesture"
)

type parseRequest struct {
	Gesture string `json:"gesture"`
}

type parseResponse struct {
	OK         bool     `json:"ok"`
	Name       string   `json:"name,omitempty"`
	PointCount int      `json:"point_count,omitempty"`
	Serialized string   `json:"serialized,omitempty"`
	Directions []string `json:"directions,omitempty"`
	Error      string   `json:"error,omitempty"`
	ErrorKind  string   `json:"error_kind,omitempty"`
	ErrorIndex int      `json:"error_index,omitempty"`
}

// parseDirectionMinSegment filters out sub-jitter segments when summarizing
// a gesture's direction sequence for the editor preview.
const parseDirectionMinSegment = 3.0

// HandleParse handles POST /api/parse: it checks a serialized gesture and
// returns either its normalized form or a structured parse error. The
// settings UI uses it for inline validation while the user types.
func HandleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	def, err := gesture.ParseGesture(req.Gesture)
	if err != nil {
		resp := parseResponse{OK: false, Error: err.Error()}
		var parseErr *gesture.ParseError
		if errors.As(err, &parseErr) {
			resp.ErrorKind = parseErr.Kind.String()
			resp.ErrorIndex = parseErr.Index
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	var directions []string
	for _, d := range gesture.DirectionSequence(def.Points, parseDirectionMinSegment) {
		directions = append(directions, d.String())
	}

	writeJSON(w, http.StatusOK, parseResponse{
		OK:         true,
		Name:       def.Name,
		PointCount: len(def.Points),
		Serialized: gesture.SerializeGesture(def),
		Directions: directions,
	})
}
