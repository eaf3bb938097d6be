package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/stroked/internal/library"
	"github.com/ayusman/stroked/internal/profile"
	"github.com/ayusman/stroked/internal/store"
)

func seedProfiles() profile.DB {
	db := profile.Default()
	db.Gestures = []string{"g-right"}
	db.Bindings["g-right"] = "right:0,0|100,0"
	db.Profiles = []profile.Profile{{
		ID:      "default",
		Enabled: true,
		Bindings: []profile.Binding{{
			GestureID: "g-right",
			Action:    "nav/forward",
			Enabled:   true,
		}},
	}}
	return db
}

func TestProfilesHandler_Get(t *testing.T) {
	handle := profile.NewHandle(seedProfiles())
	h := NewProfilesHandler(handle, filepath.Join(t.TempDir(), "profiles.json"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profiles", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var db profile.DB
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &db))
	assert.Len(t, db.Profiles, 1)
	assert.Equal(t, "right:0,0|100,0", db.Bindings["g-right"])
}

func TestProfilesHandler_PutPersistsAndPublishes(t *testing.T) {
	handle := profile.NewHandle(profile.Default())
	path := filepath.Join(t.TempDir(), "profiles.json")
	h := NewProfilesHandler(handle, path)

	body, err := json.Marshal(seedProfiles())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/profiles", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	// Published to the live handle.
	assert.Len(t, handle.Snapshot().Profiles, 1)

	// Persisted to disk.
	loaded, err := profile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "default", loaded.Profiles[0].ID)
}

func TestProfilesHandler_PutRejectsBadTemplates(t *testing.T) {
	handle := profile.NewHandle(profile.Default())
	h := NewProfilesHandler(handle, filepath.Join(t.TempDir(), "profiles.json"))

	db := seedProfiles()
	db.Bindings["g-right"] = "right:0,0|not-a-number,5"
	body, err := json.Marshal(db)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/profiles", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, handle.Snapshot().Profiles, "rejected db must not be published")
}

func TestProfilesHandler_PutRejectsDanglingBinding(t *testing.T) {
	handle := profile.NewHandle(profile.Default())
	h := NewProfilesHandler(handle, filepath.Join(t.TempDir(), "profiles.json"))

	db := seedProfiles()
	db.Profiles[0].Bindings[0].GestureID = "missing"
	body, err := json.Marshal(db)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/profiles", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfilesHandler_AddGesture(t *testing.T) {
	handle := profile.NewHandle(profile.Default())
	path := filepath.Join(t.TempDir(), "profiles.json")
	h := NewProfilesHandler(handle, path)

	body := []byte(`{"name": "circle", "points": "0,0|10,0|10,10|0,10|0,0"}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/profiles/gestures", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp addGestureResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)

	snapshot := handle.Snapshot()
	assert.Contains(t, snapshot.Gestures, resp.ID)
	assert.Contains(t, snapshot.Bindings[resp.ID], "circle:")
}

func TestProfilesHandler_AddGestureRejectsBadPoints(t *testing.T) {
	handle := profile.NewHandle(profile.Default())
	h := NewProfilesHandler(handle, filepath.Join(t.TempDir(), "profiles.json"))

	body := []byte(`{"name": "broken", "points": "0,0|1"}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/profiles/gestures", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, handle.Snapshot().Gestures)
}

type fakePublisher struct {
	published *library.Library
}

func (f *fakePublisher) ReplaceLibrary(lib *library.Library) { f.published = lib }

func TestLibraryHandler_GetAndPut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	publisher := &fakePublisher{}
	h := NewLibraryHandler(path, publisher)

	// GET on a missing file returns the default library.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/gestures", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	lib := library.Library{
		SchemaVersion: library.SchemaVersion,
		Gestures: []library.GestureEntry{{
			Label:   "Back",
			Tokens:  "L",
			DirMode: "four",
			Enabled: true,
		}},
	}
	body, err := json.Marshal(lib)
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/gestures", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, publisher.published, "PUT must publish the new library")
	assert.Equal(t, "Back", publisher.published.Gestures[0].Label)

	loaded, err := library.Load(path)
	require.NoError(t, err)
	assert.Len(t, loaded.Gestures, 1)
}

func TestLibraryHandler_SearchAndActionLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	lib := library.Library{
		SchemaVersion: library.SchemaVersion,
		Gestures: []library.GestureEntry{{
			Label:   "Back",
			Tokens:  "L",
			DirMode: "four",
			Enabled: true,
			Bindings: []library.BindingEntry{{
				Label:   "Go back",
				Kind:    library.BindingKindExecute,
				Action:  "nav/back",
				Enabled: true,
			}},
		}},
	}
	require.NoError(t, library.Save(path, lib))
	h := NewLibraryHandler(path, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/gestures?q=back", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var search searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &search))
	require.Len(t, search.Results, 1)
	assert.Equal(t, "Back", search.Results[0].Gesture.Label)
	assert.Contains(t, search.Results[0].Fields, library.MatchFieldAction)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/gestures?action=nav/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var lookup actionLookupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lookup))
	require.Len(t, lookup.Results, 1)
	assert.Equal(t, "nav/back", lookup.Results[0].Binding.Action)

	// No match is an empty result set, not an error.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/gestures?q=zzz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &search))
	assert.Empty(t, search.Results)
}

func TestLibraryHandler_Stats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	lib := library.Library{
		SchemaVersion: library.SchemaVersion,
		Gestures: []library.GestureEntry{
			{Label: "Unbound", Tokens: "U", DirMode: "four", Enabled: true},
		},
	}
	require.NoError(t, library.Save(path, lib))

	h := NewLibraryHandler(path, nil)
	rec := httptest.NewRecorder()
	h.HandleStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Stats.ZeroBindings)
	assert.Equal(t, 0, resp.Stats.DuplicateTokens)
}

func TestHandleParse(t *testing.T) {
	rec := httptest.NewRecorder()
	body := []byte(`{"gesture": "square:0,0|10,0|10,10"}`)
	HandleParse(rec, httptest.NewRequest(http.MethodPost, "/api/parse", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp parseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "square", resp.Name)
	assert.Equal(t, 3, resp.PointCount)

	rec = httptest.NewRecorder()
	body = []byte(`{"gesture": "1,2|3,oops"}`)
	HandleParse(rec, httptest.NewRequest(http.MethodPost, "/api/parse", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, "invalid_number", resp.ErrorKind)
	assert.Equal(t, 1, resp.ErrorIndex)
}

func TestUsageHandler(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "usage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Usage().Record(&store.UsageEvent{
		OccurredAt:   time.Now(),
		GestureID:    "g1",
		GestureLabel: "Back",
		Action:       "nav/back",
		Distance:     0.1,
	}))

	h := NewUsageHandler(s)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/usage?limit=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp usageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "nav/back", resp.Events[0].Action)
	require.Len(t, resp.Counts, 1)
	assert.Equal(t, 1, resp.Counts[0].Count)

	// A future since cutoff excludes the event from the counts but not
	// from the recent list.
	future := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/usage?since="+future, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Events, 1)
	assert.Empty(t, resp.Counts)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/usage?limit=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/usage?since=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
