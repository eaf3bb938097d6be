// Package library holds the simple, global token-gesture list: named
// gestures identified by their direction-token string, each with its own
// binding list. It is the counterpart to the profile-scoped DTW database in
// the profile package.
package library

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ayusman/stroked/internal/tracker"
)

// SchemaVersion is the compiled-in library file schema version.
const SchemaVersion = 1

// BindingKind identifies how a binding's action is interpreted.
type BindingKind string

const (
	// BindingKindExecute dispatches the action string to the dispatcher.
	BindingKindExecute BindingKind = "execute"
)

// BindingEntry maps a recognized gesture to a dispatchable action.
type BindingEntry struct {
	Label   string      `json:"label"`
	Kind    BindingKind `json:"kind"`
	Action  string      `json:"action"`
	Args    string      `json:"args,omitempty"`
	Enabled bool        `json:"enabled"`
}

// GestureEntry is a named, storable gesture in the token library.
//
// Stroke holds normalized preview points as signed 16-bit fixed-point
// coordinates in [-32767, 32767], where +/-32767 maps to +/-1.0 in
// normalized space. The UI scales these into the preview rectangle.
type GestureEntry struct {
	Label    string          `json:"label"`
	Tokens   string          `json:"tokens"`
	DirMode  tracker.DirMode `json:"dir_mode"`
	Stroke   [][2]int16      `json:"stroke,omitempty"`
	Enabled  bool            `json:"enabled"`
	Bindings []BindingEntry  `json:"bindings"`
}

// Library is the persisted root of the token-gesture list.
type Library struct {
	SchemaVersion int            `json:"schema_version"`
	Gestures      []GestureEntry `json:"gestures"`
}

// Default returns an empty library at the current schema version.
func Default() Library {
	return Library{SchemaVersion: SchemaVersion}
}

// Load reads a library file. A missing, empty or whitespace-only file yields
// the default empty library; a schema version mismatch is an error.
func Load(path string) (Library, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Library{}, fmt.Errorf("read library: %w", err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return Default(), nil
	}

	var lib Library
	if err := json.Unmarshal(content, &lib); err != nil {
		return Library{}, fmt.Errorf("parse library: %w", err)
	}
	if lib.SchemaVersion != SchemaVersion {
		return Library{}, fmt.Errorf("unsupported library schema version %d", lib.SchemaVersion)
	}
	return lib, nil
}

// Save writes the library as pretty-printed JSON, stamping the current
// schema version.
func Save(path string, lib Library) error {
	lib.SchemaVersion = SchemaVersion
	data, err := json.MarshalIndent(lib, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize library: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write library: %w", err)
	}
	return nil
}

// MatchBinding finds the first enabled binding of the enabled gesture whose
// tokens and direction mode match exactly. The second return value is the
// binding's index within the gesture's binding list.
func (l *Library) MatchBinding(tokens string, dirMode tracker.DirMode) (*GestureEntry, *BindingEntry, int) {
	if tokens == "" {
		return nil, nil, 0
	}
	for gi := range l.Gestures {
		gesture := &l.Gestures[gi]
		if !gesture.Enabled || gesture.DirMode != dirMode || gesture.Tokens != tokens {
			continue
		}
		for bi := range gesture.Bindings {
			if gesture.Bindings[bi].Enabled {
				return gesture, &gesture.Bindings[bi], bi
			}
		}
	}
	return nil, nil, 0
}

// MatchType ranks how a candidate gesture matched the live token prefix.
type MatchType int

// Candidate match kinds, strongest first.
const (
	MatchExact MatchType = iota
	MatchPrefix
	MatchFuzzy
)

// Candidate is a possible completion of the in-flight token string, used for
// overlay hints while the stroke is still being drawn.
type Candidate struct {
	GestureLabel string
	Tokens       string
	Bindings     []BindingEntry
	MatchType    MatchType
	Score        float64
}

func (m MatchType) rank() int {
	switch m {
	case MatchExact:
		return 3
	case MatchPrefix:
		return 2
	default:
		return 1
	}
}

// CandidateMatches returns the enabled gestures that could still match the
// given token prefix, ranked exact before prefix before fuzzy, higher scores
// first, with label and tokens as deterministic tie-breaks.
func (l *Library) CandidateMatches(tokensPrefix string, dirMode tracker.DirMode) []Candidate {
	if tokensPrefix == "" {
		return nil
	}

	var candidates []Candidate
	for gi := range l.Gestures {
		gesture := &l.Gestures[gi]
		if !gesture.Enabled || gesture.DirMode != dirMode {
			continue
		}

		var bindings []BindingEntry
		for _, b := range gesture.Bindings {
			if b.Enabled {
				bindings = append(bindings, b)
			}
		}
		if len(bindings) == 0 {
			continue
		}

		switch {
		case gesture.Tokens == tokensPrefix:
			candidates = append(candidates, Candidate{
				GestureLabel: gesture.Label,
				Tokens:       gesture.Tokens,
				Bindings:     bindings,
				MatchType:    MatchExact,
				Score:        1,
			})
		case strings.HasPrefix(gesture.Tokens, tokensPrefix):
			candidates = append(candidates, Candidate{
				GestureLabel: gesture.Label,
				Tokens:       gesture.Tokens,
				Bindings:     bindings,
				MatchType:    MatchPrefix,
				Score:        float64(len(tokensPrefix)) / float64(len(gesture.Tokens)),
			})
		default:
			if score, ok := fuzzyScore(tokensPrefix, gesture.Tokens); ok {
				candidates = append(candidates, Candidate{
					GestureLabel: gesture.Label,
					Tokens:       gesture.Tokens,
					Bindings:     bindings,
					MatchType:    MatchFuzzy,
					Score:        score,
				})
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.MatchType.rank() != b.MatchType.rank() {
			return a.MatchType.rank() > b.MatchType.rank()
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.GestureLabel != b.GestureLabel {
			return a.GestureLabel < b.GestureLabel
		}
		return a.Tokens < b.Tokens
	})
	return candidates
}

// BindingMatchField names a field that matched a binding search query.
type BindingMatchField string

// Searchable binding fields, in the order they are reported.
const (
	MatchFieldGestureLabel BindingMatchField = "gesture_label"
	MatchFieldTokens       BindingMatchField = "tokens"
	MatchFieldBindingLabel BindingMatchField = "binding_label"
	MatchFieldAction       BindingMatchField = "action"
	MatchFieldArgs         BindingMatchField = "args"
)

// BindingSearchResult is one enabled binding that matched a search query,
// with the fields the query was found in.
type BindingSearchResult struct {
	Gesture GestureEntry        `json:"gesture"`
	Binding BindingEntry        `json:"binding"`
	Fields  []BindingMatchField `json:"fields"`
}

// SearchBindings finds enabled bindings whose gesture label, tokens, binding
// label, action or args contain the query, case-insensitively. Results are
// sorted by gesture label, then tokens, then binding label.
func (l *Library) SearchBindings(query string) []BindingSearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	query = strings.ToLower(query)

	var results []BindingSearchResult
	for gi := range l.Gestures {
		gesture := &l.Gestures[gi]
		if !gesture.Enabled {
			continue
		}

		var gestureFields []BindingMatchField
		if strings.Contains(strings.ToLower(gesture.Label), query) {
			gestureFields = append(gestureFields, MatchFieldGestureLabel)
		}
		if strings.Contains(strings.ToLower(gesture.Tokens), query) {
			gestureFields = append(gestureFields, MatchFieldTokens)
		}

		for bi := range gesture.Bindings {
			binding := &gesture.Bindings[bi]
			if !binding.Enabled {
				continue
			}

			fields := append([]BindingMatchField(nil), gestureFields...)
			if strings.Contains(strings.ToLower(binding.Label), query) {
				fields = append(fields, MatchFieldBindingLabel)
			}
			if strings.Contains(strings.ToLower(binding.Action), query) {
				fields = append(fields, MatchFieldAction)
			}
			if binding.Args != "" && strings.Contains(strings.ToLower(binding.Args), query) {
				fields = append(fields, MatchFieldArgs)
			}

			if len(fields) > 0 {
				results = append(results, BindingSearchResult{
					Gesture: *gesture,
					Binding: *binding,
					Fields:  fields,
				})
			}
		}
	}

	sortBindingResults(results, func(r BindingSearchResult) (GestureEntry, BindingEntry) {
		return r.Gesture, r.Binding
	})
	return results
}

// ActionBinding pairs a gesture with one of its bindings, for action lookups.
type ActionBinding struct {
	Gesture GestureEntry `json:"gesture"`
	Binding BindingEntry `json:"binding"`
}

// FindByAction returns the enabled bindings whose action starts with the
// given prefix, case-insensitively. Results are sorted by gesture label,
// then tokens, then binding label.
func (l *Library) FindByAction(actionPrefix string) []ActionBinding {
	actionPrefix = strings.TrimSpace(actionPrefix)
	if actionPrefix == "" {
		return nil
	}
	actionPrefix = strings.ToLower(actionPrefix)

	var results []ActionBinding
	for gi := range l.Gestures {
		gesture := &l.Gestures[gi]
		if !gesture.Enabled {
			continue
		}
		for bi := range gesture.Bindings {
			binding := &gesture.Bindings[bi]
			if !binding.Enabled {
				continue
			}
			if strings.HasPrefix(strings.ToLower(binding.Action), actionPrefix) {
				results = append(results, ActionBinding{Gesture: *gesture, Binding: *binding})
			}
		}
	}

	sortBindingResults(results, func(r ActionBinding) (GestureEntry, BindingEntry) {
		return r.Gesture, r.Binding
	})
	return results
}

// sortBindingResults orders binding lookups by gesture label, tokens, then
// binding label.
func sortBindingResults[T any](results []T, key func(T) (GestureEntry, BindingEntry)) {
	sort.SliceStable(results, func(i, j int) bool {
		gi, bi := key(results[i])
		gj, bj := key(results[j])
		if gi.Label != gj.Label {
			return gi.Label < gj.Label
		}
		if gi.Tokens != gj.Tokens {
			return gi.Tokens < gj.Tokens
		}
		return bi.Label < bj.Label
	})
}

// fuzzyScore scores an in-order subsequence match of needle inside haystack.
// Returns false when no character matched at all.
func fuzzyScore(needle, haystack string) (float64, bool) {
	matched := 0
	start := 0
	for i := 0; i < len(needle); i++ {
		idx := strings.IndexByte(haystack[start:], needle[i])
		if idx < 0 {
			continue
		}
		matched++
		start += idx + 1
	}
	if matched == 0 {
		return 0, false
	}
	return float64(matched) / float64(len(haystack)), true
}
