package library

import (
	"sort"
	"strings"

	"github.com/ayusman/stroked/internal/tracker"
)

// ConflictKind classifies how two gestures collide.
type ConflictKind int

const (
	// ConflictDuplicateTokens means two enabled gestures share the exact
	// same tokens and direction mode, making shortcut matching ambiguous.
	ConflictDuplicateTokens ConflictKind = iota
	// ConflictPrefixOverlap means one enabled gesture's tokens are a strict
	// prefix of another's, so the shorter one can shadow the longer one.
	ConflictPrefixOverlap
)

// Conflict is a group of gestures that collide on the same token key.
type Conflict struct {
	Tokens   string
	DirMode  tracker.DirMode
	Kind     ConflictKind
	Gestures []GestureEntry
}

// FindConflicts reports duplicate-token and prefix-overlap groups among the
// enabled gestures. Groups and their members are sorted deterministically so
// the settings UI renders a stable list.
func (l *Library) FindConflicts() []Conflict {
	var enabled []GestureEntry
	for _, g := range l.Gestures {
		if g.Enabled {
			enabled = append(enabled, g)
		}
	}

	type key struct {
		dirMode tracker.DirMode
		tokens  string
	}

	duplicates := make(map[key][]GestureEntry)
	for _, g := range enabled {
		k := key{dirMode: g.DirMode, tokens: g.Tokens}
		duplicates[k] = append(duplicates[k], g)
	}

	var conflicts []Conflict
	for k, grouped := range duplicates {
		if len(grouped) < 2 {
			continue
		}
		sort.Slice(grouped, func(i, j int) bool { return grouped[i].Label < grouped[j].Label })
		conflicts = append(conflicts, Conflict{
			Tokens:   k.tokens,
			DirMode:  k.dirMode,
			Kind:     ConflictDuplicateTokens,
			Gestures: grouped,
		})
	}

	prefixGroups := make(map[key]map[string]GestureEntry)
	for _, g := range enabled {
		if strings.TrimSpace(g.Tokens) == "" {
			continue
		}
		for _, other := range enabled {
			if g.DirMode != other.DirMode || g.Tokens == other.Tokens {
				continue
			}
			if strings.HasPrefix(other.Tokens, g.Tokens) {
				k := key{dirMode: g.DirMode, tokens: g.Tokens}
				if prefixGroups[k] == nil {
					prefixGroups[k] = make(map[string]GestureEntry)
				}
				prefixGroups[k][g.Label+"\x00"+g.Tokens] = g
				prefixGroups[k][other.Label+"\x00"+other.Tokens] = other
			}
		}
	}

	for k, grouped := range prefixGroups {
		if len(grouped) < 2 {
			continue
		}
		gestures := make([]GestureEntry, 0, len(grouped))
		for _, g := range grouped {
			gestures = append(gestures, g)
		}
		sort.Slice(gestures, func(i, j int) bool { return gestures[i].Label < gestures[j].Label })
		conflicts = append(conflicts, Conflict{
			Tokens:   k.tokens,
			DirMode:  k.dirMode,
			Kind:     ConflictPrefixOverlap,
			Gestures: gestures,
		})
	}

	sort.Slice(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.Tokens != b.Tokens {
			return a.Tokens < b.Tokens
		}
		if a.DirMode != b.DirMode {
			return a.DirMode < b.DirMode
		}
		return a.Kind < b.Kind
	})
	return conflicts
}
