// Package profile provides the application-scoped gesture database: per-app
// profiles with window match rules, DTW-matched bindings, and the resolution
// algorithm that picks the active profile and best binding per stroke.
package profile

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// SchemaVersion is the compiled-in database file schema version.
const SchemaVersion = 1

// RuleField selects which window attribute a rule inspects.
type RuleField string

// Window attributes a rule can match on.
const (
	RuleFieldExe   RuleField = "exe"
	RuleFieldClass RuleField = "class"
	RuleFieldTitle RuleField = "title"
)

// RuleMatcher selects the string predicate a rule applies.
type RuleMatcher string

// Rule predicates. Contains and StartsWith are case-sensitive.
const (
	RuleMatcherContains   RuleMatcher = "contains"
	RuleMatcherStartsWith RuleMatcher = "starts_with"
	RuleMatcherRegex      RuleMatcher = "regex"
)

// Rule is one predicate over the foreground window. A profile's rules are
// ANDed: the profile matches only if every rule matches.
type Rule struct {
	Field   RuleField   `json:"field"`
	Matcher RuleMatcher `json:"matcher"`
	Value   string      `json:"value"`
}

// Binding maps a gesture definition (by id) to an action within one profile.
type Binding struct {
	GestureID string `json:"gesture_id"`
	Label     string `json:"label,omitempty"`
	Action    string `json:"action"`
	Args      string `json:"args,omitempty"`
	Priority  int    `json:"priority"`
	Enabled   bool   `json:"enabled"`
}

// Profile is an application-scoped binding set. Exactly one profile is
// active per gesture event, chosen by SelectProfile.
type Profile struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Enabled  bool      `json:"enabled"`
	Priority int       `json:"priority"`
	Rules    []Rule    `json:"rules"`
	Bindings []Binding `json:"bindings"`
}

// DB is the persisted root of the profile database. Gestures lists the known
// gesture ids; Bindings maps each id to its serialized gesture definition.
type DB struct {
	SchemaVersion int               `json:"schema_version"`
	Gestures      []string          `json:"gestures"`
	Profiles      []Profile         `json:"profiles"`
	Bindings      map[string]string `json:"bindings"`
}

// Default returns an empty database at the current schema version.
func Default() DB {
	return DB{
		SchemaVersion: SchemaVersion,
		Bindings:      make(map[string]string),
	}
}

// WindowInfo is a read-only snapshot of the window that had focus when the
// gesture started. Empty fields mean the attribute is unknown; no rule can
// match on an absent field.
type WindowInfo struct {
	Exe   string `json:"exe,omitempty"`
	Class string `json:"class,omitempty"`
	Title string `json:"title,omitempty"`
}

// regexCacheSize bounds the compiled-pattern cache. Rule sets are small; the
// cache mainly saves recompiling the same patterns on every stroke.
const regexCacheSize = 128

type compiledPattern struct {
	re *regexp.Regexp // nil when the pattern failed to compile
}

var regexCache, _ = lru.New[string, compiledPattern](regexCacheSize)

// compileRule returns the compiled regex for a pattern, caching both
// successes and failures. An invalid pattern never matches and never panics.
func compileRule(pattern string) *regexp.Regexp {
	if cached, ok := regexCache.Get(pattern); ok {
		return cached.re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		re = nil
	}
	regexCache.Add(pattern, compiledPattern{re: re})
	return re
}

// Matches reports whether the rule matches the given window snapshot.
func (r Rule) Matches(window WindowInfo) bool {
	var target string
	switch r.Field {
	case RuleFieldExe:
		target = window.Exe
	case RuleFieldClass:
		target = window.Class
	case RuleFieldTitle:
		target = window.Title
	default:
		return false
	}
	if target == "" {
		return false
	}

	switch r.Matcher {
	case RuleMatcherContains:
		return strings.Contains(target, r.Value)
	case RuleMatcherStartsWith:
		return strings.HasPrefix(target, r.Value)
	case RuleMatcherRegex:
		re := compileRule(r.Value)
		return re != nil && re.MatchString(target)
	default:
		return false
	}
}

// Matches reports whether an enabled profile's rules all match the window.
// A profile with no rules matches any window.
func (p *Profile) Matches(window WindowInfo) bool {
	if !p.Enabled {
		return false
	}
	for _, rule := range p.Rules {
		if !rule.Matches(window) {
			return false
		}
	}
	return true
}
