// Package runtime orchestrates a gesture from raw pointer events to a
// dispatched action: it buffers the stroke, tokenizes directions, matches
// the shape against the active profile's gesture templates, resolves the
// binding, and hands the action to the dispatcher.
package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/stroked/internal/config"
	"github.com/ayusman/stroked/internal/geom"
	"github.com/ayusman/stroked/internal/gesture"
	"github.com/ayusman/stroked/internal/library"
	"github.com/ayusman/stroked/internal/profile"
	"github.com/ayusman/stroked/internal/tracker"
)

// Outcome classifies what happened to a completed stroke.
type Outcome int

const (
	// OutcomePassthrough means the input was not a gesture; the original
	// click should be delivered to the application.
	OutcomePassthrough Outcome = iota
	// OutcomeNoMatch means a gesture was drawn but nothing matched it.
	OutcomeNoMatch
	// OutcomeMatched means a binding was resolved and dispatched.
	OutcomeMatched
)

// Result describes the resolution of one completed stroke.
type Result struct {
	Outcome      Outcome `json:"outcome"`
	ProfileID    string  `json:"profile_id,omitempty"`
	GestureID    string  `json:"gesture_id,omitempty"`
	GestureLabel string  `json:"gesture_label,omitempty"`
	Action       string  `json:"action,omitempty"`
	Distance     float64 `json:"distance,omitempty"`
	Tokens       string  `json:"tokens,omitempty"`
}

// WindowInspector reports the window that had focus when the gesture began.
type WindowInspector interface {
	ActiveWindow() profile.WindowInfo
}

// Dispatcher executes the action bound to a matched gesture.
type Dispatcher interface {
	Dispatch(ctx context.Context, action, args string, info DispatchInfo) error
}

// DispatchInfo carries gesture context to the dispatcher.
type DispatchInfo struct {
	GestureID string
	Label     string
	Tokens    string
	Distance  float64
}

// OverlaySink receives live stroke events for on-screen feedback. All
// methods must be non-blocking; a slow sink must drop events, not stall
// pointer handling.
type OverlaySink interface {
	StrokeStarted(p geom.Point)
	StrokeMoved(p geom.Point, token string)
	StrokeEnded(result Result)
}

// UsageRecorder persists a dispatched gesture for history and reporting.
type UsageRecorder interface {
	RecordDispatch(result Result, at time.Time)
}

// Engine drives stroke capture and resolution. Pointer event methods
// (StrokeBegin, StrokePoint, StrokeEnd, Cancel) are called from the input
// hook and must stay cheap; configuration reads go through snapshots.
type Engine struct {
	cfg      config.Config
	profiles *profile.Handle
	windows  WindowInspector
	dispatch Dispatcher
	overlay  OverlaySink
	usage    UsageRecorder

	mu        sync.Mutex
	lib       *library.Library
	enabled   bool
	active    bool
	points    []geom.Point
	startMs   int64
	window    profile.WindowInfo
	tokenizer *tracker.GestureTracker
	last      Result

	templates templateCache
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithOverlay streams stroke events to an overlay sink.
func WithOverlay(sink OverlaySink) Option {
	return func(e *Engine) { e.overlay = sink }
}

// WithUsageRecorder persists dispatched gestures.
func WithUsageRecorder(rec UsageRecorder) Option {
	return func(e *Engine) { e.usage = rec }
}

// WithLibrary installs the token gesture library used as a fallback when no
// shape template matches.
func WithLibrary(lib *library.Library) Option {
	return func(e *Engine) { e.lib = lib }
}

// New creates an engine. The profile handle supplies the live database
// snapshot; windows and dispatch are required collaborators.
func New(cfg config.Config, profiles *profile.Handle, windows WindowInspector, dispatch Dispatcher, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		profiles: profiles,
		windows:  windows,
		dispatch: dispatch,
		enabled:  true,
		tokenizer: tracker.New(
			cfg.Tokens.DirMode,
			cfg.Tokens.ThresholdPx,
			cfg.Tokens.LongThresholdXPx,
			cfg.Tokens.LongThresholdYPx,
			cfg.Tokens.MaxTokens,
		),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetEnabled enables or disables gesture recognition. While disabled, every
// stroke resolves to passthrough.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
}

// IsEnabled reports whether gesture recognition is active.
func (e *Engine) IsEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// LastResult returns the resolution of the most recent completed stroke.
func (e *Engine) LastResult() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// ReplaceLibrary swaps the token gesture library, typically after an edit
// through the control API.
func (e *Engine) ReplaceLibrary(lib *library.Library) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lib = lib
}

// StrokeBegin starts a new stroke at the given position. The foreground
// window is sampled once here: the gesture belongs to the window it started
// over, even if focus changes mid-stroke.
func (e *Engine) StrokeBegin(p geom.Point, atMs int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.active = true
	e.startMs = atMs
	e.points = e.points[:0]
	e.points = append(e.points, p)
	e.window = e.windows.ActiveWindow()
	e.tokenizer.Reset()
	e.tokenizer.Feed(p, atMs)

	if e.overlay != nil {
		e.overlay.StrokeStarted(p)
	}
}

// StrokePoint appends a pointer position to the active stroke. Points closer
// than the configured minimum to the previous one are dropped, and the
// buffer is capped so a runaway stroke cannot grow without bound.
func (e *Engine) StrokePoint(p geom.Point, atMs int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return
	}

	if len(e.points) > 0 {
		if geom.Distance(e.points[len(e.points)-1], p) < e.cfg.Capture.MinPointDistancePx {
			return
		}
	}
	if len(e.points) < e.cfg.Capture.MaxPoints {
		e.points = append(e.points, p)
	}

	var tokenStr string
	if token, ok := e.tokenizer.Feed(p, atMs); ok {
		tokenStr = string(token)
	}
	if e.overlay != nil {
		e.overlay.StrokeMoved(p, tokenStr)
	}
}

// Cancel discards the active stroke without resolving it.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = false
	e.points = e.points[:0]
	e.tokenizer.Reset()
}

// pendingDispatch is work resolved under the engine lock but performed only
// after it is released. A plugin can block up to its executor timeout, and
// the pointer event methods must never wait on that.
type pendingDispatch struct {
	args          string
	logTokenUsage bool
	bindingIdx    int
}

// StrokeEnd completes the active stroke and resolves it. The returned
// Result tells the input hook what to do with the suppressed trigger
// button: passthrough means replay the click. Matching runs under the
// engine lock; the dispatch itself runs after the lock is released so the
// next stroke is never stalled by a slow action.
func (e *Engine) StrokeEnd(atMs int64) Result {
	e.mu.Lock()

	if !e.active {
		e.mu.Unlock()
		return Result{Outcome: OutcomePassthrough}
	}
	e.active = false

	result, pending := e.resolve(atMs)
	e.last = result
	e.mu.Unlock()

	if result.Outcome == OutcomeMatched {
		e.dispatchResult(result, pending.args)
		if pending.logTokenUsage {
			e.logTokenUsage(result, pending.bindingIdx)
		}
	}
	if e.overlay != nil {
		e.overlay.StrokeEnded(result)
	}
	return result
}

func (e *Engine) resolve(atMs int64) (Result, pendingDispatch) {
	tokens := e.tokenizer.TokensString()

	if !e.enabled {
		return Result{Outcome: OutcomePassthrough, Tokens: tokens}, pendingDispatch{}
	}

	// A stroke the user forgot about is not a gesture.
	if e.cfg.Capture.MaxStrokeDurationMs > 0 && atMs-e.startMs > int64(e.cfg.Capture.MaxStrokeDurationMs) {
		logrus.WithField("duration_ms", atMs-e.startMs).Debug("stroke exceeded max duration, discarded")
		return Result{Outcome: OutcomeNoMatch, Tokens: tokens}, pendingDispatch{}
	}

	// No directional movement at all is a plain click.
	if e.tokenizer.ShouldClick() {
		return Result{Outcome: OutcomePassthrough}, pendingDispatch{}
	}

	if result, pending, ok := e.matchShape(tokens); ok {
		return result, pending
	}
	if result, pending, ok := e.matchTokens(tokens); ok {
		return result, pending
	}

	logrus.WithField("tokens", tokens).Debug("gesture did not match anything")
	return Result{Outcome: OutcomeNoMatch, Tokens: tokens}, pendingDispatch{}
}

// matchShape runs DTW matching against the active profile's templates and
// resolves the best binding within the distance threshold.
func (e *Engine) matchShape(tokens string) (Result, pendingDispatch, bool) {
	snapshot := e.profiles.Snapshot()
	templates := e.templates.forSnapshot(snapshot, e.cfg.Matching)
	if len(templates) == 0 {
		return Result{}, pendingDispatch{}, false
	}

	vectors, err := e.strokeVectors()
	if err != nil {
		logrus.WithError(err).Debug("stroke not usable for shape matching")
		return Result{}, pendingDispatch{}, false
	}

	distances := make(map[string]float64, len(templates))
	for id, tmpl := range templates {
		distances[id] = gesture.DTWDistance(vectors, tmpl)
	}

	active := profile.SelectProfile(snapshot, e.window)
	if active == nil {
		return Result{}, pendingDispatch{}, false
	}
	match := profile.SelectBinding(active, distances, e.cfg.Matching.MaxMatchDistance)
	if match == nil {
		return Result{}, pendingDispatch{}, false
	}

	result := Result{
		Outcome:      OutcomeMatched,
		ProfileID:    active.ID,
		GestureID:    match.Binding.GestureID,
		GestureLabel: match.Binding.Label,
		Action:       match.Binding.Action,
		Distance:     match.Distance,
		Tokens:       tokens,
	}
	return result, pendingDispatch{args: match.Binding.Args}, true
}

// matchTokens falls back to exact token matching against the gesture
// library when shape matching found nothing.
func (e *Engine) matchTokens(tokens string) (Result, pendingDispatch, bool) {
	if e.lib == nil || tokens == "" {
		return Result{}, pendingDispatch{}, false
	}

	entry, binding, idx := e.lib.MatchBinding(tokens, e.cfg.Tokens.DirMode)
	if entry == nil {
		return Result{}, pendingDispatch{}, false
	}

	result := Result{
		Outcome:      OutcomeMatched,
		GestureLabel: entry.Label,
		Action:       binding.Action,
		Tokens:       tokens,
	}
	return result, pendingDispatch{args: binding.Args, logTokenUsage: true, bindingIdx: idx}, true
}

// logTokenUsage appends a token-library match to the JSON usage ring.
func (e *Engine) logTokenUsage(result Result, bindingIdx int) {
	if err := library.RecordUsage(e.cfg.Paths.UsageLog, library.UsageEntry{
		Timestamp:    time.Now().Unix(),
		GestureLabel: result.GestureLabel,
		Tokens:       result.Tokens,
		DirMode:      e.cfg.Tokens.DirMode,
		BindingIdx:   bindingIdx,
	}); err != nil {
		logrus.WithError(err).Warn("failed to record token gesture usage")
	}
}

func (e *Engine) dispatchResult(result Result, args string) {
	info := DispatchInfo{
		GestureID: result.GestureID,
		Label:     result.GestureLabel,
		Tokens:    result.Tokens,
		Distance:  result.Distance,
	}
	if err := e.dispatch.Dispatch(context.Background(), result.Action, args, info); err != nil {
		logrus.WithError(err).WithField("action", result.Action).Warn("gesture dispatch failed")
		return
	}
	if e.usage != nil {
		e.usage.RecordDispatch(result, time.Now())
	}
	logrus.WithFields(logrus.Fields{
		"gesture":  result.GestureLabel,
		"action":   result.Action,
		"distance": result.Distance,
	}).Info("gesture dispatched")
}

// strokeVectors preprocesses the buffered stroke into unit direction
// vectors for DTW matching. Resampling always runs; DTW needs comparable
// sequence lengths. Smoothing honors the config toggle.
func (e *Engine) strokeVectors() ([]geom.Vector, error) {
	cfg := gesture.PreprocessConfig{
		SampleCount:     e.cfg.Matching.SampleCount,
		SmoothingWindow: e.cfg.Matching.SmoothingWindow,
		MinTrackLength:  e.cfg.Matching.MinTrackLength,
	}
	if !e.cfg.Matching.Smoothing {
		cfg.SmoothingWindow = 1
	}
	return gesture.PreprocessPoints(e.points, cfg)
}
