// Package tracker implements the real-time directional tokenizer for the
// Stroked gesture engine. It turns raw pointer samples into a compact
// direction-token string as the stroke happens, independent of the DTW
// matching path, so overlays can show immediate feedback.
package tracker

import (
	"github.com/ayusman/stroked/internal/geom"
)

// DirMode selects the tokenizer's direction alphabet.
type DirMode string

const (
	// DirModeFour classifies movement into left/right/up/down.
	DirModeFour DirMode = "four"
	// DirModeEight classifies movement into the eight compass octants.
	DirModeEight DirMode = "eight"
)

// Dir is a discrete movement direction.
type Dir int

// Movement directions. Diagonals are only produced in eight-direction mode.
const (
	dirNone Dir = iota
	DirLeft
	DirRight
	DirUp
	DirDown
	DirUpLeft
	DirUpRight
	DirDownLeft
	DirDownRight
)

// Token returns the single-character token for a direction in the given mode.
// Four mode uses {L,R,U,D}; eight mode uses numeric-keypad compass notation.
//
// The four-mode diagonal mappings are defined for completeness but are
// unreachable under the current classification: four mode never yields a
// diagonal direction.
func (d Dir) Token(mode DirMode) byte {
	switch mode {
	case DirModeFour:
		switch d {
		case DirLeft, DirUpLeft, DirDownLeft:
			return 'L'
		case DirRight, DirUpRight, DirDownRight:
			return 'R'
		case DirUp:
			return 'U'
		case DirDown:
			return 'D'
		}
	case DirModeEight:
		switch d {
		case DirDownLeft:
			return '1'
		case DirDown:
			return '2'
		case DirDownRight:
			return '3'
		case DirLeft:
			return '4'
		case DirRight:
			return '6'
		case DirUpLeft:
			return '7'
		case DirUp:
			return '8'
		case DirUpRight:
			return '9'
		}
	}
	return 0
}

// GestureTracker is the per-stroke streaming classifier. It is exclusively
// owned by the single in-flight stroke: created (or reset) on trigger press,
// fed points until release, then read via TokensString and ShouldClick.
//
// Feed is O(1) per point and allocation-light, safe to run on the thread
// that owns the OS pointer-hook callback.
type GestureTracker struct {
	dirMode        DirMode
	thresholdPx    float64
	longThresholdX float64
	longThresholdY float64
	maxTokens      int

	tokens     []byte
	anchorSet  bool
	anchor     geom.Point
	lastSet    bool
	last       geom.Point
	lastDir    Dir
	lastTimeMs int64
}

// New creates a tracker with the given mode and displacement thresholds.
func New(dirMode DirMode, thresholdPx, longThresholdX, longThresholdY float64, maxTokens int) *GestureTracker {
	return &GestureTracker{
		dirMode:        dirMode,
		thresholdPx:    thresholdPx,
		longThresholdX: longThresholdX,
		longThresholdY: longThresholdY,
		maxTokens:      maxTokens,
		tokens:         make([]byte, 0, maxTokens),
	}
}

// Feed processes one pointer sample. It returns the newly appended token and
// true, or 0 and false when the sample produced no new token.
func (t *GestureTracker) Feed(point geom.Point, atMs int64) (byte, bool) {
	t.lastTimeMs = atMs

	if !t.lastSet {
		t.lastSet = true
		t.last = point
		t.anchorSet = true
		t.anchor = point
		return 0, false
	}

	t.last = point

	if !t.anchorSet {
		t.anchorSet = true
		t.anchor = point
		return 0, false
	}

	dx := point.X - t.anchor.X
	dy := point.Y - t.anchor.Y
	if dx*dx+dy*dy < t.thresholdPx*t.thresholdPx {
		return 0, false
	}

	dir := directionFromDelta(dx, dy, t.dirMode)
	if dir == dirNone {
		return 0, false
	}

	if t.lastDir == dir {
		// Continuing the same way: only re-anchor once the displacement
		// crosses the long threshold, so a long straight stroke keeps
		// resetting its reference point without spamming duplicates.
		if t.shouldRepeat(dir, dx, dy) {
			return t.emit(dir, point)
		}
		return 0, false
	}

	return t.emit(dir, point)
}

// Tokens returns the recorded token characters.
func (t *GestureTracker) Tokens() []byte {
	return t.tokens
}

// TokensString returns the recorded tokens as a string.
func (t *GestureTracker) TokensString() string {
	return string(t.tokens)
}

// ShouldClick reports whether the stroke recorded no tokens at all. A
// press/release with negligible movement should be treated as a plain click
// by the caller, not a gesture.
func (t *GestureTracker) ShouldClick() bool {
	return len(t.tokens) == 0
}

// Reset clears all state so the tracker can be reused for the next stroke.
func (t *GestureTracker) Reset() {
	t.tokens = t.tokens[:0]
	t.anchorSet = false
	t.lastSet = false
	t.lastDir = dirNone
	t.lastTimeMs = 0
}

// emit re-anchors at the current point and appends the direction's token.
// De-duplication is structural: this is the single insertion point, and a
// token equal to the previous one is never appended. Once the token buffer
// is full, further emissions are silently dropped.
func (t *GestureTracker) emit(dir Dir, point geom.Point) (byte, bool) {
	t.anchorSet = true
	t.anchor = point
	t.lastDir = dir

	token := dir.Token(t.dirMode)
	if len(t.tokens) > 0 && t.tokens[len(t.tokens)-1] == token {
		return 0, false
	}
	if len(t.tokens) < t.maxTokens {
		t.tokens = append(t.tokens, token)
		return token, true
	}
	return 0, false
}

// shouldRepeat reports whether an unchanged direction has travelled far
// enough to re-anchor. Diagonal directions require both axes to pass.
func (t *GestureTracker) shouldRepeat(dir Dir, dx, dy float64) bool {
	absX := dx
	if absX < 0 {
		absX = -absX
	}
	absY := dy
	if absY < 0 {
		absY = -absY
	}

	switch dir {
	case DirLeft, DirRight:
		return absX >= t.longThresholdX
	case DirUp, DirDown:
		return absY >= t.longThresholdY
	case DirUpLeft, DirUpRight, DirDownLeft, DirDownRight:
		return absX >= t.longThresholdX && absY >= t.longThresholdY
	}
	return false
}

// directionFromDelta classifies a displacement into a direction.
//
// Four mode picks the dominant axis and never produces diagonals. Eight mode
// handles the pure-horizontal and pure-vertical cases explicitly before the
// general quadrant test.
func directionFromDelta(dx, dy float64, mode DirMode) Dir {
	absX := dx
	if absX < 0 {
		absX = -absX
	}
	absY := dy
	if absY < 0 {
		absY = -absY
	}
	if absX == 0 && absY == 0 {
		return dirNone
	}

	isRight := dx > 0
	isDown := dy > 0

	if mode == DirModeFour {
		if absX >= absY {
			if isRight {
				return DirRight
			}
			return DirLeft
		}
		if isDown {
			return DirDown
		}
		return DirUp
	}

	if absX == 0 {
		if isDown {
			return DirDown
		}
		return DirUp
	}
	if absY == 0 {
		if isRight {
			return DirRight
		}
		return DirLeft
	}

	switch {
	case isRight && isDown:
		return DirDownRight
	case isRight:
		return DirUpRight
	case isDown:
		return DirDownLeft
	default:
		return DirUpLeft
	}
}
