package gesture

import (
	"math"

	"github.com/ayusman/stroked/internal/geom"
)

// Direction is one of the eight compass directions a stroke segment can take.
type Direction int

// Compass directions, counter-clockwise from Right.
const (
	DirectionRight Direction = iota
	DirectionUpRight
	DirectionUp
	DirectionUpLeft
	DirectionLeft
	DirectionDownLeft
	DirectionDown
	DirectionDownRight
)

// String returns a short label for the direction.
func (d Direction) String() string {
	switch d {
	case DirectionRight:
		return "right"
	case DirectionUpRight:
		return "up-right"
	case DirectionUp:
		return "up"
	case DirectionUpLeft:
		return "up-left"
	case DirectionLeft:
		return "left"
	case DirectionDownLeft:
		return "down-left"
	case DirectionDown:
		return "down"
	case DirectionDownRight:
		return "down-right"
	default:
		return "unknown"
	}
}

// DirectionSequence reduces a polyline to its sequence of distinct compass
// directions. Segments shorter than minSegmentLength are skipped, and
// consecutive equal directions collapse into one entry.
func DirectionSequence(points []geom.Point, minSegmentLength float64) []Direction {
	var dirs []Direction
	for i := 1; i < len(points); i++ {
		dx := points[i].X - points[i-1].X
		dy := points[i].Y - points[i-1].Y
		length := math.Sqrt(dx*dx + dy*dy)
		if length < minSegmentLength {
			continue
		}
		// Screen coordinates grow downward, so negate dy for compass angles.
		direction := directionFromAngle(math.Atan2(-dy, dx))
		if len(dirs) == 0 || dirs[len(dirs)-1] != direction {
			dirs = append(dirs, direction)
		}
	}
	return dirs
}

// DirectionSimilarity scores two direction sequences in [0, 1] using an
// edit distance whose substitution cost grows with angular difference.
// Used for the live similarity preview, independent of the DTW path.
func DirectionSimilarity(a, b []Direction) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	distance := weightedEditDistance(a, b)
	maxLen := float64(len(a))
	if float64(len(b)) > maxLen {
		maxLen = float64(len(b))
	}
	return clamp(1-distance/maxLen, 0, 1)
}

// substitutionCost charges 1/4 per 45° of angular difference, so adjacent
// compass directions are cheap to swap and opposites cost a full edit.
func substitutionCost(a, b Direction) float64 {
	if a == b {
		return 0
	}
	diff := int(a) - int(b)
	if diff < 0 {
		diff = -diff
	}
	if 8-diff < diff {
		diff = 8 - diff
	}
	return float64(diff) / 4
}

func weightedEditDistance(a, b []Direction) float64 {
	prev := make([]float64, len(b)+1)
	curr := make([]float64, len(b)+1)
	for j := range prev {
		prev[j] = float64(j)
	}

	for i, av := range a {
		curr[0] = float64(i + 1)
		for j, bv := range b {
			cost := substitutionCost(av, bv)
			curr[j+1] = math.Min(prev[j+1]+1, math.Min(curr[j]+1, prev[j]+cost))
		}
		copy(prev, curr)
	}
	return prev[len(b)]
}

func directionFromAngle(angle float64) Direction {
	sector := int(math.Round(angle/(math.Pi/4))) % 8
	if sector < 0 {
		sector += 8
	}
	return Direction(sector)
}
