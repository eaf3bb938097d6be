package gesture

import (
	"errors"
	"fmt"

	"github.com/ayusman/stroked/internal/geom"
)

// Preprocessing errors. A failed preprocess means "this stroke cannot be
// matched" and callers should treat it like a non-match, not a crash.
var (
	// ErrTooFewPoints is returned when fewer than 2 points were captured.
	ErrTooFewPoints = errors.New("too few points")
	// ErrInvalidSampleCount is returned when the configured sample count is below 2.
	ErrInvalidSampleCount = errors.New("invalid sample count")
)

// TooShortError is returned when the stroke's total arc length is below the
// configured minimum. It gates accidental clicks and jitter from ever
// reaching the matcher.
type TooShortError struct {
	Length    float64
	MinLength float64
}

// Error implements the error interface.
func (e *TooShortError) Error() string {
	return fmt.Sprintf("track too short: %.2f < %.2f", e.Length, e.MinLength)
}

// PreprocessConfig holds the immutable per-match preprocessing configuration.
type PreprocessConfig struct {
	SampleCount     int
	SmoothingWindow int
	MinTrackLength  float64
}

// Tokenizer-tolerance tuning for PreprocessForDirections.
const (
	directionSampleCount     = 64
	directionSmoothingWindow = 5
)

// DirectionOptions controls which stages PreprocessForDirections applies.
type DirectionOptions struct {
	Sampling  bool
	Smoothing bool
}

// PreprocessPoints runs the full preprocessing pipeline and converts a raw
// stroke into a sequence of unit direction vectors:
//
//  1. Resample to exactly SampleCount points at uniform arc-length spacing,
//     decoupling match quality from input sampling rate and speed.
//  2. Smooth with a centered moving average of width SmoothingWindow to
//     suppress hand-tremor jitter without biasing the path direction.
//  3. Convert consecutive smoothed points to unit vectors.
func PreprocessPoints(points []geom.Point, config PreprocessConfig) ([]geom.Vector, error) {
	if len(points) < 2 {
		return nil, ErrTooFewPoints
	}
	if config.SampleCount < 2 {
		return nil, ErrInvalidSampleCount
	}

	length := geom.TrackLength(points)
	if length < config.MinTrackLength {
		return nil, &TooShortError{Length: length, MinLength: config.MinTrackLength}
	}

	resampled := ResamplePoints(points, config.SampleCount)
	smoothed := SmoothPoints(resampled, config.SmoothingWindow)
	return PointsToVectors(smoothed), nil
}

// PreprocessForDirections runs the same pipeline tuned for the directional
// tokenizer's tolerance settings. Running it on jittery zig-zag input reduces
// the number of distinct direction segments compared to the raw points.
func PreprocessForDirections(points []geom.Point, opts DirectionOptions) []geom.Point {
	if len(points) < 2 || (!opts.Sampling && !opts.Smoothing) {
		return points
	}

	processed := points
	if opts.Sampling {
		sampleCount := directionSampleCount
		if len(points) < sampleCount {
			sampleCount = len(points)
		}
		if sampleCount < 2 {
			sampleCount = 2
		}
		processed = ResamplePoints(points, sampleCount)
	}

	if opts.Smoothing {
		processed = SmoothPoints(processed, directionSmoothingWindow)
	}

	return processed
}

// ResamplePoints resamples a polyline to exactly sampleCount points at
// uniform arc-length spacing, walking the original polyline and linearly
// interpolating whenever the accumulated distance crosses a spacing boundary.
func ResamplePoints(points []geom.Point, sampleCount int) []geom.Point {
	totalLength := geom.TrackLength(points)
	if totalLength == 0 {
		// Degenerate stroke: every sample lands on the same spot.
		resampled := make([]geom.Point, sampleCount)
		for i := range resampled {
			resampled[i] = points[0]
		}
		return resampled
	}

	spacing := totalLength / float64(sampleCount-1)
	resampled := make([]geom.Point, 0, sampleCount)
	resampled = append(resampled, points[0])

	accumulated := 0.0
	segmentStart := points[0]
	targetDistance := spacing

	for _, point := range points[1:] {
		segmentLength := geom.Distance(segmentStart, point)
		for accumulated+segmentLength >= targetDistance {
			remaining := targetDistance - accumulated
			t := remaining / segmentLength
			newPoint := geom.Point{
				X: segmentStart.X + (point.X-segmentStart.X)*t,
				Y: segmentStart.Y + (point.Y-segmentStart.Y)*t,
			}
			resampled = append(resampled, newPoint)
			segmentStart = newPoint
			segmentLength = geom.Distance(segmentStart, point)
			accumulated = 0
			targetDistance = spacing
		}
		accumulated += segmentLength
		segmentStart = point
	}

	// Floating point drift can leave the final sample unplaced.
	if len(resampled) < sampleCount {
		resampled = append(resampled, points[len(points)-1])
	}
	if len(resampled) > sampleCount {
		resampled = resampled[:sampleCount]
	}

	return resampled
}

// SmoothPoints applies a centered moving average of the given window width.
// A window of 1 or less is a no-op.
func SmoothPoints(points []geom.Point, window int) []geom.Point {
	if window <= 1 || len(points) == 0 {
		return points
	}

	smoothed := make([]geom.Point, 0, len(points))
	half := window / 2
	for idx := range points {
		start := idx - half
		if start < 0 {
			start = 0
		}
		end := idx + half + 1
		if end > len(points) {
			end = len(points)
		}

		var sumX, sumY, count float64
		for _, p := range points[start:end] {
			sumX += p.X
			sumY += p.Y
			count++
		}
		smoothed = append(smoothed, geom.Point{X: sumX / count, Y: sumY / count})
	}
	return smoothed
}

// PointsToVectors converts consecutive points into unit direction vectors.
// Zero-length segments map to the zero vector.
func PointsToVectors(points []geom.Point) []geom.Vector {
	if len(points) < 2 {
		return nil
	}
	vectors := make([]geom.Vector, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		vectors = append(vectors, geom.Normalize(geom.Vector{
			X: points[i].X - points[i-1].X,
			Y: points[i].Y - points[i-1].Y,
		}))
	}
	return vectors
}
