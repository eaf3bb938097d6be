package gesture

import (
	"errors"
	"math"
	"testing"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/ayusman/stroked/internal/geom"
)

func TestPreprocessPoints_TooFewPoints(t *testing.T) {
	_, err := PreprocessPoints([]geom.Point{{X: 1, Y: 1}}, PreprocessConfig{SampleCount: 16})

	if !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}
}

func TestPreprocessPoints_InvalidSampleCount(t *testing.T) {
	points := []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}

	_, err := PreprocessPoints(points, PreprocessConfig{SampleCount: 1})

	if !errors.Is(err, ErrInvalidSampleCount) {
		t.Errorf("expected ErrInvalidSampleCount, got %v", err)
	}
}

func TestPreprocessPoints_TooShort(t *testing.T) {
	points := []geom.Point{{X: 0, Y: 0}, {X: 3, Y: 4}}

	_, err := PreprocessPoints(points, PreprocessConfig{
		SampleCount:    16,
		MinTrackLength: 50,
	})

	var tooShort *TooShortError
	if !errors.As(err, &tooShort) {
		t.Fatalf("expected *TooShortError, got %v", err)
	}
	if math.Abs(tooShort.Length-5.0) > 0.0001 {
		t.Errorf("expected reported length 5, got %f", tooShort.Length)
	}
	if tooShort.MinLength != 50 {
		t.Errorf("expected reported minimum 50, got %f", tooShort.MinLength)
	}
}

func TestPreprocessPoints_ProducesUnitVectors(t *testing.T) {
	points := []geom.Point{
		{X: 0, Y: 0},
		{X: 100, Y: 0},
		{X: 100, Y: 100},
	}

	vectors, err := PreprocessPoints(points, PreprocessConfig{
		SampleCount:     32,
		SmoothingWindow: 3,
		MinTrackLength:  10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(vectors) != 31 {
		t.Errorf("expected 31 vectors from 32 samples, got %d", len(vectors))
	}

	for i, v := range vectors {
		length := math.Sqrt(v.X*v.X + v.Y*v.Y)
		if length > 0 && math.Abs(length-1.0) > 0.0001 {
			t.Errorf("vector %d has length %f, expected unit or zero", i, length)
		}
	}
}

func TestResamplePoints_UniformSpacing(t *testing.T) {
	points := []geom.Point{
		{X: 0, Y: 0},
		{X: 30, Y: 0},
		{X: 90, Y: 0},
	}

	resampled := ResamplePoints(points, 10)

	if len(resampled) != 10 {
		t.Fatalf("expected 10 resampled points, got %d", len(resampled))
	}

	// Arc length 90 over 9 gaps: every gap should be 10 apart.
	for i := 1; i < len(resampled); i++ {
		gap := geom.Distance(resampled[i-1], resampled[i])
		if math.Abs(gap-10.0) > 0.01 {
			t.Errorf("gap %d is %f, expected 10", i, gap)
		}
	}
}

func TestResamplePoints_ZeroLengthTrack(t *testing.T) {
	points := []geom.Point{{X: 5, Y: 5}, {X: 5, Y: 5}}

	resampled := ResamplePoints(points, 4)

	if len(resampled) != 4 {
		t.Fatalf("expected 4 points, got %d", len(resampled))
	}
	for i, p := range resampled {
		if p != points[0] {
			t.Errorf("point %d: expected %v, got %v", i, points[0], p)
		}
	}
}

func TestSmoothPoints_WindowOfOneIsNoOp(t *testing.T) {
	points := []geom.Point{{X: 0, Y: 0}, {X: 7, Y: 3}, {X: 2, Y: 9}}

	smoothed := SmoothPoints(points, 1)

	for i := range points {
		if smoothed[i] != points[i] {
			t.Errorf("point %d changed: expected %v, got %v", i, points[i], smoothed[i])
		}
	}
}

func TestSmoothPoints_FlattensJitter(t *testing.T) {
	points := []geom.Point{
		{X: 0, Y: 0},
		{X: 10, Y: 4},
		{X: 20, Y: -4},
		{X: 30, Y: 4},
		{X: 40, Y: 0},
	}

	smoothed := SmoothPoints(points, 3)

	var rawDev, smoothDev float64
	for _, p := range points {
		rawDev += math.Abs(p.Y)
	}
	for _, p := range smoothed {
		smoothDev += math.Abs(p.Y)
	}

	if smoothDev >= rawDev {
		t.Errorf("expected smoothing to reduce vertical jitter: raw %f, smoothed %f", rawDev, smoothDev)
	}
}

// zigZag builds a mostly-rightward stroke with alternating diagonal jitter.
func zigZag(steps int) []geom.Point {
	points := make([]geom.Point, 0, steps+1)
	y := 0.0
	for i := 0; i <= steps; i++ {
		points = append(points, geom.Point{X: float64(i) * 5, Y: y})
		if i%2 == 0 {
			y = 5
		} else {
			y = 0
		}
	}
	return points
}

func TestPreprocessForDirections_ReducesNoise(t *testing.T) {
	points := zigZag(40)

	raw := DirectionSequence(points, 0)
	processed := DirectionSequence(PreprocessForDirections(points, DirectionOptions{
		Sampling:  true,
		Smoothing: true,
	}), 0)

	if len(processed) >= len(raw) {
		t.Errorf("expected strictly fewer direction segments: raw %d, processed %d", len(raw), len(processed))
	}

	same := len(raw) == len(processed)
	if same {
		for i := range raw {
			if raw[i] != processed[i] {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("expected processed direction sequence to differ from the raw one")
	}
}

func TestPreprocessForDirections_NoiseField(t *testing.T) {
	// Simplex-noise displaced straight line: the smoothed variant must
	// collapse the wobble into far fewer direction segments.
	noise := opensimplex.New(42)

	points := make([]geom.Point, 0, 80)
	for i := 0; i < 80; i++ {
		points = append(points, geom.Point{
			X: float64(i) * 4,
			Y: noise.Eval2(float64(i)*2.7, 0) * 6,
		})
	}

	raw := DirectionSequence(points, 0)
	processed := DirectionSequence(PreprocessForDirections(points, DirectionOptions{
		Sampling:  true,
		Smoothing: true,
	}), 0)

	if len(processed) >= len(raw) {
		t.Errorf("expected strictly fewer direction segments: raw %d, processed %d", len(raw), len(processed))
	}
}

func TestPreprocessForDirections_DisabledStagesPassThrough(t *testing.T) {
	points := zigZag(10)

	processed := PreprocessForDirections(points, DirectionOptions{})

	if len(processed) != len(points) {
		t.Fatalf("expected pass-through, got %d points from %d", len(processed), len(points))
	}
}
