package gesture

import (
	"math"
	"testing"

	"github.com/ayusman/stroked/internal/geom"
)

// unitVectors converts raw headings into normalized direction vectors.
func unitVectors(raw []geom.Vector) []geom.Vector {
	out := make([]geom.Vector, len(raw))
	for i, v := range raw {
		out[i] = geom.Normalize(v)
	}
	return out
}

func TestDTW_IdenticalSequences(t *testing.T) {
	vectors := unitVectors([]geom.Vector{
		{X: 1, Y: 0},
		{X: 1, Y: 1},
		{X: 0, Y: 1},
		{X: -1, Y: 1},
	})

	distance := DTWDistance(vectors, vectors)

	if distance > 0.01 {
		t.Errorf("expected self-distance <= 0.01, got %f", distance)
	}
}

func TestDTW_ReversedDirections(t *testing.T) {
	// Negating every vector turns the stroke into its reverse; the distance
	// must land near the top of the scale.
	vectors := unitVectors([]geom.Vector{
		{X: 1, Y: 0},
		{X: 1, Y: 0},
		{X: 0, Y: 1},
		{X: 0, Y: 1},
	})

	reversed := make([]geom.Vector, len(vectors))
	for i, v := range vectors {
		reversed[i] = geom.Vector{X: -v.X, Y: -v.Y}
	}

	distance := DTWDistance(vectors, reversed)

	if distance <= 1.5 {
		t.Errorf("expected reversed distance > 1.5, got %f", distance)
	}
}

func TestDTW_SmallPerturbation(t *testing.T) {
	// A lightly jittered copy of the stroke stays near the bottom of the scale.
	base := []geom.Vector{
		{X: 1, Y: 0},
		{X: 1, Y: 0.2},
		{X: 0.8, Y: 0.6},
		{X: 0.2, Y: 1},
		{X: 0, Y: 1},
	}

	perturbation := []geom.Vector{
		{X: 0.05, Y: -0.08},
		{X: -0.1, Y: 0.06},
		{X: 0.07, Y: 0.1},
		{X: -0.04, Y: -0.09},
		{X: 0.1, Y: 0.03},
	}

	a := unitVectors(base)
	b := make([]geom.Vector, len(base))
	for i, v := range base {
		b[i] = geom.Normalize(geom.Vector{
			X: v.X + perturbation[i].X,
			Y: v.Y + perturbation[i].Y,
		})
	}

	distance := DTWDistance(a, b)

	if distance >= 0.2 {
		t.Errorf("expected perturbed distance < 0.2, got %f", distance)
	}
}

func TestDTW_OrthogonalSequences(t *testing.T) {
	// Rotating every vector by 90 degrees makes each step cost 1.
	vectors := unitVectors([]geom.Vector{
		{X: 1, Y: 0},
		{X: 1, Y: 1},
		{X: 0, Y: 1},
	})

	rotated := make([]geom.Vector, len(vectors))
	for i, v := range vectors {
		rotated[i] = geom.Vector{X: -v.Y, Y: v.X}
	}

	distance := DTWDistance(vectors, rotated)

	if distance <= 0.9 {
		t.Errorf("expected orthogonal distance > 0.9, got %f", distance)
	}
}

func TestDTW_EmptySequences(t *testing.T) {
	vectors := unitVectors([]geom.Vector{{X: 1, Y: 0}})

	if got := DTWDistance(nil, vectors); got != MaxDistance {
		t.Errorf("expected max distance for empty first sequence, got %f", got)
	}
	if got := DTWDistance(vectors, nil); got != MaxDistance {
		t.Errorf("expected max distance for empty second sequence, got %f", got)
	}
	if got := DTWDistance(nil, nil); got != MaxDistance {
		t.Errorf("expected max distance for both empty, got %f", got)
	}
}

func TestDTW_SpeedInvariant(t *testing.T) {
	// The same trajectory sampled at different rates should stay close in
	// both comparison orders.
	fast := unitVectors([]geom.Vector{
		{X: 1, Y: 0},
		{X: 0, Y: 1},
	})
	slow := unitVectors([]geom.Vector{
		{X: 1, Y: 0},
		{X: 1, Y: 0},
		{X: 1, Y: 0},
		{X: 0, Y: 1},
		{X: 0, Y: 1},
		{X: 0, Y: 1},
	})

	forward := DTWDistance(fast, slow)
	backward := DTWDistance(slow, fast)

	if forward > 0.5 {
		t.Errorf("expected low distance for speed-invariant strokes, got %f", forward)
	}
	if math.Abs(forward-backward) > 0.25 {
		t.Errorf("expected near-symmetric distances, got %f and %f", forward, backward)
	}
}

func TestDTW_RangeIsBounded(t *testing.T) {
	a := unitVectors([]geom.Vector{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 1, Y: 0}})
	b := unitVectors([]geom.Vector{{X: -1, Y: 0}, {X: 1, Y: 0}, {X: -1, Y: 0}})

	distance := DTWDistance(a, b)

	if distance < 0 || distance > MaxDistance {
		t.Errorf("expected distance within [0, 2], got %f", distance)
	}
}
