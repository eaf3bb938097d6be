package geom

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	a := Point{X: 0, Y: 0}
	b := Point{X: 3, Y: 4}

	dist := Distance(a, b)

	// Should be 5 (3-4-5 triangle)
	if math.Abs(dist-5.0) > 0.0001 {
		t.Errorf("expected distance 5, got %f", dist)
	}
}

func TestTrackLength_SumOfSegments(t *testing.T) {
	points := []Point{
		{X: 0, Y: 0},
		{X: 3, Y: 4},
		{X: 3, Y: 10},
	}

	length := TrackLength(points)

	// 5 + 6 = 11
	if math.Abs(length-11.0) > 0.0001 {
		t.Errorf("expected track length 11, got %f", length)
	}
}

func TestTrackLength_DegenerateInputs(t *testing.T) {
	if got := TrackLength(nil); got != 0 {
		t.Errorf("expected 0 for nil points, got %f", got)
	}
	if got := TrackLength([]Point{{X: 1, Y: 1}}); got != 0 {
		t.Errorf("expected 0 for single point, got %f", got)
	}
}

func TestMeetsMinTrackLength(t *testing.T) {
	points := []Point{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
	}

	if !MeetsMinTrackLength(points, 10) {
		t.Error("expected track of length 10 to meet threshold 10")
	}
	if MeetsMinTrackLength(points, 10.5) {
		t.Error("expected track of length 10 to fail threshold 10.5")
	}
}

func TestNormalize(t *testing.T) {
	v := Normalize(Vector{X: 3, Y: 4})

	if math.Abs(v.X-0.6) > 0.0001 || math.Abs(v.Y-0.8) > 0.0001 {
		t.Errorf("expected (0.6, 0.8), got (%f, %f)", v.X, v.Y)
	}
}

func TestNormalize_ZeroVector(t *testing.T) {
	v := Normalize(Vector{})

	if v.X != 0 || v.Y != 0 {
		t.Errorf("expected zero vector, got (%f, %f)", v.X, v.Y)
	}
}

func TestDot(t *testing.T) {
	tests := []struct {
		a, b     Vector
		expected float64
	}{
		{Vector{X: 1, Y: 0}, Vector{X: 1, Y: 0}, 1},
		{Vector{X: 1, Y: 0}, Vector{X: -1, Y: 0}, -1},
		{Vector{X: 1, Y: 0}, Vector{X: 0, Y: 1}, 0},
	}

	for _, tt := range tests {
		if got := Dot(tt.a, tt.b); math.Abs(got-tt.expected) > 0.0001 {
			t.Errorf("Dot(%v, %v) = %f, expected %f", tt.a, tt.b, got, tt.expected)
		}
	}
}
