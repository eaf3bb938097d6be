// Package geom provides the 2D geometry primitives used by the Stroked gesture engine.
package geom

import "math"

// Point represents a raw or processed 2D pointer sample.
type Point struct {
	X float64
	Y float64
}

// Vector represents a direction between two consecutive points.
// Vectors produced by the preprocessing pipeline are unit length or zero.
type Vector struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// TrackLength returns the total arc length of a polyline, i.e. the sum of
// the Euclidean distances between consecutive points.
func TrackLength(points []Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// MeetsMinTrackLength reports whether the polyline is at least minLength long.
func MeetsMinTrackLength(points []Point, minLength float64) bool {
	return TrackLength(points) >= minLength
}

// Normalize scales the vector to unit length.
// A zero-length vector maps to the zero vector, never dividing by zero.
func Normalize(v Vector) Vector {
	length := math.Sqrt(v.X*v.X + v.Y*v.Y)
	if length == 0 {
		return Vector{}
	}
	return Vector{X: v.X / length, Y: v.Y / length}
}

// Dot returns the dot product of two vectors.
func Dot(a, b Vector) float64 {
	return a.X*b.X + a.Y*b.Y
}
