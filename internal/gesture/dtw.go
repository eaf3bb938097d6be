package gesture

import (
	"math"

	"github.com/ayusman/stroked/internal/geom"
)

// MaxDistance is the upper bound of the normalized DTW distance scale.
// Two antiparallel unit vectors cost exactly this much per step.
const MaxDistance = 2.0

// DTWDistance calculates the Dynamic Time Warping distance between two unit
// vector sequences, normalized to the [0, 2] range.
//
// The per-step cost between two unit vectors is 1 - dot(a, b), i.e. cosine
// distance: parallel vectors cost 0, antiparallel cost 2. Transitions allowed
// are diagonal (consume one of each), up (consume one of A) and left (consume
// one of B), so differing stroke speeds and sample counts are tolerated.
//
// Alongside cost, the number of steps on the chosen path is tracked;
// equal-cost predecessor ties prefer the predecessor with fewer accumulated
// steps, which keeps the normalization stable. The final distance is
// total_cost / max(1, path_steps), clamped to [0, 2].
//
// Empty input on either side is defined as maximum distance ("no match").
func DTWDistance(vectorsA, vectorsB []geom.Vector) float64 {
	if len(vectorsA) == 0 || len(vectorsB) == 0 {
		return MaxDistance
	}

	rows := len(vectorsA) + 1
	cols := len(vectorsB) + 1

	cost := make([][]float64, rows)
	steps := make([][]int, rows)
	for i := range cost {
		cost[i] = make([]float64, cols)
		steps[i] = make([]int, cols)
		for j := range cost[i] {
			cost[i][j] = math.Inf(1)
			steps[i][j] = math.MaxInt
		}
	}
	cost[0][0] = 0
	steps[0][0] = 0

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			stepCost := vectorDistance(vectorsA[i-1], vectorsB[j-1])
			prevCost, prevSteps := bestPredecessor(cost, steps, i, j)
			cost[i][j] = prevCost + stepCost
			steps[i][j] = prevSteps + 1
		}
	}

	finalSteps := steps[rows-1][cols-1]
	if finalSteps < 1 {
		finalSteps = 1
	}

	distance := cost[rows-1][cols-1] / float64(finalSteps)
	return clamp(distance, 0, MaxDistance)
}

// vectorDistance returns the cosine distance between two unit vectors.
// The dot product is clamped to guard against floating point overshoot.
func vectorDistance(a, b geom.Vector) float64 {
	dot := clamp(geom.Dot(a, b), -1, 1)
	return 1 - dot
}

// bestPredecessor picks the cheapest of the three DTW predecessors of cell
// (i, j). Cost ties are broken toward the shorter path.
func bestPredecessor(cost [][]float64, steps [][]int, i, j int) (float64, int) {
	bestCost := cost[i-1][j-1]
	bestSteps := steps[i-1][j-1]

	for _, cand := range [2][2]int{{i - 1, j}, {i, j - 1}} {
		candCost := cost[cand[0]][cand[1]]
		candSteps := steps[cand[0]][cand[1]]
		if candCost < bestCost || (candCost == bestCost && candSteps < bestSteps) {
			bestCost = candCost
			bestSteps = candSteps
		}
	}

	return bestCost, bestSteps
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
