// Package vector provides distance and similarity helpers.
package vector

import "math"

// L2Distance returns the Euclidean distance between two vectors.
// Mismatched or empty inputs return +Inf so they never rank as near.
func L2Distance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Similarity converts an L2 distance into a [0,1] similarity score,
// 1.0 for an identical vector.
func Similarity(distance float64) float64 {
	if math.IsInf(distance, 1) || math.IsNaN(distance) {
		return 0
	}
	return 1.0 / (1.0 + distance)
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v * v)
	}
	return math.Sqrt(sum)
}
