package report

import "math"

// Percentile returns the nearest-rank-below value: the element at index
// floor(len(sorted) * p), with no interpolation. The slice must be sorted
// ascending; p is a fraction (0.95 for p95).
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Floor(float64(len(sorted)) * p))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
