package analysis

import (
	"math"
	"sort"
)

// Quantile returns the p-quantile of sorted by linear interpolation between
// the closest ranks, h = (n-1)p. This matches the numpy/pandas default, which
// neither gonum's stat.Quantile (Empirical, LinInterp) nor montanaflynn's
// Percentile implement.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 || math.IsNaN(p) {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// present returns the non-NaN values of xs in their original order
func present(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// sortedPresent returns a sorted copy of the non-NaN values of xs
func sortedPresent(xs []float64) []float64 {
	out := present(xs)
	sort.Float64s(out)
	return out
}
