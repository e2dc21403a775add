package chart

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot/plotter"
)

// maxAutoBins caps the Freedman-Diaconis bin count
const maxAutoBins = 50

// ScottBandwidth is the Gaussian kernel bandwidth sigma * n^(-1/5)
func ScottBandwidth(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil) * math.Pow(float64(len(values)), -0.2)
}

// DensityCurve evaluates a Gaussian kernel density estimate on points evenly
// spaced over the data range padded by three bandwidths. It returns nil when
// the bandwidth is zero (fewer than two distinct values).
func DensityCurve(values []float64, points int) plotter.XYs {
	bw := ScottBandwidth(values)
	if bw == 0 || math.IsNaN(bw) || points < 2 {
		return nil
	}

	lo, hi := minMax(values)
	lo -= 3 * bw
	hi += 3 * bw
	step := (hi - lo) / float64(points-1)
	kernel := distuv.Normal{Mu: 0, Sigma: bw}
	n := float64(len(values))

	xys := make(plotter.XYs, points)
	for i := range xys {
		x := lo + float64(i)*step
		density := 0.0
		for _, v := range values {
			density += kernel.Prob(x - v)
		}
		xys[i].X = x
		xys[i].Y = density / n
	}
	return xys
}

// FreedmanDiaconisBins picks a histogram bin count from the IQR, bounded to [1, 50]
func FreedmanDiaconisBins(values []float64) int {
	if len(values) < 2 {
		return 1
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	iqr := stat.Quantile(0.75, stat.Empirical, sorted, nil) - stat.Quantile(0.25, stat.Empirical, sorted, nil)
	width := 2 * iqr * math.Pow(float64(len(sorted)), -1.0/3)
	span := sorted[len(sorted)-1] - sorted[0]
	if width <= 0 || span <= 0 {
		return 1
	}

	bins := int(math.Ceil(span / width))
	if bins < 1 {
		return 1
	}
	if bins > maxAutoBins {
		return maxAutoBins
	}
	return bins
}

func minMax(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
