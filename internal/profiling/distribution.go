package profiling

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"ordermetrics/domain/metrics"
)

// NormalityAlpha is the significance level below which a column is reported as non-normal
const NormalityAlpha = 0.05

// Shape summarizes how far a column is from a normal distribution
type Shape struct {
	Skewness   float64 `json:"skewness"`    // population (biased) skewness g1
	Kurtosis   float64 `json:"kurtosis"`    // population excess kurtosis g2
	JarqueBera float64 `json:"jarque_bera"` // n/6 * (g1^2 + g2^2/4)
	PValue     float64 `json:"p_value"`
	IsNormal   bool    `json:"is_normal"`
}

// AnalyzeShape runs a Jarque-Bera test on xs. Fewer than 4 values, or a
// constant column, yield NaN statistics and IsNormal false.
func AnalyzeShape(xs []float64) Shape {
	nan := math.NaN()
	shape := Shape{Skewness: nan, Kurtosis: nan, JarqueBera: nan, PValue: nan}
	if len(xs) < 4 {
		return shape
	}

	// central moments about the mean, population form
	m2 := stat.Moment(2, xs, nil)
	if m2 == 0 {
		return shape
	}
	m3 := stat.Moment(3, xs, nil)
	m4 := stat.Moment(4, xs, nil)
	g1 := m3 / math.Pow(m2, 1.5)
	g2 := m4/(m2*m2) - 3

	n := float64(len(xs))
	jb := n / 6 * (g1*g1 + g2*g2/4)
	p := 1 - distuv.ChiSquared{K: 2}.CDF(jb)

	return Shape{
		Skewness:   g1,
		Kurtosis:   g2,
		JarqueBera: jb,
		PValue:     p,
		IsNormal:   p > NormalityAlpha,
	}
}

// MarshalJSON writes undefined statistics as null
func (s Shape) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Skewness   *float64 `json:"skewness"`
		Kurtosis   *float64 `json:"kurtosis"`
		JarqueBera *float64 `json:"jarque_bera"`
		PValue     *float64 `json:"p_value"`
		IsNormal   bool     `json:"is_normal"`
	}{metrics.Finite(s.Skewness), metrics.Finite(s.Kurtosis), metrics.Finite(s.JarqueBera), metrics.Finite(s.PValue), s.IsNormal})
}
