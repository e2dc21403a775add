package metrics

import (
	"encoding/json"
	"math"
)

// Finite returns nil for NaN and ±Inf so JSON encodes them as null
func Finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// MarshalJSON writes undefined statistics as null
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Count    int      `json:"count"`
		Mean     *float64 `json:"mean"`
		Median   *float64 `json:"median"`
		StdDev   *float64 `json:"std"`
		Skewness *float64 `json:"skewness"`
		Kurtosis *float64 `json:"kurtosis"`
	}{s.Count, Finite(s.Mean), Finite(s.Median), Finite(s.StdDev), Finite(s.Skewness), Finite(s.Kurtosis)})
}

// MarshalJSON writes the bounds of an empty column as null
func (f Fences) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Q1         *float64 `json:"q1"`
		Q2         *float64 `json:"q2"`
		Q3         *float64 `json:"q3"`
		IQR        *float64 `json:"iqr"`
		Multiplier float64  `json:"multiplier"`
		Lower      *float64 `json:"lower"`
		Upper      *float64 `json:"upper"`
	}{Finite(f.Q1), Finite(f.Q2), Finite(f.Q3), Finite(f.IQR), f.Multiplier, Finite(f.Lower), Finite(f.Upper)})
}
