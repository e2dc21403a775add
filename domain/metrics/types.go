package metrics

import (
	"fmt"

	"ordermetrics/internal/errors"
)

// Summary holds the descriptive statistics of one numeric column
type Summary struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"std"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"` // excess kurtosis
}

// Fields returns the summary as ordered name/value pairs for display
func (s Summary) Fields() []Field {
	return []Field{
		{Name: "count", Value: float64(s.Count)},
		{Name: "mean", Value: s.Mean},
		{Name: "median", Value: s.Median},
		{Name: "std", Value: s.StdDev},
		{Name: "skewness", Value: s.Skewness},
		{Name: "kurtosis", Value: s.Kurtosis},
	}
}

// Field is a single named statistic
type Field struct {
	Name  string
	Value float64
}

// Fences are the interquartile bounds used to classify outliers
type Fences struct {
	Q1         float64 `json:"q1"`
	Q2         float64 `json:"q2"`
	Q3         float64 `json:"q3"`
	IQR        float64 `json:"iqr"`
	Multiplier float64 `json:"multiplier"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
}

// IsOutlier reports whether v lies strictly outside the fences. NaN never does.
func (f Fences) IsOutlier(v float64) bool {
	return v < f.Lower || v > f.Upper
}

func (f Fences) String() string {
	return fmt.Sprintf("[%g, %g] (Q1=%g Q3=%g IQR=%g k=%g)", f.Lower, f.Upper, f.Q1, f.Q3, f.IQR, f.Multiplier)
}

// Treatment selects how outliers are handled before analysis
type Treatment string

const (
	TreatmentNone    Treatment = "none"
	TreatmentRemove  Treatment = "remove"
	TreatmentReplace Treatment = "replace"
)

// ParseTreatment validates a treatment name; the empty string means none
func ParseTreatment(s string) (Treatment, error) {
	switch Treatment(s) {
	case "", TreatmentNone:
		return TreatmentNone, nil
	case TreatmentRemove, TreatmentReplace:
		return Treatment(s), nil
	}
	return "", errors.UnknownTreatment(s)
}
