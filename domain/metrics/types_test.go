package metrics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermetrics/internal/errors"
)

func TestFencesIsOutlier(t *testing.T) {
	f := Fences{Lower: 0.5, Upper: 5.75}

	assert.True(t, f.IsOutlier(50))
	assert.True(t, f.IsOutlier(0.4))
	assert.False(t, f.IsOutlier(0.5))
	assert.False(t, f.IsOutlier(5.75))
	assert.False(t, f.IsOutlier(math.NaN()))
}

func TestParseTreatment(t *testing.T) {
	for input, want := range map[string]Treatment{
		"":        TreatmentNone,
		"none":    TreatmentNone,
		"remove":  TreatmentRemove,
		"replace": TreatmentReplace,
	} {
		got, err := ParseTreatment(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := ParseTreatment("clip")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), `"clip"`)
}

func TestSummaryJSONUsesNullForNaN(t *testing.T) {
	out, err := json.Marshal(Summary{Count: 1, Mean: 42, Median: 42, StdDev: math.NaN(), Skewness: math.NaN(), Kurtosis: math.NaN()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":1,"mean":42,"median":42,"std":null,"skewness":null,"kurtosis":null}`, string(out))
}

func TestSummaryFields(t *testing.T) {
	fields := Summary{Count: 3, Mean: 2}.Fields()
	require.Len(t, fields, 6)
	assert.Equal(t, Field{Name: "count", Value: 3}, fields[0])
	assert.Equal(t, "kurtosis", fields[5].Name)
}
