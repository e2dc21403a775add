package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermetrics/domain/metrics"
	"ordermetrics/internal/analysis"
	"ordermetrics/internal/errors"
	"ordermetrics/internal/testkit"
)

const column = "order_amount"

func exampleReport(t *testing.T) *Report {
	t.Helper()
	df := testkit.Values(column, 1, 2, 2, 3, 3, 3, 4, 4, 5, 50)
	r, err := Build(analysis.NewStatsAnalyzer(df, column))
	require.NoError(t, err)
	return r
}

func TestBuild(t *testing.T) {
	r := exampleReport(t)

	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, column, r.Column)
	assert.Equal(t, 1, r.NumOutliers)
	assert.InDelta(t, 10.0, r.PercentOutliers, 1e-12)
	assert.InDelta(t, 5.75, r.Fences.Upper, 1e-12)

	require.Len(t, r.Variants, 3)
	assert.Equal(t, metrics.TreatmentNone, r.Variants[0].Treatment)
	assert.Equal(t, 10, r.Variants[0].Summary.Count)
	assert.InDelta(t, 7.7, r.Variants[0].AOV, 1e-12)

	assert.Equal(t, metrics.TreatmentRemove, r.Variants[1].Treatment)
	assert.Equal(t, 9, r.Variants[1].Summary.Count)
	assert.InDelta(t, 3.0, r.Variants[1].AOV, 1e-12)

	assert.Equal(t, metrics.TreatmentReplace, r.Variants[2].Treatment)
	assert.Equal(t, 10, r.Variants[2].Summary.Count)
	assert.InDelta(t, 3.0, r.Variants[2].AOV, 1e-12)
	assert.Equal(t, 3.0, r.Variants[2].MOV)
}

func TestBuildUnknownColumn(t *testing.T) {
	_, err := Build(analysis.NewStatsAnalyzer(testkit.Values("x", 1, 2), column))
	require.Error(t, err)
	assert.Equal(t, errors.CodeColumnNotFound, errors.GetCode(err))
}

func TestMarkdown(t *testing.T) {
	md := exampleReport(t).Markdown()

	assert.True(t, strings.HasPrefix(md, "# Order Amount report\n"))
	assert.Contains(t, md, "| 2.25 | 3.00 | 4.00 | 1.75 | 1.00 | 0.50 | 5.75 | 1 | 10.00% |")
	assert.Contains(t, md, "| outliers removed | 9 | 3.00 |")
	assert.Contains(t, md, "| outliers replaced by median | 10 | 3.00 |")
}

func TestHTML(t *testing.T) {
	page := string(exampleReport(t).HTML())

	assert.Contains(t, page, "<title>Order Amount report</title>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "outliers replaced by median")
}

func TestJSONNullsNaN(t *testing.T) {
	df := testkit.Values(column, 42)
	r, err := Build(analysis.NewStatsAnalyzer(df, column))
	require.NoError(t, err)

	out, err := r.JSON()
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, column, doc["column"])
	assert.EqualValues(t, 0, doc["num_outliers"])

	variants := doc["variants"].([]interface{})
	require.Len(t, variants, 3)
	summary := variants[0].(map[string]interface{})["summary"].(map[string]interface{})
	assert.Nil(t, summary["std"])
	assert.EqualValues(t, 42, summary["mean"])
}

func TestVariantShape(t *testing.T) {
	r := exampleReport(t)

	original := r.Variants[0].Shape
	assert.Greater(t, original.JarqueBera, 0.0)
	assert.False(t, original.IsNormal)

	md := r.Markdown()
	assert.Contains(t, md, "| Jarque-Bera p | Normal |")
}

func TestJSONShapeNulls(t *testing.T) {
	r, err := Build(analysis.NewStatsAnalyzer(testkit.Values(column, 1, 2, 3), column))
	require.NoError(t, err)

	out, err := r.JSON()
	require.NoError(t, err)

	var doc struct {
		Variants []struct {
			Shape map[string]interface{} `json:"shape"`
		} `json:"variants"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))
	require.Len(t, doc.Variants, 3)
	assert.Nil(t, doc.Variants[0].Shape["p_value"])
	assert.Equal(t, false, doc.Variants[0].Shape["is_normal"])
}

func TestMarshalEmptyReport(t *testing.T) {
	r, err := Build(analysis.NewStatsAnalyzer(testkit.Values(column), column))
	require.NoError(t, err)

	out, err := json.Marshal(r)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Nil(t, doc["percent_outliers"])
	assert.Nil(t, doc["fences"].(map[string]interface{})["q1"])

	variants := doc["variants"].([]interface{})
	require.Len(t, variants, 3)
	for _, v := range variants {
		assert.Nil(t, v.(map[string]interface{})["aov"])
		assert.Nil(t, v.(map[string]interface{})["mov"])
	}
}

func TestMarshalVariant(t *testing.T) {
	out, err := json.Marshal(exampleReport(t).Variants[1])
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "remove", doc["treatment"])
	assert.InDelta(t, 3.0, doc["aov"], 1e-12)
	assert.Contains(t, doc, "shape")
}
