package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermetrics/adapters/excel"
	"ordermetrics/internal/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"ORDERMETRICS_FILE", "ORDERMETRICS_SHEET", "ORDERMETRICS_COLUMN", "ORDERMETRICS_FENCE_MULTIPLIER", "PLOT_BINS", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	t.Setenv("LOG_LEVEL", "ERROR")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func exampleCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	content := "order_id,order_amount\n" +
		"a,1\nb,2\nc,2\nd,3\ne,3\nf,3\ng,4\nh,4\ni,5\nj,50\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStatsCommand(t *testing.T) {
	out, err := execute(t, "stats", "-f", exampleCSV(t))
	require.NoError(t, err)

	assert.Contains(t, out, "count")
	assert.Contains(t, out, "mean      7.7")
	assert.Contains(t, out, "median    3\n")
	assert.Contains(t, out, "aov       7.7")
}

func TestStatsCommandAfterRemoval(t *testing.T) {
	out, err := execute(t, "stats", "-f", exampleCSV(t), "--clean", "remove")
	require.NoError(t, err)
	assert.Contains(t, out, "count     9\n")
	assert.Contains(t, out, "mean      3\n")
}

func TestOutliersCommand(t *testing.T) {
	out, err := execute(t, "outliers", "-f", exampleCSV(t), "--list")
	require.NoError(t, err)

	assert.Contains(t, out, "fences: [0.5, 5.75]")
	assert.Contains(t, out, "outliers: 1 (10.00%)")
	assert.Contains(t, out, "order_id,order_amount\nj,50")
}

func TestOutliersCommandTukeyFence(t *testing.T) {
	out, err := execute(t, "outliers", "-f", exampleCSV(t), "--fence", "1.5")
	require.NoError(t, err)
	assert.Contains(t, out, "fences: [-0.375, 6.625]")
}

func TestFenceFlagValidation(t *testing.T) {
	for _, fence := range []string{"0", "-1"} {
		_, err := execute(t, "outliers", "-f", exampleCSV(t), "--fence", fence)
		require.Error(t, err, fence)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err), fence)
	}
}

func TestFenceFromEnvironment(t *testing.T) {
	path := exampleCSV(t)
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"outliers", "-f", path})
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("ORDERMETRICS_COLUMN", "")
	t.Setenv("ORDERMETRICS_FENCE_MULTIPLIER", "1.5")

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "fences: [-0.375, 6.625]")
}

func TestCleanCommand(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "clean.xlsx")

	out, err := execute(t, "clean", "-f", exampleCSV(t), "--strategy", "replace", "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "replace: 1 outliers, 10 -> 10 rows")

	df, err := excel.NewDataReader(target).ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, 3.0, df.Col("order_amount").Float()[9])
}

func TestCleanCommandRejectsBadStrategy(t *testing.T) {
	_, err := execute(t, "clean", "-f", exampleCSV(t), "--strategy", "none", "--out", "x.csv")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestPlotCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "dist.png")

	_, err := execute(t, "plot", "-f", exampleCSV(t), "--out", target, "--bins", "8")
	require.NoError(t, err)

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	assert.NoError(t, err)
}

func TestReportCommandJSON(t *testing.T) {
	out, err := execute(t, "report", "-f", exampleCSV(t), "--format", "json")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "order_amount", doc["column"])
	assert.EqualValues(t, 1, doc["num_outliers"])
}

func TestReportCommandHTMLFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "report.html")

	_, err := execute(t, "report", "-f", exampleCSV(t), "--format", "html", "--out", target)
	require.NoError(t, err)

	page, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Order Amount report")
}

func TestGenerateThenAnalyze(t *testing.T) {
	target := filepath.Join(t.TempDir(), "generated.csv")

	out, err := execute(t, "generate", "--rows", "400", "--seed", "3", "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "400 orders written")

	out, err = execute(t, "outliers", "-f", target, "-c", "order_amount")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "fences: "))
}

func TestErrors(t *testing.T) {
	_, err := execute(t, "stats")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = execute(t, "stats", "-f", exampleCSV(t), "-c", "order_value")
	assert.Equal(t, errors.CodeColumnNotFound, errors.GetCode(err))

	_, err = execute(t, "report", "-f", exampleCSV(t), "--format", "pdf")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = execute(t, "stats", "-f", exampleCSV(t), "--clean", "clip")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = execute(t, "plot", "-f", exampleCSV(t), "--clean", "clip", "--out", "x.png")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestStatsCommandNormality(t *testing.T) {
	out, err := execute(t, "stats", "-f", exampleCSV(t))
	require.NoError(t, err)
	assert.Contains(t, out, "normal_p  ")
}
