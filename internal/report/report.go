package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/google/uuid"

	"ordermetrics/domain/metrics"
	"ordermetrics/internal/analysis"
	"ordermetrics/internal/errors"
	"ordermetrics/internal/profiling"
)

// Variant is one version of the dataset: as loaded, or after a treatment
type Variant struct {
	Treatment metrics.Treatment `json:"treatment"`
	Summary   metrics.Summary   `json:"summary"`
	AOV       float64           `json:"aov"`
	MOV       float64           `json:"mov"`
	Shape     profiling.Shape   `json:"shape"`
}

// Report compares order-value metrics before and after outlier treatment
type Report struct {
	ID              uuid.UUID      `json:"id"`
	GeneratedAt     time.Time      `json:"generated_at"`
	Column          string         `json:"column"`
	Fences          metrics.Fences `json:"fences"`
	NumOutliers     int            `json:"num_outliers"`
	PercentOutliers float64        `json:"percent_outliers"`
	Variants        []Variant      `json:"variants"`
}

// Build computes the report for the analyzer's dataset
func Build(a *analysis.StatsAnalyzer) (*Report, error) {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	fences, err := a.Fences()
	if err != nil {
		return nil, errors.Wrap(err, "compute fences")
	}
	n, err := a.NumOutliers()
	if err != nil {
		return nil, errors.Wrap(err, "count outliers")
	}
	pct, err := a.PercentOutliers()
	if err != nil {
		return nil, errors.Wrap(err, "percent outliers")
	}

	r := &Report{
		ID:              id,
		GeneratedAt:     time.Now().UTC(),
		Column:          a.Column(),
		Fences:          fences,
		NumOutliers:     n,
		PercentOutliers: pct,
	}

	for _, t := range []metrics.Treatment{metrics.TreatmentNone, metrics.TreatmentRemove, metrics.TreatmentReplace} {
		v, err := buildVariant(a, t)
		if err != nil {
			return nil, errors.Wrapf(err, "treatment %s", t)
		}
		r.Variants = append(r.Variants, v)
	}
	return r, nil
}

func buildVariant(a *analysis.StatsAnalyzer, t metrics.Treatment) (Variant, error) {
	df, err := a.Treat(t)
	if err != nil {
		return Variant{}, err
	}
	summary, err := a.StatsOf(df)
	if err != nil {
		return Variant{}, err
	}
	aov, err := a.AOVOf(df)
	if err != nil {
		return Variant{}, err
	}
	mov, err := a.MOVOf(df)
	if err != nil {
		return Variant{}, err
	}
	values, err := a.ValuesOf(df)
	if err != nil {
		return Variant{}, err
	}
	return Variant{
		Treatment: t,
		Summary:   summary,
		AOV:       aov,
		MOV:       mov,
		Shape:     profiling.AnalyzeShape(values),
	}, nil
}

// Markdown renders the report as a Markdown document with tables
func (r *Report) Markdown() string {
	var b strings.Builder
	title := analysis.ColumnTitle(r.Column)

	fmt.Fprintf(&b, "# %s report\n\n", title)
	fmt.Fprintf(&b, "Report `%s`, generated %s.\n\n", r.ID, r.GeneratedAt.Format(time.RFC3339))

	b.WriteString("## Outliers\n\n")
	b.WriteString("| Q1 | Median | Q3 | IQR | Fence multiplier | Lower fence | Upper fence | Outliers | Share |\n")
	b.WriteString("|---:|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %d | %s%% |\n\n",
		num(r.Fences.Q1), num(r.Fences.Q2), num(r.Fences.Q3), num(r.Fences.IQR),
		num(r.Fences.Multiplier), num(r.Fences.Lower), num(r.Fences.Upper),
		r.NumOutliers, num(r.PercentOutliers))

	b.WriteString("## Order value metrics\n\n")
	b.WriteString("| Dataset | Count | Mean | Median | Std | Skewness | Kurtosis | AOV | MOV | Jarque-Bera p | Normal |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|---:|---:|---|\n")
	for _, v := range r.Variants {
		s := v.Summary
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			variantName(v.Treatment), s.Count, num(s.Mean), num(s.Median), num(s.StdDev),
			num(s.Skewness), num(s.Kurtosis), num(v.AOV), num(v.MOV),
			pValue(v.Shape.PValue), yesNo(v.Shape.IsNormal))
	}
	return b.String()
}

// HTML renders the Markdown report to a standalone HTML page
func (r *Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: analysis.ColumnTitle(r.Column) + " report",
	})
	return markdown.ToHTML([]byte(r.Markdown()), p, renderer)
}

// MarshalJSON writes NaN metrics as null
func (v Variant) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Treatment metrics.Treatment `json:"treatment"`
		Summary   metrics.Summary   `json:"summary"`
		AOV       *float64          `json:"aov"`
		MOV       *float64          `json:"mov"`
		Shape     profiling.Shape   `json:"shape"`
	}{v.Treatment, v.Summary, metrics.Finite(v.AOV), metrics.Finite(v.MOV), v.Shape})
}

// MarshalJSON writes the outlier share of an empty dataset as null
func (r Report) MarshalJSON() ([]byte, error) {
	type plain Report
	return json.Marshal(struct {
		plain
		PercentOutliers *float64 `json:"percent_outliers"`
	}{plain(r), metrics.Finite(r.PercentOutliers)})
}

// JSON encodes the report indented
func (r *Report) JSON() ([]byte, error) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode report")
	}
	return out, nil
}

func variantName(t metrics.Treatment) string {
	switch t {
	case metrics.TreatmentRemove:
		return "outliers removed"
	case metrics.TreatmentReplace:
		return "outliers replaced by median"
	}
	return "original"
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.2f", v)
}

func pValue(p float64) string {
	if math.IsNaN(p) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", p)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
