package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ordermetrics/adapters/chart"
	"ordermetrics/adapters/excel"
	"ordermetrics/domain/metrics"
	"ordermetrics/internal/errors"
	"ordermetrics/internal/profiling"
	"ordermetrics/internal/report"
	"ordermetrics/internal/testkit"
)

func newStatsCmd(s *session) *cobra.Command {
	var clean string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print descriptive statistics, AOV and MOV of the column",
		Long: `Print descriptive statistics of the analyzed column.

With --clean the statistics describe the dataset after outlier treatment.

Example: ordermetrics stats -f orders.csv -c order_amount --clean remove`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			treatment, err := metrics.ParseTreatment(clean)
			if err != nil {
				return err
			}
			return runStats(cmd.OutOrStdout(), s, treatment)
		},
	}

	cmd.Flags().StringVar(&clean, "clean", "", "Outlier treatment before computing: remove|replace")
	return cmd
}

func runStats(w io.Writer, s *session, treatment metrics.Treatment) error {
	a, _, err := s.load()
	if err != nil {
		return err
	}
	df, err := a.Treat(treatment)
	if err != nil {
		return err
	}
	summary, err := a.StatsOf(df)
	if err != nil {
		return err
	}
	aov, err := a.AOVOf(df)
	if err != nil {
		return err
	}
	mov, err := a.MOVOf(df)
	if err != nil {
		return err
	}
	values, err := a.ValuesOf(df)
	if err != nil {
		return err
	}
	shape := profiling.AnalyzeShape(values)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, field := range summary.Fields() {
		fmt.Fprintf(tw, "%s\t%g\n", field.Name, field.Value)
	}
	fmt.Fprintf(tw, "aov\t%g\n", aov)
	fmt.Fprintf(tw, "mov\t%g\n", mov)
	// Jarque-Bera p-value
	fmt.Fprintf(tw, "normal_p\t%.4g\n", shape.PValue)
	return tw.Flush()
}

func newOutliersCmd(s *session) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "outliers",
		Short: "Show the IQR fences and how many rows fall outside them",
		Long: `Show the outlier fences [Q1 - k*IQR, Q3 + k*IQR] and the outlier count.

k defaults to 1, not the 1.5 of Tukey's fences. With --list the outlier rows
are printed as CSV.

Example: ordermetrics outliers -f orders.xlsx --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOutliers(cmd.OutOrStdout(), s, list)
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "Print the outlier rows as CSV")
	return cmd
}

func runOutliers(w io.Writer, s *session, list bool) error {
	a, _, err := s.load()
	if err != nil {
		return err
	}
	fences, err := a.Fences()
	if err != nil {
		return err
	}
	n, err := a.NumOutliers()
	if err != nil {
		return err
	}
	pct, err := a.PercentOutliers()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "fences: %s\n", fences)
	fmt.Fprintf(w, "outliers: %d (%.2f%%)\n", n, pct)

	if !list || n == 0 {
		return nil
	}
	rows, err := a.Outliers()
	if err != nil {
		return err
	}
	return excel.WriteCSV(rows, w)
}

func newCleanCmd(s *session) *cobra.Command {
	var strategy, out string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Write a copy of the dataset with outliers removed or replaced",
		Long: `Write the dataset with outliers removed, or replaced by the column median.

The output format follows the extension of --out (.csv or .xlsx).

Example: ordermetrics clean -f orders.csv --strategy replace --out orders_clean.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			treatment, err := metrics.ParseTreatment(strategy)
			if err != nil || treatment == metrics.TreatmentNone {
				return errors.InvalidInput("--strategy must be remove or replace")
			}
			if out == "" {
				return errors.InvalidInput("--out is required")
			}
			return runClean(cmd.OutOrStdout(), s, treatment, out)
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", string(metrics.TreatmentRemove), "Outlier treatment: remove|replace")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (.csv or .xlsx)")
	return cmd
}

func runClean(w io.Writer, s *session, treatment metrics.Treatment, out string) error {
	a, original, err := s.load()
	if err != nil {
		return err
	}
	n, err := a.NumOutliers()
	if err != nil {
		return err
	}
	cleaned, err := a.Treat(treatment)
	if err != nil {
		return err
	}
	if err := excel.WriteFile(cleaned, out); err != nil {
		return err
	}

	s.logger.Info("Applied %s to %d outliers in %q", treatment, n, s.column)
	fmt.Fprintf(w, "%s: %d outliers, %d -> %d rows, written to %s\n", treatment, n, original.Nrow(), cleaned.Nrow(), out)
	return nil
}

func newPlotCmd(s *session) *cobra.Command {
	var clean, out string
	var bins int

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render a box plot and density histogram of the column to PNG",
		Long: `Render the distribution of the analyzed column: a box plot on top of a
normalized histogram with a kernel density curve, sharing the x axis.

Example: ordermetrics plot -f orders.csv --clean remove --out order_amount.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			treatment, err := metrics.ParseTreatment(clean)
			if err != nil {
				return err
			}
			if out == "" {
				return errors.InvalidInput("--out is required")
			}
			return runPlot(cmd.OutOrStdout(), s, treatment, out, bins)
		},
	}

	cmd.Flags().StringVar(&clean, "clean", "", "Outlier treatment before plotting: remove|replace")
	cmd.Flags().StringVarP(&out, "out", "o", "", "PNG file to write")
	cmd.Flags().IntVar(&bins, "bins", 0, "Histogram bins (default: PLOT_BINS or Freedman-Diaconis)")
	return cmd
}

func runPlot(w io.Writer, s *session, treatment metrics.Treatment, out string, bins int) error {
	a, _, err := s.load()
	if err != nil {
		return err
	}
	df, err := a.Treat(treatment)
	if err != nil {
		return err
	}

	plotConfig := s.cfg.Plot
	if bins > 0 {
		plotConfig.Bins = bins
	}

	f, err := os.Create(out)
	if err != nil {
		return errors.IOError("failed to create "+out, err)
	}
	if err := a.PlotDistribution(df, chart.NewDistributionRenderer(plotConfig), f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.IOError("failed to close "+out, err)
	}

	s.logger.Debug("Rendered %d values of %q", df.Nrow(), s.column)
	fmt.Fprintf(w, "plot written to %s\n", out)
	return nil
}

func newReportCmd(s *session) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compare metrics before and after outlier treatment",
		Long: `Build a report with the outlier fences and the statistics, AOV and MOV of
the original dataset, the dataset without outliers and the dataset with
outliers replaced by the median.

Example: ordermetrics report -f orders.csv --format html --out report.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.OutOrStdout(), s, format, out)
		},
	}

	cmd.Flags().StringVar(&format, "format", "md", "Output format: md|html|json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	return cmd
}

func runReport(w io.Writer, s *session, format, out string) error {
	a, _, err := s.load()
	if err != nil {
		return err
	}
	r, err := report.Build(a)
	if err != nil {
		return err
	}

	var body []byte
	switch format {
	case "md", "markdown":
		body = []byte(r.Markdown())
	case "html":
		body = r.HTML()
	case "json":
		if body, err = r.JSON(); err != nil {
			return err
		}
		body = append(body, '\n')
	default:
		return errors.InvalidInput("--format must be md, html or json")
	}

	if out == "" {
		_, err := w.Write(body)
		return err
	}
	if err := os.WriteFile(out, body, 0o644); err != nil {
		return errors.IOError("failed to write "+out, err)
	}
	s.logger.Info("Report %s written to %s", r.ID, out)
	return nil
}

func newGenerateCmd(s *session) *cobra.Command {
	gen := testkit.DefaultOrderConfig()
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic order table with injected outliers",
		Long: `Write a synthetic order table (order_id, order_amount, total_items) with
lognormal amounts and a fraction of inflated outlier orders.

Example: ordermetrics generate --rows 10000 --seed 7 --out orders.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.InvalidInput("--out is required")
			}
			if gen.OrderCount <= 0 {
				return errors.InvalidInput("--rows must be positive")
			}
			df := testkit.NewOrderGenerator(gen).Frame()
			if err := excel.WriteFile(df, out); err != nil {
				return err
			}
			s.logger.Debug("Generated %d orders with seed %d", gen.OrderCount, gen.Seed)
			fmt.Fprintf(cmd.OutOrStdout(), "%d orders written to %s\n", df.Nrow(), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&gen.OrderCount, "rows", gen.OrderCount, "Number of orders")
	cmd.Flags().Int64Var(&gen.Seed, "seed", gen.Seed, "Random seed for deterministic output")
	cmd.Flags().Float64Var(&gen.OutlierRate, "outlier-rate", gen.OutlierRate, "Fraction of orders inflated into outliers")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (.csv or .xlsx)")
	return cmd
}
