package main

import (
	"fmt"
	"math"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ordermetrics/adapters/excel"
	"ordermetrics/internal"
	"ordermetrics/internal/analysis"
	"ordermetrics/internal/config"
	"ordermetrics/internal/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session carries what every subcommand needs once flags and config are resolved
type session struct {
	cfg    *config.Config
	logger *internal.Logger

	file   string
	sheet  string
	column string
	fence  float64
}

func newRootCmd() *cobra.Command {
	s := &session{logger: internal.DefaultLogger}

	rootCmd := &cobra.Command{
		Use:   "ordermetrics",
		Short: "Descriptive statistics and IQR outlier treatment for order values",
		Long: `ordermetrics analyzes one numeric column of an order table (CSV or Excel).

Defaults come from the environment (a .env file is loaded when present):
- ORDERMETRICS_FILE, ORDERMETRICS_SHEET, ORDERMETRICS_COLUMN (default: order_amount)
- ORDERMETRICS_FENCE_MULTIPLIER (default: 1, i.e. fences at Q1-IQR and Q3+IQR)
- PLOT_WIDTH_CM, PLOT_HEIGHT_CM, PLOT_BINS
- LOG_LEVEL (ERROR|WARN|INFO|DEBUG|TRACE)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.init(cmd.Flags().Changed("fence"))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&s.file, "file", "f", "", "CSV or Excel file to analyze")
	rootCmd.PersistentFlags().StringVar(&s.sheet, "sheet", "", "Excel worksheet (default: first sheet)")
	rootCmd.PersistentFlags().StringVarP(&s.column, "column", "c", "", "Column to analyze")
	rootCmd.PersistentFlags().Float64Var(&s.fence, "fence", 0, "IQR multiplier for outlier fences (default: ORDERMETRICS_FENCE_MULTIPLIER or 1)")

	rootCmd.AddCommand(
		newStatsCmd(s),
		newOutliersCmd(s),
		newCleanCmd(s),
		newPlotCmd(s),
		newReportCmd(s),
		newGenerateCmd(s),
	)

	return rootCmd
}

// init resolves config and flag defaults; fenceSet reports an explicit --fence
func (s *session) init(fenceSet bool) error {
	if err := godotenv.Load(); err != nil {
		s.logger.Trace("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s.cfg = cfg
	s.logger.SetLevel(cfg.Log.Level)

	if s.file == "" {
		s.file = cfg.Data.File
	}
	if s.sheet == "" {
		s.sheet = cfg.Data.Sheet
	}
	if s.column == "" {
		s.column = cfg.Data.Column
	}
	if !fenceSet {
		s.fence = cfg.Data.FenceMultiplier
	} else if s.fence <= 0 || math.IsInf(s.fence, 0) || math.IsNaN(s.fence) {
		return errors.InvalidInput("--fence must be a positive number")
	}
	return nil
}

// load reads the dataset and builds the analyzer over it
func (s *session) load() (*analysis.StatsAnalyzer, dataframe.DataFrame, error) {
	if s.file == "" {
		return nil, dataframe.DataFrame{}, errors.InvalidInput("no input file: pass --file or set ORDERMETRICS_FILE")
	}

	df, err := excel.NewDataReader(s.file).Sheet(s.sheet).WithLogger(s.logger).ReadFrame()
	if err != nil {
		return nil, dataframe.DataFrame{}, errors.Wrapf(err, "failed to load %s", s.file)
	}
	s.logger.Info("Loaded %s (%d rows, %d columns), analyzing %q", s.file, df.Nrow(), df.Ncol(), s.column)

	return analysis.NewStatsAnalyzer(df, s.column, analysis.WithFenceMultiplier(s.fence)), df, nil
}
