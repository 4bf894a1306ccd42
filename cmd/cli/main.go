package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"imputelab/domain/stats"
	"imputelab/internal/config"
	"imputelab/internal/container"
	"imputelab/internal/profiling"
	"imputelab/internal/report"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// globalOptions are persistent flags that override environment configuration
type globalOptions struct {
	dataset string
	target  string
	seed    int64
	out     string
}

func main() {
	_ = godotenv.Load()

	rootCmd := newRootCmd()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	var opts globalOptions
	rootCmd := &cobra.Command{
		Use:   "imputelab",
		Short: "Measure how imputation strategies degrade a linear regression under missing data",
		Long: `Injects missing values into a complete dataset (MCAR or MNAR), imputes them with
mean, median or a constant, and reports R² and MSE of an ordinary least squares fit.

Configuration is read from the environment (and .env); flags override it.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.dataset, "dataset", "", "Dataset file (.csv, .xlsx, .json); synthetic housing data when empty")
	rootCmd.PersistentFlags().StringVar(&opts.target, "target", "", "Target column name (default MEDV, last column if absent)")
	rootCmd.PersistentFlags().Int64Var(&opts.seed, "seed", 0, "Base random seed (0 = time-derived)")
	rootCmd.PersistentFlags().StringVar(&opts.out, "out", "", "Chart output directory")

	rootCmd.AddCommand(
		newRunCmd(&opts),
		newBaselineCmd(&opts),
		newMCARCmd(&opts),
		newMNARCmd(&opts),
		newProfileCmd(&opts),
	)
	return rootCmd
}

// setup loads configuration, applies flag overrides and wires the container
func setup(cmd *cobra.Command, opts *globalOptions) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cmd.Flag("dataset").Changed {
		cfg.Data.Path = opts.dataset
	}
	if cmd.Flag("target").Changed {
		cfg.Data.TargetColumn = opts.target
	}
	if cmd.Flag("seed").Changed {
		cfg.Experiment.Seed = opts.seed
	}
	if cmd.Flag("out").Changed {
		cfg.Output.Dir = opts.out
	}
	return container.New(cfg, container.Options{Diagnostics: cmd.ErrOrStderr()})
}

func newRunCmd(opts *globalOptions) *cobra.Command {
	var noCharts bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the baseline, the MCAR sweep and the MNAR sweep, then draw charts",
		Long: `Run the full experiment.

Example: imputelab run --seed 42 --out ./charts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ds, err := c.LoadDataset(ctx)
			if err != nil {
				return err
			}

			rep, err := c.Experiment.Run(ctx, ds)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(rep); err != nil {
					return err
				}
			} else if err := report.PrintSummary(cmd.OutOrStdout(), rep); err != nil {
				return err
			}

			if noCharts || !c.Config.Output.RenderCharts {
				return nil
			}
			paths, err := c.Renderer(rep.RunID).RenderReport(rep)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintf(cmd.ErrOrStderr(), "chart: %s\n", p)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCharts, "no-charts", false, "Skip chart rendering")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON instead of tables")
	return cmd
}

func newBaselineCmd(opts *globalOptions) *cobra.Command {
	var holdout float64

	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Score the complete dataset without any missing values",
		Long: `Score the complete dataset. With --holdout the model is fit on a random
training split and scored on the held-out rows instead of in-sample.

Example: imputelab baseline --holdout 0.25 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ds, err := c.LoadDataset(ctx)
			if err != nil {
				return err
			}

			if holdout > 0 {
				rng, err := c.RNG.SeededStream(ctx, "holdout", c.Experiment.ResolveSeed())
				if err != nil {
					return err
				}
				train, test, err := ds.TrainTestSplit(holdout, rng)
				if err != nil {
					return err
				}
				result, err := c.Scorer.ScoreHoldout(ctx, train, test)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "holdout (%d train / %d test): R2 %.4f  MSE %.4f\n",
					train.Rows(), test.Rows(), result.GoodnessOfFit, result.Loss)
				return nil
			}

			agg, err := c.Experiment.RunBaseline(ctx, ds)
			if err != nil {
				return err
			}
			printStats(cmd, "baseline", agg)
			return nil
		},
	}

	cmd.Flags().Float64Var(&holdout, "holdout", 0, "Fraction of rows held out for scoring (0 = in-sample)")
	return cmd
}

func newMCARCmd(opts *globalOptions) *cobra.Command {
	var percent int
	var strategy string
	var trials int

	cmd := &cobra.Command{
		Use:   "mcar",
		Short: "Run MCAR trials at one missing percentage with one strategy",
		Long: `Remove --percent% of the rows of one random column per trial, impute, score,
and report the mean and population standard deviation over all trials.

Example: imputelab mcar --percent 20 --strategy median --trials 200 --seed 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ds, err := c.LoadDataset(ctx)
			if err != nil {
				return err
			}
			if trials == 0 {
				trials = c.Experiment.TrialCount(ds)
			}

			agg, err := c.Experiment.ScoreMCAR(ctx, ds, strategy, percent, trials, c.Experiment.ResolveSeed())
			if err != nil {
				return err
			}
			printStats(cmd, fmt.Sprintf("mcar %s %d%%", strategy, percent), agg)
			return nil
		},
	}

	cmd.Flags().IntVar(&percent, "percent", 10, "Missing percentage, a whole number in (0, 100)")
	cmd.Flags().StringVar(&strategy, "strategy", "mean", "Imputation strategy: mean|median|constant")
	cmd.Flags().IntVar(&trials, "trials", 0, "Number of trials (0 = columns × TRIALS_PER_COLUMN)")
	return cmd
}

func newMNARCmd(opts *globalOptions) *cobra.Command {
	var strategy string
	var column int

	cmd := &cobra.Command{
		Use:   "mnar",
		Short: "Blank the upper quartile of each column in turn, impute and score",
		Long: `Remove every value at or above the column's 0.75 quantile, impute, and score once.
Without --column every column is tried and the scores are aggregated.

Example: imputelab mnar --strategy constant --column 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ds, err := c.LoadDataset(ctx)
			if err != nil {
				return err
			}

			if column >= 0 {
				result, err := c.Experiment.ScoreMNAR(ctx, ds, strategy, column)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "mnar %s column %d (%s): R2 %.4f  MSE %.4f\n",
					strategy, column, ds.FeatureNames()[column], result.GoodnessOfFit, result.Loss)
				return nil
			}

			experiment := c.ExperimentConfig()
			experiment.MNARStrategies = []string{strategy}
			svc := c.WithExperimentConfig(experiment)

			baseline, err := svc.RunBaseline(ctx, ds)
			if err != nil {
				return err
			}
			table, err := svc.RunMNAR(ctx, ds, baseline)
			if err != nil {
				return err
			}
			printStats(cmd, "baseline", baseline)
			for _, m := range table.Methods {
				printStats(cmd, "mnar "+m.Method, m.Stats)
				if len(m.Skipped) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "  skipped columns %v\n", m.Skipped)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "mean", "Imputation strategy: mean|median|constant")
	cmd.Flags().IntVar(&column, "column", -1, "Single column index (-1 = all columns)")
	return cmd
}

func newProfileCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Describe each feature column and how much of it MNAR would remove",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			ds, err := c.LoadDataset(cmd.Context())
			if err != nil {
				return err
			}
			profiles, err := profiling.ProfileDataset(ds)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(profiles)
			}
			return profiling.WriteProfiles(cmd.OutOrStdout(), profiles)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print profiles as JSON")
	return cmd
}

func printStats(cmd *cobra.Command, label string, s stats.MetricStats) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s: R2 %.4f ± %.4f  MSE %.4f ± %.4f  (n=%d)\n",
		label,
		s.GoodnessOfFit.Mean, s.GoodnessOfFit.StdDev,
		s.Loss.Mean, s.Loss.StdDev,
		s.Loss.N)
}
