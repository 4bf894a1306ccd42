package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"imputelab/domain/core"
	"imputelab/domain/dataset"
	"imputelab/domain/missingness"
	"imputelab/domain/run"
	"imputelab/domain/stats"
	"imputelab/internal"
	"imputelab/ports"
)

// Stage names used to namespace random streams
const (
	StageMCAR = "mcar"
	StageMNAR = "mnar"
)

// ExperimentConfig is the immutable parameter set of one experiment run
type ExperimentConfig struct {
	Name            string
	Percentages     []int
	MCARStrategies  []string
	MNARStrategies  []string
	TrialsPerColumn int
	ConstantFill    float64
	Seed            int64 // 0 picks a time-derived seed
}

// DefaultExperimentConfig returns the standard sweep
func DefaultExperimentConfig() ExperimentConfig {
	return ExperimentConfig{
		Name:            "imputation",
		Percentages:     []int{1, 5, 10, 20, 33, 50},
		MCARStrategies:  []string{"mean", "median"},
		MNARStrategies:  []string{"mean", "median", "constant"},
		TrialsPerColumn: 100,
		ConstantFill:    -100,
	}
}

// Validate checks the config before any work is done
func (c ExperimentConfig) Validate() error {
	for _, p := range c.Percentages {
		if err := missingness.ValidatePercentage(p); err != nil {
			return err
		}
	}
	if len(c.MCARStrategies) > 0 && c.TrialsPerColumn < 1 {
		return core.NewInvalidParameterError("trials per column", fmt.Sprintf("%d must be at least 1", c.TrialsPerColumn))
	}
	return nil
}

// ExperimentService drives the baseline, MCAR sweep and MNAR sweep
type ExperimentService struct {
	runner   *TrialRunner
	imputers ports.ImputerFactory
	config   ExperimentConfig
	logger   *internal.Logger
}

// NewExperimentService creates an experiment driver
func NewExperimentService(runner *TrialRunner, imputers ports.ImputerFactory, config ExperimentConfig, logger *internal.Logger) *ExperimentService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if config.Name == "" {
		config.Name = "imputation"
	}
	return &ExperimentService{
		runner:   runner,
		imputers: imputers,
		config:   config,
		logger:   logger.With("Experiment"),
	}
}

// Config returns the experiment parameters
func (s *ExperimentService) Config() ExperimentConfig {
	return s.config
}

// ResolveSeed returns the configured seed, or a time-derived one when unset
func (s *ExperimentService) ResolveSeed() int64 {
	if s.config.Seed != 0 {
		return s.config.Seed
	}
	seed := s.runner.TimeSeed()
	s.logger.Info("no seed configured, using %d", seed)
	return seed
}

// TrialCount is the number of MCAR trials per (method, percentage) for ds
func (s *ExperimentService) TrialCount(ds *dataset.Dataset) int {
	return ds.Cols() * s.config.TrialsPerColumn
}

// Run executes the full experiment and returns the report
func (s *ExperimentService) Run(ctx context.Context, ds *dataset.Dataset) (*run.Report, error) {
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	started := time.Now()
	rep := &run.Report{
		RunID:      core.NewRunID(),
		Seed:       s.ResolveSeed(),
		Dataset:    ds.Shape(),
		TrialCount: s.TrialCount(ds),
		StartedAt:  started,
	}
	s.logger.Info("run %s: dataset %d×%d, seed %d", rep.RunID.Short(), rep.Dataset.Rows, rep.Dataset.Cols, rep.Seed)

	baseline, err := s.RunBaseline(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}

	if len(s.config.MCARStrategies) > 0 {
		rep.MCAR, err = s.RunMCAR(ctx, ds, baseline, rep.Seed)
		if err != nil {
			return nil, fmt.Errorf("mcar sweep: %w", err)
		}
	}
	if len(s.config.MNARStrategies) > 0 {
		rep.MNAR, err = s.RunMNAR(ctx, ds, baseline)
		if err != nil {
			return nil, fmt.Errorf("mnar sweep: %w", err)
		}
	}

	rep.Duration = time.Since(started)
	s.logger.Info("run %s finished in %s", rep.RunID.Short(), rep.Duration.Round(time.Millisecond))
	return rep, nil
}

// RunBaseline scores the complete dataset once
func (s *ExperimentService) RunBaseline(ctx context.Context, ds *dataset.Dataset) (stats.MetricStats, error) {
	outcome, err := s.runner.RunTrials(ctx, TrialRequest{
		Dataset:    ds,
		Spec:       missingness.None(),
		TrialCount: 1,
	})
	if err != nil {
		return stats.MetricStats{}, err
	}
	s.logger.Info("baseline: r2=%.4f mse=%.4f", outcome.Stats.GoodnessOfFit.Mean, outcome.Stats.Loss.Mean)
	return outcome.Stats, nil
}

// RunMCAR sweeps every MCAR strategy over every percentage, in configured order
func (s *ExperimentService) RunMCAR(ctx context.Context, ds *dataset.Dataset, baseline stats.MetricStats, seed int64) (*stats.ResultTable, error) {
	table := &stats.ResultTable{Baseline: baseline}
	for _, name := range s.config.MCARStrategies {
		method := stats.MethodResults{Method: name}
		for _, p := range s.config.Percentages {
			agg, err := s.ScoreMCAR(ctx, ds, name, p, s.TrialCount(ds), seed)
			if err != nil {
				return nil, fmt.Errorf("%s at %d%%: %w", name, p, err)
			}
			method.Points = append(method.Points, stats.Point{Key: p, Stats: agg})
		}
		table.Methods = append(table.Methods, method)
	}
	return table, nil
}

// ScoreMCAR runs trials MCAR trials at one percentage with one strategy
func (s *ExperimentService) ScoreMCAR(ctx context.Context, ds *dataset.Dataset, strategy string, percentage, trials int, seed int64) (stats.MetricStats, error) {
	imputer, err := s.imputers(strategy, s.config.ConstantFill)
	if err != nil {
		return stats.MetricStats{}, err
	}
	outcome, err := s.runner.RunTrials(ctx, TrialRequest{
		Dataset:    ds,
		Spec:       missingness.MCAR(percentage),
		Imputer:    imputer,
		TrialCount: trials,
		Stage:      StageMCAR,
		Namespace:  s.config.Name,
		Seed:       seed,
	})
	if err != nil {
		return stats.MetricStats{}, err
	}
	s.logger.Info("mcar %s %d%%: r2=%.4f±%.4f mse=%.4f±%.4f", strategy, percentage,
		outcome.Stats.GoodnessOfFit.Mean, outcome.Stats.GoodnessOfFit.StdDev,
		outcome.Stats.Loss.Mean, outcome.Stats.Loss.StdDev)
	return outcome.Stats, nil
}

// RunMNAR scores every MNAR strategy once per column and aggregates across columns.
// A column whose upper quartile covers every row cannot be imputed by mean or median;
// it is recorded in Skipped and left out of that method's aggregate.
func (s *ExperimentService) RunMNAR(ctx context.Context, ds *dataset.Dataset, baseline stats.MetricStats) (*stats.MNARTable, error) {
	table := &stats.MNARTable{Baseline: baseline}
	for _, name := range s.config.MNARStrategies {
		method := stats.MNARMethod{Method: name}
		results := make([]stats.TrialResult, 0, ds.Cols())
		for col := 0; col < ds.Cols(); col++ {
			result, err := s.ScoreMNAR(ctx, ds, name, col)
			if errors.Is(err, core.ErrEmptyColumn) {
				s.logger.Warn("mnar %s: column %d has no observed values left, skipped", name, col)
				method.Skipped = append(method.Skipped, col)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("%s on column %d: %w", name, col, err)
			}
			results = append(results, result)
			method.PerColumn = append(method.PerColumn, stats.ColumnResult{Column: col, Result: result})
		}
		agg, err := stats.Summarize(results)
		if err != nil {
			return nil, fmt.Errorf("mnar %s: %w", name, err)
		}
		method.Stats = agg
		s.logger.Info("mnar %s: r2=%.4f±%.4f mse=%.4f±%.4f", name,
			agg.GoodnessOfFit.Mean, agg.GoodnessOfFit.StdDev, agg.Loss.Mean, agg.Loss.StdDev)
		table.Methods = append(table.Methods, method)
	}
	return table, nil
}

// ScoreMNAR blanks the upper quartile of one column, imputes and scores once
func (s *ExperimentService) ScoreMNAR(ctx context.Context, ds *dataset.Dataset, strategy string, column int) (stats.TrialResult, error) {
	imputer, err := s.imputers(strategy, s.config.ConstantFill)
	if err != nil {
		return stats.TrialResult{}, err
	}
	spec := missingness.MNAR(column)
	if err := spec.Validate(ds.Cols()); err != nil {
		return stats.TrialResult{}, err
	}
	return s.runner.RunOnce(ctx, TrialRequest{
		Dataset: ds,
		Spec:    spec,
		Imputer: imputer,
		Stage:   StageMNAR,
	}, nil)
}
