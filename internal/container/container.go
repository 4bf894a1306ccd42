package container

import (
	"context"
	"fmt"
	"io"
	"os"

	"imputelab/adapters/chart"
	"imputelab/adapters/excel"
	"imputelab/adapters/imputation"
	"imputelab/adapters/injector"
	"imputelab/adapters/regression"
	"imputelab/adapters/rng"
	"imputelab/app"
	"imputelab/domain/core"
	"imputelab/domain/dataset"
	"imputelab/internal"
	"imputelab/internal/config"
	"imputelab/internal/profiling"
	"imputelab/internal/testkit"
	"imputelab/ports"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Ports
	DatasetSource ports.DatasetReaderPort
	RNG           ports.RNGPort
	Injector      ports.InjectorPort

	// Services
	Scorer      *app.ScoringService
	TrialRunner *app.TrialRunner
	Experiment  *app.ExperimentService
}

// Options overrides process-level defaults, mostly for tests
type Options struct {
	Diagnostics io.Writer // MNAR missing-fraction output; defaults to stdout
	Logger      *internal.Logger
}

// New wires every component from configuration
func New(cfg *config.Config, opts Options) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := opts.Logger
	if logger == nil {
		logger = internal.NewLogger(cfg.Log.Level)
	}
	diagnostics := opts.Diagnostics
	if diagnostics == nil {
		diagnostics = os.Stdout
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		RNG:    rng.NewAdapter(),
	}
	c.DatasetSource = c.newDatasetSource()
	c.Injector = injector.NewInjector(diagnostics, logger)
	c.Scorer = app.NewScoringService(regression.Factory, ports.DefaultModelParams())
	c.TrialRunner = app.NewTrialRunner(c.Injector, c.Scorer, c.RNG, cfg.Experiment.Workers, logger)
	c.Experiment = app.NewExperimentService(c.TrialRunner, imputation.Factory, c.ExperimentConfig(), logger)

	logger.Debug("container initialized (workers=%d, dataset=%s)", cfg.Experiment.Workers, c.DatasetDescription())
	return c, nil
}

// ExperimentConfig converts the loaded configuration into the driver's value object
func (c *Container) ExperimentConfig() app.ExperimentConfig {
	e := c.Config.Experiment
	return app.ExperimentConfig{
		Name:            "imputation",
		Percentages:     append([]int(nil), e.Percentages...),
		MCARStrategies:  append([]string(nil), e.MCARStrategies...),
		MNARStrategies:  append([]string(nil), e.MNARStrategies...),
		TrialsPerColumn: e.TrialsPerColumn,
		ConstantFill:    e.ConstantFill,
		Seed:            e.Seed,
	}
}

// WithExperimentConfig rebuilds the driver with a different parameter set
func (c *Container) WithExperimentConfig(config app.ExperimentConfig) *app.ExperimentService {
	return app.NewExperimentService(c.TrialRunner, imputation.Factory, config, c.Logger)
}

// LoadDataset reads the configured dataset
func (c *Container) LoadDataset(ctx context.Context) (*dataset.Dataset, error) {
	ds, err := c.DatasetSource.ReadDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", c.DatasetDescription(), err)
	}
	c.Logger.Info("dataset loaded: %d rows, %d features, target %s", ds.Rows(), ds.Cols(), ds.TargetName())

	profiles, err := profiling.ProfileDataset(ds)
	if err != nil {
		return nil, fmt.Errorf("failed to profile dataset %s: %w", c.DatasetDescription(), err)
	}
	for _, p := range profiles {
		if p.Empty() {
			c.Logger.Warn("column %d (%s): MNAR removes every value, mean/median will skip it", p.Index, p.Name)
			continue
		}
		c.Logger.Debug("column %d (%s): mean %.3f std %.3f q75 %.3f, MNAR removes %.1f%%",
			p.Index, p.Name, p.Summary.Mean, p.Summary.StdDev, p.Summary.Q75, 100*p.MNARShare)
	}
	return ds, nil
}

// Renderer builds a chart renderer whose files are prefixed with the run id
func (c *Container) Renderer(runID core.RunID) *chart.Renderer {
	config := chart.DefaultRendererConfig(c.Config.Output.Dir)
	config.Prefix = runID.Short()
	return chart.NewRenderer(config, c.Logger)
}

// DatasetDescription names the dataset source for logs
func (c *Container) DatasetDescription() string {
	if c.Config.Data.Path == "" {
		return fmt.Sprintf("synthetic housing (seed %d)", c.Config.Data.SyntheticSeed)
	}
	return c.Config.Data.Path
}

func (c *Container) newDatasetSource() ports.DatasetReaderPort {
	if c.Config.Data.Path == "" {
		housing := testkit.DefaultHousingConfig()
		housing.Seed = c.Config.Data.SyntheticSeed
		return testkit.NewHousingSource(housing)
	}
	return excel.NewDatasetAdapter(excel.ReaderConfig{
		FilePath:     c.Config.Data.Path,
		TargetColumn: c.Config.Data.TargetColumn,
	})
}
