package app

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"testing"

	"imputelab/adapters/imputation"
	"imputelab/adapters/injector"
	"imputelab/adapters/regression"
	"imputelab/domain/core"
	"imputelab/domain/dataset"
	"imputelab/domain/missingness"
	"imputelab/domain/stats"
	"imputelab/internal"
	"imputelab/internal/testkit"
	"imputelab/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func quietLogger() *internal.Logger {
	return internal.NewLoggerWithOutput(internal.LogLevelError, io.Discard)
}

func newRunnerWithRNG(workers int, rngPort ports.RNGPort) *TrialRunner {
	logger := quietLogger()
	scorer := NewScoringService(regression.Factory, ports.DefaultModelParams())
	return NewTrialRunner(injector.NewInjector(io.Discard, logger), scorer, rngPort, workers, logger)
}

func newRunner(workers int) *TrialRunner {
	return newRunnerWithRNG(workers, testkit.NewTestKit(0).RNGAdapter())
}

// fixedClock replaces the wall-clock seed of an RNG port
type fixedClock struct {
	ports.RNGPort
	seed int64
}

func (f fixedClock) TimeSeed() int64 { return f.seed }

func newExperiment(config ExperimentConfig, workers int) *ExperimentService {
	return NewExperimentService(newRunner(workers), imputation.Factory, config, quietLogger())
}

func mustImputer(t *testing.T, name string) ports.ImputerPort {
	t.Helper()
	imp, err := imputation.Factory(name, -100)
	require.NoError(t, err)
	return imp
}

func housing(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := testkit.NewTestKit(1978).Housing()
	require.NoError(t, err)
	return ds
}

func TestRunTrials_BaselineEqualsDirectScore(t *testing.T) {
	ds := housing(t)

	outcome, err := newRunner(2).RunTrials(context.Background(), TrialRequest{Dataset: ds, Spec: missingness.None()})
	require.NoError(t, err)

	model := regression.NewOLS(ports.DefaultModelParams())
	require.NoError(t, model.Fit(ds.FeaturesView(), ds.Targets()))
	pred, err := model.Predict(ds.FeaturesView())
	require.NoError(t, err)
	direct, err := stats.Evaluate(ds.Targets(), pred)
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Stats.GoodnessOfFit.N)
	assert.InDelta(t, direct.GoodnessOfFit, outcome.Stats.GoodnessOfFit.Mean, 1e-12)
	assert.InDelta(t, direct.Loss, outcome.Stats.Loss.Mean, 1e-12)
	assert.Zero(t, outcome.Stats.Loss.StdDev)
}

func TestRunTrials_SampleCount(t *testing.T) {
	ds, err := testkit.NewTestKit(3).LinearDataset(80, 3, 0.5)
	require.NoError(t, err)
	runner := newRunner(3)

	outcome, err := runner.RunTrials(context.Background(), TrialRequest{
		Dataset: ds, Spec: missingness.MCAR(20), Imputer: mustImputer(t, "mean"),
		TrialCount: 7, Stage: StageMCAR, Seed: 11,
	})
	require.NoError(t, err)
	assert.Len(t, outcome.Results, 7)
	assert.Equal(t, 7, outcome.Stats.GoodnessOfFit.N)
	assert.Equal(t, 7, outcome.Stats.Loss.N)

	single, err := runner.RunTrials(context.Background(), TrialRequest{
		Dataset: ds, Spec: missingness.MCAR(20), Imputer: mustImputer(t, "median"),
		TrialCount: 1, Stage: StageMCAR, Seed: 11,
	})
	require.NoError(t, err)
	assert.Zero(t, single.Stats.GoodnessOfFit.StdDev)
	assert.Zero(t, single.Stats.Loss.StdDev)
}

func TestRunTrials_InvalidParameters(t *testing.T) {
	ds, err := testkit.NewTestKit(3).LinearDataset(40, 2, 0.5)
	require.NoError(t, err)
	runner := newRunner(1)
	imp := mustImputer(t, "mean")

	for _, p := range []int{0, 100, -5, 150} {
		_, err := runner.RunTrials(context.Background(), TrialRequest{
			Dataset: ds, Spec: missingness.MCAR(p), Imputer: imp, TrialCount: 3,
		})
		assert.True(t, errors.Is(err, core.ErrInvalidParameter), "p=%d: got %v", p, err)
	}

	_, err = runner.RunTrials(context.Background(), TrialRequest{
		Dataset: ds, Spec: missingness.MCAR(10), Imputer: imp, TrialCount: 0,
	})
	assert.True(t, errors.Is(err, core.ErrInvalidParameter))

	_, err = runner.RunTrials(context.Background(), TrialRequest{Spec: missingness.None()})
	assert.True(t, errors.Is(err, core.ErrInvalidParameter))
}

func TestRunTrials_SeededRunsAreReproducible(t *testing.T) {
	ds, err := testkit.NewTestKit(5).LinearDataset(120, 4, 1)
	require.NoError(t, err)

	req := TrialRequest{
		Dataset: ds, Spec: missingness.MCAR(33), Imputer: mustImputer(t, "mean"),
		TrialCount: 12, Stage: StageMCAR, Namespace: "test", Seed: 99,
	}
	first, err := newRunner(4).RunTrials(context.Background(), req)
	require.NoError(t, err)
	second, err := newRunner(1).RunTrials(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, first.Stats, second.Stats)

	req.Seed = 100
	third, err := newRunner(4).RunTrials(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, first.Results, third.Results)
}

func TestRunTrials_CancelledContext(t *testing.T) {
	ds, err := testkit.NewTestKit(5).LinearDataset(50, 2, 1)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = newRunner(2).RunTrials(ctx, TrialRequest{
		Dataset: ds, Spec: missingness.MCAR(10), Imputer: mustImputer(t, "mean"), TrialCount: 5,
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunTrials_MCARMeanDoesNotBeatBaseline(t *testing.T) {
	ds := housing(t)
	runner := newRunner(4)

	baseline, err := runner.RunTrials(context.Background(), TrialRequest{Dataset: ds, Spec: missingness.None()})
	require.NoError(t, err)

	outcome, err := runner.RunTrials(context.Background(), TrialRequest{
		Dataset: ds, Spec: missingness.MCAR(10), Imputer: mustImputer(t, "mean"),
		TrialCount: 20, Stage: StageMCAR, Seed: 20240611,
	})
	require.NoError(t, err)

	assert.LessOrEqual(t, outcome.Stats.GoodnessOfFit.Mean, baseline.Stats.GoodnessOfFit.Mean+1e-3)
	assert.GreaterOrEqual(t, outcome.Stats.Loss.Mean, baseline.Stats.Loss.Mean-1e-3)
}

func TestScoreMNAR_ConstantFillHurtsSkewedColumn(t *testing.T) {
	ds, err := testkit.NewTestKit(17).SkewedDataset(400)
	require.NoError(t, err)
	svc := newExperiment(DefaultExperimentConfig(), 1)

	mean, err := svc.ScoreMNAR(context.Background(), ds, "mean", 0)
	require.NoError(t, err)
	constant, err := svc.ScoreMNAR(context.Background(), ds, "constant", 0)
	require.NoError(t, err)

	assert.Greater(t, constant.Loss, mean.Loss)
	assert.Less(t, constant.GoodnessOfFit, mean.GoodnessOfFit)
}

func TestRunMNAR_SkipsColumnsWithoutObservedValues(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	features := mat.NewDense(40, 2, nil)
	targets := make([]float64, 40)
	for i := 0; i < 40; i++ {
		flag := 0.0
		if i%10 == 0 {
			flag = 1
		}
		x := r.NormFloat64()
		features.SetRow(i, []float64{x, flag})
		targets[i] = 2*x + flag + 0.1*r.NormFloat64()
	}
	ds, err := dataset.New(features, targets, []string{"x", "flag"}, "y")
	require.NoError(t, err)

	svc := newExperiment(DefaultExperimentConfig(), 1)
	_, err = svc.ScoreMNAR(context.Background(), ds, "mean", 1)
	assert.True(t, errors.Is(err, core.ErrEmptyColumn), "got %v", err)

	table, err := svc.RunMNAR(context.Background(), ds, stats.MetricStats{})
	require.NoError(t, err)

	mean, ok := table.Method("mean")
	require.True(t, ok)
	assert.Equal(t, []int{1}, mean.Skipped)
	assert.Len(t, mean.PerColumn, 1)
	assert.Equal(t, 1, mean.Stats.Loss.N)

	constant, ok := table.Method("constant")
	require.True(t, ok)
	assert.Empty(t, constant.Skipped)
	assert.Len(t, constant.PerColumn, 2)
}

func TestScoreMNAR_ColumnOutOfRange(t *testing.T) {
	ds, err := testkit.NewTestKit(1).LinearDataset(30, 2, 1)
	require.NoError(t, err)
	_, err = newExperiment(DefaultExperimentConfig(), 1).ScoreMNAR(context.Background(), ds, "mean", 2)
	assert.True(t, errors.Is(err, core.ErrInvalidParameter))
}

func TestExperimentService_Run(t *testing.T) {
	ds, err := testkit.NewTestKit(8).LinearDataset(60, 3, 0.5)
	require.NoError(t, err)

	config := DefaultExperimentConfig()
	config.Percentages = []int{10, 50}
	config.TrialsPerColumn = 2
	config.Seed = 5

	rep, err := newExperiment(config, 2).Run(context.Background(), ds)
	require.NoError(t, err)

	assert.False(t, core.ID(rep.RunID).IsEmpty())
	assert.Equal(t, int64(5), rep.Seed)
	assert.Equal(t, 6, rep.TrialCount)
	assert.Equal(t, dataset.Shape{Rows: 60, Cols: 3}, rep.Dataset)

	require.NotNil(t, rep.MCAR)
	require.Len(t, rep.MCAR.Methods, 2)
	assert.Equal(t, "mean", rep.MCAR.Methods[0].Method)
	assert.Equal(t, "median", rep.MCAR.Methods[1].Method)
	for _, m := range rep.MCAR.Methods {
		require.Len(t, m.Points, 2)
		assert.Equal(t, 10, m.Points[0].Key)
		assert.Equal(t, 50, m.Points[1].Key)
		assert.Equal(t, 6, m.Points[0].Stats.Loss.N)
	}

	require.NotNil(t, rep.MNAR)
	require.Len(t, rep.MNAR.Methods, 3)
	assert.Equal(t, "constant", rep.MNAR.Methods[2].Method)
	for _, m := range rep.MNAR.Methods {
		assert.Len(t, m.PerColumn, 3)
		assert.Equal(t, 3, m.Stats.Loss.N)
	}

	assert.Equal(t, rep.MCAR.Baseline, rep.MNAR.Baseline)
	assert.Equal(t, rep.MCAR.Baseline, rep.Baseline())
}

func TestExperimentService_SeededRunIsReproducible(t *testing.T) {
	ds, err := testkit.NewTestKit(8).LinearDataset(50, 2, 0.5)
	require.NoError(t, err)

	config := DefaultExperimentConfig()
	config.Percentages = []int{20}
	config.MNARStrategies = nil
	config.TrialsPerColumn = 3
	config.Seed = 42

	a, err := newExperiment(config, 3).Run(context.Background(), ds)
	require.NoError(t, err)
	b, err := newExperiment(config, 1).Run(context.Background(), ds)
	require.NoError(t, err)

	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.MCAR.Methods, b.MCAR.Methods)
	assert.Nil(t, a.MNAR)
}

func TestExperimentService_ResolveSeed(t *testing.T) {
	runner := newRunnerWithRNG(1, fixedClock{RNGPort: testkit.NewTestKit(0).RNGAdapter(), seed: 424242})

	unseeded := NewExperimentService(runner, imputation.Factory, DefaultExperimentConfig(), quietLogger())
	assert.Equal(t, int64(424242), unseeded.ResolveSeed())

	config := DefaultExperimentConfig()
	config.Seed = 9
	seeded := NewExperimentService(runner, imputation.Factory, config, quietLogger())
	assert.Equal(t, int64(9), seeded.ResolveSeed())
}

func TestExperimentService_InvalidConfig(t *testing.T) {
	ds, err := testkit.NewTestKit(8).LinearDataset(20, 2, 0.5)
	require.NoError(t, err)

	config := DefaultExperimentConfig()
	config.Percentages = []int{10, 100}
	_, err = newExperiment(config, 1).Run(context.Background(), ds)
	assert.True(t, errors.Is(err, core.ErrInvalidParameter))

	config = DefaultExperimentConfig()
	config.MCARStrategies = []string{"knn"}
	config.TrialsPerColumn = 1
	_, err = newExperiment(config, 1).Run(context.Background(), ds)
	assert.True(t, errors.Is(err, core.ErrInvalidStrategy))
}

func TestScoringService_Holdout(t *testing.T) {
	ds, err := testkit.NewTestKit(4).LinearDataset(200, 3, 0.3)
	require.NoError(t, err)
	train, test, err := ds.TrainTestSplit(0.25, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	result, err := NewScoringService(regression.Factory, ports.DefaultModelParams()).ScoreHoldout(context.Background(), train, test)
	require.NoError(t, err)
	assert.Greater(t, result.GoodnessOfFit, 0.9)
}

func TestScoringService_FitErrorOnMissingValues(t *testing.T) {
	ds, err := testkit.NewTestKit(4).LinearDataset(20, 2, 0.3)
	require.NoError(t, err)
	features := ds.Features()
	features.Set(0, 0, missingness.Marker())

	_, err = NewScoringService(regression.Factory, ports.DefaultModelParams()).Score(context.Background(), features, ds.Targets())
	assert.True(t, errors.Is(err, core.ErrFitError))

	_, err = NewScoringService(regression.Factory, ports.DefaultModelParams()).Score(context.Background(), ds.Features(), ds.Targets()[:5])
	assert.True(t, errors.Is(err, core.ErrFitError))
	assert.True(t, errors.Is(err, core.ErrShapeMismatch))
}
