package app

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"imputelab/domain/core"
	"imputelab/domain/dataset"
	"imputelab/domain/missingness"
	"imputelab/domain/stats"
	"imputelab/internal"
	"imputelab/ports"

	"golang.org/x/sync/errgroup"
)

// TrialRequest describes one batch of inject → impute → score trials
type TrialRequest struct {
	Dataset    *dataset.Dataset
	Spec       missingness.Spec
	Imputer    ports.ImputerPort
	TrialCount int
	Stage      string // stream namespace, e.g. "mcar"
	Namespace  string // experiment-wide stream namespace
	Seed       int64
}

// TrialOutcome holds the aggregate and the per-trial results in trial order
type TrialOutcome struct {
	Stats   stats.MetricStats   `json:"stats"`
	Results []stats.TrialResult `json:"results"`
}

// TrialRunner executes independent trials, possibly in parallel
type TrialRunner struct {
	injector ports.InjectorPort
	scorer   *ScoringService
	rngPort  ports.RNGPort
	workers  int
	logger   *internal.Logger
}

// NewTrialRunner creates a trial runner. workers < 1 means runtime.NumCPU().
func NewTrialRunner(injector ports.InjectorPort, scorer *ScoringService, rngPort ports.RNGPort, workers int, logger *internal.Logger) *TrialRunner {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &TrialRunner{
		injector: injector,
		scorer:   scorer,
		rngPort:  rngPort,
		workers:  workers,
		logger:   logger.With("TrialRunner"),
	}
}

// TimeSeed draws a fresh base seed from the RNG port
func (r *TrialRunner) TimeSeed() int64 {
	return r.rngPort.TimeSeed()
}

// Scorer returns the scoring service trials are evaluated with
func (r *TrialRunner) Scorer() *ScoringService {
	return r.scorer
}

// RunTrials scores the raw data once for the baseline policy. Otherwise it runs
// TrialCount independent trials and aggregates them; each trial draws from its own
// stream and writes its result at its own index.
func (r *TrialRunner) RunTrials(ctx context.Context, req TrialRequest) (*TrialOutcome, error) {
	if req.Dataset == nil {
		return nil, core.NewInvalidParameterError("dataset", "nil")
	}
	if err := req.Spec.Validate(req.Dataset.Cols()); err != nil {
		return nil, err
	}

	if req.Spec.IsBaseline() {
		result, err := r.scorer.ScoreDataset(ctx, req.Dataset)
		if err != nil {
			return nil, err
		}
		return summarize([]stats.TrialResult{result})
	}

	if req.TrialCount < 1 {
		return nil, core.NewInvalidParameterError("trial count", fmt.Sprintf("%d must be at least 1", req.TrialCount))
	}
	if req.Imputer == nil {
		return nil, core.NewInvalidParameterError("imputer", "nil")
	}

	results := make([]stats.TrialResult, req.TrialCount)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for t := 0; t < req.TrialCount; t++ {
		t := t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			key := fmt.Sprintf("%s/%s/%d", req.Imputer.Name(), req.Spec, t)
			rng, err := r.rngPort.Stream(gctx, req.Namespace, req.Stage, key, req.Seed)
			if err != nil {
				return fmt.Errorf("trial %d: %w", t, err)
			}
			result, err := r.runOne(gctx, req, rng)
			if err != nil {
				return fmt.Errorf("trial %d: %w", t, err)
			}
			results[t] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Debug("%s %s: %d trials complete", req.Imputer.Name(), req.Spec, req.TrialCount)
	return summarize(results)
}

// RunOnce performs a single inject → impute → score pass. rng may be nil for MNAR.
func (r *TrialRunner) RunOnce(ctx context.Context, req TrialRequest, rng *rand.Rand) (stats.TrialResult, error) {
	if req.Dataset == nil {
		return stats.TrialResult{}, core.NewInvalidParameterError("dataset", "nil")
	}
	if req.Imputer == nil {
		return stats.TrialResult{}, core.NewInvalidParameterError("imputer", "nil")
	}
	return r.runOne(ctx, req, rng)
}

func (r *TrialRunner) runOne(ctx context.Context, req TrialRequest, rng *rand.Rand) (stats.TrialResult, error) {
	injected, err := r.injector.Inject(req.Dataset.FeaturesView(), req.Spec, rng)
	if err != nil {
		return stats.TrialResult{}, err
	}
	imputed, err := req.Imputer.Impute(injected)
	if err != nil {
		return stats.TrialResult{}, err
	}
	return r.scorer.Score(ctx, imputed, req.Dataset.Targets())
}

func summarize(results []stats.TrialResult) (*TrialOutcome, error) {
	agg, err := stats.Summarize(results)
	if err != nil {
		return nil, err
	}
	return &TrialOutcome{Stats: agg, Results: results}, nil
}
