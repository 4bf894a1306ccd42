package app

import (
	"context"
	"errors"
	"fmt"

	"imputelab/domain/core"
	"imputelab/domain/dataset"
	"imputelab/domain/stats"
	"imputelab/ports"

	"gonum.org/v1/gonum/mat"
)

// ScoringService fits a fresh regression model per call and scores it
type ScoringService struct {
	factory ports.ModelFactory
	params  ports.ModelParams
}

// NewScoringService creates a scoring service
func NewScoringService(factory ports.ModelFactory, params ports.ModelParams) *ScoringService {
	return &ScoringService{
		factory: factory,
		params:  params,
	}
}

// Params returns the model hyperparameters used for every fit
func (s *ScoringService) Params() ports.ModelParams {
	return s.params
}

// Score fits on (features, targets) and evaluates on the same data.
// Evaluation is in-sample on purpose; ScoreHoldout fits and scores on separate rows.
func (s *ScoringService) Score(ctx context.Context, features mat.Matrix, targets []float64) (stats.TrialResult, error) {
	if err := ctx.Err(); err != nil {
		return stats.TrialResult{}, err
	}
	model, err := s.fit(features, targets)
	if err != nil {
		return stats.TrialResult{}, err
	}
	predictions, err := model.Predict(features)
	if err != nil {
		return stats.TrialResult{}, asFitError(err)
	}
	result, err := stats.Evaluate(targets, predictions)
	if err != nil {
		return stats.TrialResult{}, asFitError(err)
	}
	return result, nil
}

// ScoreDataset scores a complete dataset
func (s *ScoringService) ScoreDataset(ctx context.Context, ds *dataset.Dataset) (stats.TrialResult, error) {
	return s.Score(ctx, ds.FeaturesView(), ds.Targets())
}

// ScoreHoldout fits on train and evaluates on test
func (s *ScoringService) ScoreHoldout(ctx context.Context, train, test *dataset.Dataset) (stats.TrialResult, error) {
	if err := ctx.Err(); err != nil {
		return stats.TrialResult{}, err
	}
	if train.Cols() != test.Cols() {
		return stats.TrialResult{}, core.NewShapeMismatchError("holdout columns", train.Cols(), test.Cols())
	}
	model, err := s.fit(train.FeaturesView(), train.Targets())
	if err != nil {
		return stats.TrialResult{}, err
	}
	predictions, err := model.Predict(test.FeaturesView())
	if err != nil {
		return stats.TrialResult{}, asFitError(err)
	}
	return stats.Evaluate(test.Targets(), predictions)
}

func (s *ScoringService) fit(features mat.Matrix, targets []float64) (ports.RegressionModel, error) {
	model, err := s.factory(s.params)
	if err != nil {
		return nil, fmt.Errorf("failed to build model: %w", err)
	}
	if err := model.Fit(features, targets); err != nil {
		return nil, asFitError(err)
	}
	return model, nil
}

// asFitError makes every model failure match core.ErrFitError while keeping the original cause
func asFitError(err error) error {
	if errors.Is(err, core.ErrFitError) {
		return err
	}
	return fmt.Errorf("%w: %w", core.ErrFitError, err)
}
