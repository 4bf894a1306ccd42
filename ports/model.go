package ports

import (
	"gonum.org/v1/gonum/mat"
)

// ModelParams is an immutable hyperparameter set passed to a model factory
type ModelParams struct {
	FitIntercept bool `json:"fit_intercept"`
}

// DefaultModelParams mirrors an ordinary least squares fit with intercept
func DefaultModelParams() ModelParams {
	return ModelParams{FitIntercept: true}
}

// RegressionModel is a fit/predict regression capability
type RegressionModel interface {
	Fit(features mat.Matrix, targets []float64) error
	Predict(features mat.Matrix) ([]float64, error)
}

// ModelFactory builds a fresh, unfitted model from params
type ModelFactory func(params ModelParams) (RegressionModel, error)
