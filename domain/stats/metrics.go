package stats

import (
	"math"

	"imputelab/domain/core"

	"gonum.org/v1/gonum/stat"
)

// RSquared is the coefficient of determination of predictions against targets
func RSquared(targets, predictions []float64) float64 {
	return stat.RSquaredFrom(predictions, targets, nil)
}

// MeanSquaredError is the average squared residual
func MeanSquaredError(targets, predictions []float64) float64 {
	if len(targets) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i, y := range targets {
		d := y - predictions[i]
		sum += d * d
	}
	return sum / float64(len(targets))
}

// Evaluate scores predictions with both metrics
func Evaluate(targets, predictions []float64) (TrialResult, error) {
	if len(targets) != len(predictions) {
		return TrialResult{}, core.NewShapeMismatchError("predictions", len(targets), len(predictions))
	}
	if len(targets) == 0 {
		return TrialResult{}, core.NewInvalidParameterError("targets", "empty")
	}
	result := TrialResult{
		GoodnessOfFit: RSquared(targets, predictions),
		Loss:          MeanSquaredError(targets, predictions),
	}
	if math.IsNaN(result.Loss) || math.IsInf(result.Loss, 0) {
		return TrialResult{}, core.NewFitError("non-finite loss", nil)
	}
	return result, nil
}
