package stats

import (
	"fmt"

	"imputelab/domain/core"

	mstats "github.com/montanaflynn/stats"
)

// Metric names one of the two scores reported per trial
type Metric string

const (
	GoodnessOfFit Metric = "goodness_of_fit" // coefficient of determination (R²)
	Loss          Metric = "loss"            // mean squared error
)

// Metrics lists the reported metrics in display order
var Metrics = []Metric{Loss, GoodnessOfFit}

// ParseMetric converts a metric name into a Metric
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case GoodnessOfFit, Loss:
		return Metric(s), nil
	case "r2", "goodness":
		return GoodnessOfFit, nil
	case "mse":
		return Loss, nil
	}
	return "", core.NewInvalidParameterError("metric", s)
}

// Label returns a human readable title-cased metric name
func (m Metric) Label() string {
	switch m {
	case GoodnessOfFit:
		return "Goodness Of Fit"
	case Loss:
		return "Loss"
	}
	return string(m)
}

// TrialResult is the outcome of one inject → impute → score trial
type TrialResult struct {
	GoodnessOfFit float64 `json:"goodness_of_fit"`
	Loss          float64 `json:"loss"`
}

// Value returns the named metric of a trial
func (r TrialResult) Value(m Metric) float64 {
	if m == GoodnessOfFit {
		return r.GoodnessOfFit
	}
	return r.Loss
}

// Aggregate is the mean and population standard deviation of a metric over a batch of trials
type Aggregate struct {
	Mean   float64 `json:"avg"`
	StdDev float64 `json:"std"`
	N      int     `json:"n"`
}

// Lower returns mean minus one standard deviation
func (a Aggregate) Lower() float64 { return a.Mean - a.StdDev }

// Upper returns mean plus one standard deviation
func (a Aggregate) Upper() float64 { return a.Mean + a.StdDev }

// NewAggregate summarises a non-empty sample. StdDev divides by N, not N-1.
func NewAggregate(sample []float64) (Aggregate, error) {
	if len(sample) == 0 {
		return Aggregate{}, core.ErrEmptyBatch
	}
	mean, err := mstats.Mean(sample)
	if err != nil {
		return Aggregate{}, fmt.Errorf("mean: %w", err)
	}
	std, err := mstats.StandardDeviationPopulation(sample)
	if err != nil {
		return Aggregate{}, fmt.Errorf("standard deviation: %w", err)
	}
	return Aggregate{Mean: mean, StdDev: std, N: len(sample)}, nil
}

// MetricStats holds one Aggregate per metric
type MetricStats struct {
	GoodnessOfFit Aggregate `json:"goodness_of_fit"`
	Loss          Aggregate `json:"loss"`
}

// Get returns the aggregate for a metric
func (s MetricStats) Get(m Metric) Aggregate {
	if m == GoodnessOfFit {
		return s.GoodnessOfFit
	}
	return s.Loss
}

// Summarize aggregates a batch of trial results into MetricStats
func Summarize(results []TrialResult) (MetricStats, error) {
	if len(results) == 0 {
		return MetricStats{}, core.ErrEmptyBatch
	}
	r2 := make([]float64, len(results))
	mse := make([]float64, len(results))
	for i, r := range results {
		r2[i] = r.GoodnessOfFit
		mse[i] = r.Loss
	}

	fit, err := NewAggregate(r2)
	if err != nil {
		return MetricStats{}, err
	}
	loss, err := NewAggregate(mse)
	if err != nil {
		return MetricStats{}, err
	}
	return MetricStats{GoodnessOfFit: fit, Loss: loss}, nil
}
