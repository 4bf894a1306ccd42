package imputation

import (
	"fmt"

	"imputelab/domain/core"
	"imputelab/domain/missingness"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

// SimpleImputer replaces missing cells column by column with a statistic of the
// observed values in that column, or with a fixed constant.
type SimpleImputer struct {
	strategy Strategy
}

// NewSimpleImputer validates the strategy and returns an imputer for it
func NewSimpleImputer(strategy Strategy) (*SimpleImputer, error) {
	switch strategy.Kind {
	case StrategyMean, StrategyMedian, StrategyConstant:
		return &SimpleImputer{strategy: strategy}, nil
	}
	return nil, core.NewInvalidStrategyError(string(strategy.Kind))
}

// Name returns the strategy name
func (s *SimpleImputer) Name() string {
	return s.strategy.Name()
}

// Strategy returns the configured strategy
func (s *SimpleImputer) Strategy() Strategy {
	return s.strategy
}

// Impute returns a new complete matrix. Columns without missing values are copied as-is.
func (s *SimpleImputer) Impute(m mat.Matrix) (*mat.Dense, error) {
	out := mat.DenseCopyOf(m)
	rows, cols := out.Dims()

	for j := 0; j < cols; j++ {
		column := mat.Col(nil, j, out)

		observed := make([]float64, 0, rows)
		var missingRows []int
		for r, v := range column {
			if missingness.IsMissing(v) {
				missingRows = append(missingRows, r)
			} else {
				observed = append(observed, v)
			}
		}
		if len(missingRows) == 0 {
			continue
		}

		fill, err := s.fillValue(j, observed)
		if err != nil {
			return nil, err
		}
		for _, r := range missingRows {
			out.Set(r, j, fill)
		}
	}
	return out, nil
}

func (s *SimpleImputer) fillValue(column int, observed []float64) (float64, error) {
	if s.strategy.Kind == StrategyConstant {
		return s.strategy.FillValue, nil
	}
	if len(observed) == 0 {
		return 0, core.NewEmptyColumnError(column)
	}

	var (
		v   float64
		err error
	)
	switch s.strategy.Kind {
	case StrategyMean:
		v, err = stats.Mean(observed)
	case StrategyMedian:
		v, err = stats.Median(observed)
	default:
		return 0, core.NewInvalidStrategyError(string(s.strategy.Kind))
	}
	if err != nil {
		return 0, fmt.Errorf("column %d %s: %w", column, s.strategy.Kind, err)
	}
	return v, nil
}

// Impute is a convenience wrapper building a SimpleImputer for a single call
func Impute(m mat.Matrix, strategy Strategy) (*mat.Dense, error) {
	imp, err := NewSimpleImputer(strategy)
	if err != nil {
		return nil, err
	}
	return imp.Impute(m)
}
