package imputation

import (
	"fmt"
	"strings"

	"imputelab/domain/core"
	"imputelab/ports"
)

// StrategyKind names an imputation strategy
type StrategyKind string

const (
	StrategyMean     StrategyKind = "mean"
	StrategyMedian   StrategyKind = "median"
	StrategyConstant StrategyKind = "constant"
)

// Strategy is an immutable imputation choice. FillValue is only used by constant.
type Strategy struct {
	Kind      StrategyKind `json:"kind"`
	FillValue float64      `json:"fill_value,omitempty"`
}

// Mean fills with the observed column mean
func Mean() Strategy { return Strategy{Kind: StrategyMean} }

// Median fills with the observed column median
func Median() Strategy { return Strategy{Kind: StrategyMedian} }

// Constant fills every missing cell with value
func Constant(value float64) Strategy { return Strategy{Kind: StrategyConstant, FillValue: value} }

// ParseStrategy resolves a strategy name. fill is used when name is "constant".
func ParseStrategy(name string, fill float64) (Strategy, error) {
	switch StrategyKind(strings.ToLower(strings.TrimSpace(name))) {
	case StrategyMean:
		return Mean(), nil
	case StrategyMedian:
		return Median(), nil
	case StrategyConstant:
		return Constant(fill), nil
	}
	return Strategy{}, core.NewInvalidStrategyError(name)
}

// ParseStrategies resolves a list of names in order
func ParseStrategies(names []string, fill float64) ([]Strategy, error) {
	out := make([]Strategy, 0, len(names))
	for _, name := range names {
		s, err := ParseStrategy(name, fill)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Name is the label used in result tables
func (s Strategy) Name() string {
	return string(s.Kind)
}

// String includes the fill value for constant strategies
func (s Strategy) String() string {
	if s.Kind == StrategyConstant {
		return fmt.Sprintf("constant(%g)", s.FillValue)
	}
	return string(s.Kind)
}

// Factory satisfies ports.ImputerFactory
func Factory(name string, fill float64) (ports.ImputerPort, error) {
	strategy, err := ParseStrategy(name, fill)
	if err != nil {
		return nil, err
	}
	imp, err := NewSimpleImputer(strategy)
	if err != nil {
		return nil, err
	}
	return imp, nil
}
