package missingness

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"imputelab/domain/core"
)

// Policy selects how missing values are injected
type Policy string

const (
	PolicyNone Policy = "none" // baseline, no values removed
	PolicyMCAR Policy = "mcar" // missing completely at random
	PolicyMNAR Policy = "mnar" // missing not at random (top quantile of one column)
)

// MNARQuantile is the quantile above which MNAR injection removes values.
const MNARQuantile = 0.75

// Spec describes one missingness regime
type Spec struct {
	Policy     Policy  `json:"policy"`
	Percentage int     `json:"percentage,omitempty"` // mcar only
	Column     int     `json:"column,omitempty"`     // mnar only
	Quantile   float64 `json:"quantile,omitempty"`   // mnar only
}

// None returns the zero-missingness baseline spec
func None() Spec {
	return Spec{Policy: PolicyNone}
}

// MCAR returns a spec removing percentage% of the rows in one random column.
func MCAR(percentage int) Spec {
	return Spec{Policy: PolicyMCAR, Percentage: percentage}
}

// MNAR returns a spec removing the top quartile of column.
func MNAR(column int) Spec {
	return Spec{Policy: PolicyMNAR, Column: column, Quantile: MNARQuantile}
}

// IsBaseline reports whether the spec removes nothing
func (s Spec) IsBaseline() bool {
	return s.Policy == PolicyNone || s.Policy == ""
}

// Validate checks the spec parameters against a matrix with cols columns.
func (s Spec) Validate(cols int) error {
	switch s.Policy {
	case PolicyNone, "":
		return nil
	case PolicyMCAR:
		return ValidatePercentage(s.Percentage)
	case PolicyMNAR:
		if s.Column < 0 || s.Column >= cols {
			return core.NewInvalidParameterError("column", fmt.Sprintf("%d out of range [0, %d)", s.Column, cols))
		}
		if s.Quantile != MNARQuantile {
			return core.NewInvalidParameterError("quantile", fmt.Sprintf("%g, only %g is supported", s.Quantile, MNARQuantile))
		}
		return nil
	default:
		return core.NewInvalidParameterError("policy", string(s.Policy))
	}
}

// String renders the spec for logs
func (s Spec) String() string {
	switch s.Policy {
	case PolicyMCAR:
		return fmt.Sprintf("mcar(%d%%)", s.Percentage)
	case PolicyMNAR:
		return fmt.Sprintf("mnar(col=%d,q=%.2f)", s.Column, s.Quantile)
	default:
		return "none"
	}
}

// ValidatePercentage enforces a whole-number percentage strictly between 0 and 100.
func ValidatePercentage(p int) error {
	if p <= 0 || p >= 100 {
		return core.NewInvalidParameterError("percentage", fmt.Sprintf("%d must be greater than 0 and less than 100", p))
	}
	return nil
}

// PercentageFromFloat accepts a float only when it carries a whole number in (0, 100).
func PercentageFromFloat(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, core.NewInvalidParameterError("percentage", fmt.Sprintf("%v is not an integer", v))
	}
	p := int(v)
	if err := ValidatePercentage(p); err != nil {
		return 0, err
	}
	return p, nil
}

// ParsePercentage parses a percentage such as "10". Non-integers like "10.5" fail.
func ParsePercentage(s string) (int, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, core.NewInvalidParameterError("percentage", fmt.Sprintf("%q is not an integer", s))
	}
	if err := ValidatePercentage(p); err != nil {
		return 0, err
	}
	return p, nil
}

// ParsePercentages parses a comma separated list, keeping the given order.
func ParsePercentages(list string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		p, err := ParsePercentage(part)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, core.NewInvalidParameterError("percentages", "list is empty")
	}
	return out, nil
}

// IsMissing reports whether v is the missing-value marker (NaN).
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Marker returns the missing-value marker.
func Marker() float64 {
	return math.NaN()
}
