package injector

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"

	"imputelab/domain/core"
	"imputelab/domain/missingness"
	"imputelab/internal"
	"imputelab/internal/report"

	"gonum.org/v1/gonum/mat"
)

// Injector removes values from a complete matrix according to a missingness policy.
// Every method returns a new matrix and leaves its input untouched.
type Injector struct {
	diagnostics io.Writer
	logger      *internal.Logger
}

// NewInjector creates an injector. MNAR missing-fraction diagnostics are written to
// diagnostics; pass nil to silence them.
func NewInjector(diagnostics io.Writer, logger *internal.Logger) *Injector {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Injector{
		diagnostics: diagnostics,
		logger:      logger.With("Injector"),
	}
}

// Inject dispatches on the spec policy. The baseline policy returns an unmodified copy.
func (i *Injector) Inject(m mat.Matrix, spec missingness.Spec, rng *rand.Rand) (*mat.Dense, error) {
	_, cols := m.Dims()
	if err := spec.Validate(cols); err != nil {
		return nil, err
	}
	switch spec.Policy {
	case missingness.PolicyMCAR:
		return i.InjectMCAR(m, spec.Percentage, rng)
	case missingness.PolicyMNAR:
		return i.InjectMNAR(m, spec.Column)
	default:
		return mat.DenseCopyOf(m), nil
	}
}

// InjectMCAR picks one column uniformly at random and blanks floor(rows*percentage/100)
// distinct rows in it, chosen without replacement.
func (i *Injector) InjectMCAR(m mat.Matrix, percentage int, rng *rand.Rand) (*mat.Dense, error) {
	if err := missingness.ValidatePercentage(percentage); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, core.NewInvalidParameterError("rng", "random source is nil")
	}

	rows, cols := m.Dims()
	column := rng.Intn(cols)
	count := rows * percentage / 100

	out := mat.DenseCopyOf(m)
	for _, row := range rng.Perm(rows)[:count] {
		out.Set(row, column, missingness.Marker())
	}

	i.logger.Trace("mcar: %d%% -> %d rows blanked in column %d", percentage, count, column)
	return out, nil
}

// InjectMNAR blanks every row whose value in column is at or above the column's
// 0.75 quantile. The selection is deterministic.
func (i *Injector) InjectMNAR(m mat.Matrix, column int) (*mat.Dense, error) {
	rows, cols := m.Dims()
	if column < 0 || column >= cols {
		return nil, core.NewInvalidParameterError("column", fmt.Sprintf("%d out of range [0, %d)", column, cols))
	}

	values := mat.Col(nil, column, m)
	threshold, err := Quantile(values, missingness.MNARQuantile)
	if err != nil {
		return nil, fmt.Errorf("column %d: %w", column, err)
	}

	out := mat.DenseCopyOf(m)
	for r := 0; r < rows; r++ {
		if values[r] >= threshold {
			out.Set(r, column, missingness.Marker())
		}
	}

	if i.diagnostics != nil {
		if err := report.WriteMissingFractions(i.diagnostics, column, MissingFractions(out)); err != nil {
			i.logger.Warn("failed to write missing-value diagnostics: %v", err)
		}
	}
	return out, nil
}

// Quantile returns the q-quantile of the observed (non-NaN) values using linear
// interpolation between closest ranks at position (n-1)*q.
func Quantile(values []float64, q float64) (float64, error) {
	if q < 0 || q > 1 || math.IsNaN(q) {
		return 0, core.NewInvalidParameterError("quantile", fmt.Sprintf("%g not in [0, 1]", q))
	}
	observed := make([]float64, 0, len(values))
	for _, v := range values {
		if !missingness.IsMissing(v) {
			observed = append(observed, v)
		}
	}
	if len(observed) == 0 {
		return 0, core.ErrEmptyColumn
	}
	sort.Float64s(observed)

	pos := float64(len(observed)-1) * q
	lo := int(math.Floor(pos))
	if lo >= len(observed)-1 {
		return observed[len(observed)-1], nil
	}
	frac := pos - float64(lo)
	return observed[lo] + frac*(observed[lo+1]-observed[lo]), nil
}

// MissingFractions returns, per column, the share of cells holding the missing marker.
func MissingFractions(m mat.Matrix) []float64 {
	rows, cols := m.Dims()
	fractions := make([]float64, cols)
	if rows == 0 {
		return fractions
	}
	for j := 0; j < cols; j++ {
		missing := 0
		for r := 0; r < rows; r++ {
			if missingness.IsMissing(m.At(r, j)) {
				missing++
			}
		}
		fractions[j] = float64(missing) / float64(rows)
	}
	return fractions
}

// CountMissing returns the number of missing cells in m.
func CountMissing(m mat.Matrix) int {
	rows, cols := m.Dims()
	n := 0
	for r := 0; r < rows; r++ {
		for j := 0; j < cols; j++ {
			if missingness.IsMissing(m.At(r, j)) {
				n++
			}
		}
	}
	return n
}
