package regression

import (
	"errors"
	"math"

	"imputelab/domain/core"
	"imputelab/ports"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ridgeJitter scales the diagonal term added when the least squares system is singular
const ridgeJitter = 1e-10

// OLS is an ordinary least squares linear model
type OLS struct {
	params       ports.ModelParams
	coefficients []float64
	intercept    float64
	fitted       bool
	conditioned  bool
}

// NewOLS creates an unfitted model
func NewOLS(params ports.ModelParams) *OLS {
	return &OLS{params: params}
}

// Factory satisfies ports.ModelFactory
func Factory(params ports.ModelParams) (ports.RegressionModel, error) {
	return NewOLS(params), nil
}

// Fit estimates coefficients by least squares. Any NaN in features or targets is a fit error.
func (m *OLS) Fit(features mat.Matrix, targets []float64) error {
	rows, cols := features.Dims()
	if rows == 0 || cols == 0 {
		return core.NewFitError("empty design matrix", nil)
	}
	if len(targets) != rows {
		return core.NewShapeMismatchError("targets", rows, len(targets))
	}
	if hasNaN(features) {
		return core.NewFitError("features contain missing values", nil)
	}
	if floats.HasNaN(targets) {
		return core.NewFitError("targets contain missing values", nil)
	}

	x := mat.DenseCopyOf(features)
	y := make([]float64, rows)
	copy(y, targets)

	xMeans := make([]float64, cols)
	yMean := 0.0
	if m.params.FitIntercept {
		for j := 0; j < cols; j++ {
			xMeans[j] = floats.Sum(mat.Col(nil, j, x)) / float64(rows)
		}
		yMean = floats.Sum(y) / float64(rows)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				x.Set(i, j, x.At(i, j)-xMeans[j])
			}
			y[i] -= yMean
		}
	}

	beta, conditioned, err := solve(x, mat.NewVecDense(rows, y))
	if err != nil {
		return err
	}
	m.conditioned = conditioned

	coefficients := make([]float64, cols)
	for j := range coefficients {
		coefficients[j] = beta.AtVec(j)
	}
	if !allFinite(coefficients) {
		return core.NewFitError("non-finite coefficients", nil)
	}

	m.coefficients = coefficients
	m.intercept = 0
	if m.params.FitIntercept {
		m.intercept = yMean - floats.Dot(xMeans, coefficients)
	}
	m.fitted = true
	return nil
}

// Predict returns X·β + intercept for each row
func (m *OLS) Predict(features mat.Matrix) ([]float64, error) {
	if !m.fitted {
		return nil, core.NewFitError("model is not fitted", nil)
	}
	rows, cols := features.Dims()
	if cols != len(m.coefficients) {
		return nil, core.NewShapeMismatchError("feature columns", len(m.coefficients), cols)
	}

	var out mat.VecDense
	out.MulVec(features, mat.NewVecDense(cols, m.coefficients))

	predictions := make([]float64, rows)
	for i := range predictions {
		predictions[i] = out.AtVec(i) + m.intercept
	}
	return predictions, nil
}

// Coefficients returns a copy of the fitted slope terms
func (m *OLS) Coefficients() []float64 {
	out := make([]float64, len(m.coefficients))
	copy(out, m.coefficients)
	return out
}

// Intercept returns the fitted intercept (0 when FitIntercept is false)
func (m *OLS) Intercept() float64 {
	return m.intercept
}

// IllConditioned reports whether the last fit hit a near-singular system
func (m *OLS) IllConditioned() bool {
	return m.conditioned
}

// solve finds the least squares solution by QR. A near-singular system falls back
// to normal equations with a small ridge term on the diagonal.
func solve(x *mat.Dense, y *mat.VecDense) (*mat.VecDense, bool, error) {
	var beta mat.VecDense
	err := beta.SolveVec(x, y)
	if err == nil {
		return &beta, false, nil
	}
	var cond mat.Condition
	if !errors.As(err, &cond) {
		return nil, false, core.NewFitError("least squares solve", err)
	}

	_, cols := x.Dims()
	var gram mat.Dense
	gram.Mul(x.T(), x)
	scale := mat.Trace(&gram) / float64(cols)
	if scale == 0 {
		scale = 1
	}
	for j := 0; j < cols; j++ {
		gram.Set(j, j, gram.At(j, j)+ridgeJitter*scale)
	}
	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var ridge mat.VecDense
	if rerr := ridge.SolveVec(&gram, &xty); rerr != nil {
		if !errors.As(rerr, &cond) || ridge.IsEmpty() {
			return nil, true, core.NewFitError("least squares solve", rerr)
		}
	}
	return &ridge, true, nil
}

func hasNaN(m mat.Matrix) bool {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.IsNaN(m.At(i, j)) {
				return true
			}
		}
	}
	return false
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
