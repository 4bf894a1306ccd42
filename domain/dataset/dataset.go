package dataset

import (
	"fmt"
	"math/rand"

	"imputelab/domain/core"

	"gonum.org/v1/gonum/mat"
)

// Dataset pairs an immutable feature matrix with its target vector.
// Rows are observations, columns are numeric attributes.
type Dataset struct {
	features     *mat.Dense
	targets      []float64
	featureNames []string
	targetName   string
}

// Shape describes the dimensions of a dataset
type Shape struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// New builds a dataset, copying the inputs so callers cannot mutate it afterwards.
// featureNames may be nil, in which case columns are named x0..xN.
func New(features mat.Matrix, targets []float64, featureNames []string, targetName string) (*Dataset, error) {
	if features == nil {
		return nil, core.NewInvalidParameterError("features", "matrix is nil")
	}
	rows, cols := features.Dims()
	if rows == 0 || cols == 0 {
		return nil, core.NewInvalidParameterError("features", "matrix is empty")
	}
	if len(targets) != rows {
		return nil, core.NewShapeMismatchError("target length", rows, len(targets))
	}
	if featureNames == nil {
		featureNames = make([]string, cols)
		for j := range featureNames {
			featureNames[j] = fmt.Sprintf("x%d", j)
		}
	}
	if len(featureNames) != cols {
		return nil, core.NewShapeMismatchError("feature names", cols, len(featureNames))
	}
	if targetName == "" {
		targetName = "target"
	}

	return &Dataset{
		features:     mat.DenseCopyOf(features),
		targets:      append([]float64(nil), targets...),
		featureNames: append([]string(nil), featureNames...),
		targetName:   targetName,
	}, nil
}

// Rows returns the number of observations
func (d *Dataset) Rows() int {
	r, _ := d.features.Dims()
	return r
}

// Cols returns the number of feature columns
func (d *Dataset) Cols() int {
	_, c := d.features.Dims()
	return c
}

// Shape returns rows and columns together
func (d *Dataset) Shape() Shape {
	return Shape{Rows: d.Rows(), Cols: d.Cols()}
}

// Features returns a private copy of the feature matrix.
func (d *Dataset) Features() *mat.Dense {
	return mat.DenseCopyOf(d.features)
}

// FeaturesView exposes the feature matrix read-only without copying.
func (d *Dataset) FeaturesView() mat.Matrix {
	return d.features
}

// Targets returns a copy of the target vector
func (d *Dataset) Targets() []float64 {
	return append([]float64(nil), d.targets...)
}

// FeatureNames returns a copy of the column names
func (d *Dataset) FeatureNames() []string {
	return append([]string(nil), d.featureNames...)
}

// TargetName returns the target column name
func (d *Dataset) TargetName() string {
	return d.targetName
}

// Column returns a copy of one feature column
func (d *Dataset) Column(j int) ([]float64, error) {
	if j < 0 || j >= d.Cols() {
		return nil, core.NewInvalidParameterError("column", fmt.Sprintf("%d out of range [0, %d)", j, d.Cols()))
	}
	return mat.Col(nil, j, d.features), nil
}

// TrainTestSplit shuffles row indices with rng and splits them into a train and a test
// dataset. testFraction must lie in (0, 1) and leave at least one row on each side.
func (d *Dataset) TrainTestSplit(testFraction float64, rng *rand.Rand) (*Dataset, *Dataset, error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, core.NewInvalidParameterError("test fraction", fmt.Sprintf("%g not in (0, 1)", testFraction))
	}
	rows := d.Rows()
	nTest := int(float64(rows) * testFraction)
	if nTest < 1 || nTest >= rows {
		return nil, nil, core.NewInvalidParameterError("test fraction", fmt.Sprintf("%g leaves an empty split for %d rows", testFraction, rows))
	}

	perm := rng.Perm(rows)
	test, err := d.subset(perm[:nTest])
	if err != nil {
		return nil, nil, err
	}
	train, err := d.subset(perm[nTest:])
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

func (d *Dataset) subset(rowIdx []int) (*Dataset, error) {
	cols := d.Cols()
	features := mat.NewDense(len(rowIdx), cols, nil)
	targets := make([]float64, len(rowIdx))
	for i, r := range rowIdx {
		features.SetRow(i, d.features.RawRowView(r))
		targets[i] = d.targets[r]
	}
	return New(features, targets, d.featureNames, d.targetName)
}
