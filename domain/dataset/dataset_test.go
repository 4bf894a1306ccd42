package dataset

import (
	"errors"
	"math/rand"
	"testing"

	"imputelab/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNew_ValidatesShape(t *testing.T) {
	features := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})

	_, err := New(features, []float64{1, 2}, nil, "y")
	assert.True(t, errors.Is(err, core.ErrShapeMismatch), "got %v", err)

	_, err = New(features, []float64{1, 2, 3}, []string{"a"}, "y")
	assert.True(t, errors.Is(err, core.ErrShapeMismatch), "got %v", err)

	_, err = New(nil, nil, nil, "y")
	assert.True(t, errors.Is(err, core.ErrInvalidParameter), "got %v", err)

	ds, err := New(features, []float64{1, 2, 3}, nil, "")
	require.NoError(t, err)
	assert.Equal(t, Shape{Rows: 3, Cols: 2}, ds.Shape())
	assert.Equal(t, []string{"x0", "x1"}, ds.FeatureNames())
	assert.Equal(t, "target", ds.TargetName())
}

func TestDataset_IsImmutable(t *testing.T) {
	raw := []float64{1, 2, 3, 4}
	features := mat.NewDense(2, 2, raw)
	targets := []float64{10, 20}

	ds, err := New(features, targets, []string{"a", "b"}, "y")
	require.NoError(t, err)

	features.Set(0, 0, 99)
	targets[0] = 99
	assert.Equal(t, 1.0, ds.FeaturesView().At(0, 0))
	assert.Equal(t, 10.0, ds.Targets()[0])

	copyOf := ds.Features()
	copyOf.Set(1, 1, -1)
	assert.Equal(t, 4.0, ds.FeaturesView().At(1, 1))

	ts := ds.Targets()
	ts[1] = -1
	assert.Equal(t, 20.0, ds.Targets()[1])
}

func TestDataset_Column(t *testing.T) {
	ds, err := New(mat.NewDense(2, 2, []float64{1, 2, 3, 4}), []float64{0, 0}, nil, "y")
	require.NoError(t, err)

	col, err := ds.Column(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4}, col)

	_, err = ds.Column(2)
	assert.True(t, errors.Is(err, core.ErrInvalidParameter))
}

func TestDataset_TrainTestSplit(t *testing.T) {
	rows := 20
	data := make([]float64, rows*2)
	targets := make([]float64, rows)
	for i := 0; i < rows; i++ {
		data[2*i] = float64(i)
		data[2*i+1] = float64(i * 10)
		targets[i] = float64(i)
	}
	ds, err := New(mat.NewDense(rows, 2, data), targets, nil, "y")
	require.NoError(t, err)

	train, test, err := ds.TrainTestSplit(0.25, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	assert.Equal(t, 15, train.Rows())
	assert.Equal(t, 5, test.Rows())

	// every row lands in exactly one split and keeps its target alignment
	seen := map[float64]bool{}
	for _, part := range []*Dataset{train, test} {
		ys := part.Targets()
		for i := 0; i < part.Rows(); i++ {
			x := part.FeaturesView().At(i, 0)
			assert.Equal(t, x, ys[i])
			assert.Equal(t, x*10, part.FeaturesView().At(i, 1))
			assert.False(t, seen[x], "row %v duplicated", x)
			seen[x] = true
		}
	}
	assert.Len(t, seen, rows)

	_, _, err = ds.TrainTestSplit(1.0, rand.New(rand.NewSource(1)))
	assert.True(t, errors.Is(err, core.ErrInvalidParameter))
	_, _, err = ds.TrainTestSplit(0.01, rand.New(rand.NewSource(1)))
	assert.True(t, errors.Is(err, core.ErrInvalidParameter))
}
