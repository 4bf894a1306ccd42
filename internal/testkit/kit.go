package testkit

import (
	"math/rand"

	"imputelab/adapters/rng"
	"imputelab/domain/dataset"
	"imputelab/ports"

	"gonum.org/v1/gonum/mat"
)

// TestKit provides deterministic fixtures for tests and offline runs
type TestKit struct {
	seed int64
}

// NewTestKit creates a kit whose fixtures derive from seed
func NewTestKit(seed int64) *TestKit {
	return &TestKit{seed: seed}
}

// RNGAdapter returns an RNG adapter
func (k *TestKit) RNGAdapter() ports.RNGPort {
	return rng.NewAdapter()
}

// HousingSource returns the synthetic housing source at the default shape
func (k *TestKit) HousingSource() ports.DatasetReaderPort {
	config := DefaultHousingConfig()
	config.Seed = k.seed
	return NewHousingSource(config)
}

// Housing generates the default 506 × 13 housing dataset
func (k *TestKit) Housing() (*dataset.Dataset, error) {
	config := DefaultHousingConfig()
	config.Seed = k.seed
	return NewHousingDataGenerator(config).Generate()
}

// SkewedDataset returns two features where column 0 is left skewed (x0 = -Exp(1))
// and the target is 5·x0 + 2·x1 plus small noise. Blanking the upper quartile of
// column 0 and filling it with a large negative constant hurts the fit far more
// than filling with the observed mean.
func (k *TestKit) SkewedDataset(rows int) (*dataset.Dataset, error) {
	r := rand.New(rand.NewSource(k.seed))
	features := mat.NewDense(rows, 2, nil)
	targets := make([]float64, rows)
	for i := 0; i < rows; i++ {
		x0 := -r.ExpFloat64()
		x1 := r.NormFloat64()
		features.SetRow(i, []float64{x0, x1})
		targets[i] = 5*x0 + 2*x1 + 0.1*r.NormFloat64()
	}
	return dataset.New(features, targets, []string{"skewed", "normal"}, "y")
}

// LinearDataset returns standard normal features with unit coefficients plus noise
func (k *TestKit) LinearDataset(rows, cols int, noise float64) (*dataset.Dataset, error) {
	r := rand.New(rand.NewSource(k.seed))
	features := mat.NewDense(rows, cols, nil)
	targets := make([]float64, rows)
	for i := 0; i < rows; i++ {
		y := 1.0
		for j := 0; j < cols; j++ {
			v := r.NormFloat64()
			features.Set(i, j, v)
			y += v
		}
		targets[i] = y + noise*r.NormFloat64()
	}
	return dataset.New(features, targets, nil, "")
}
