package testkit

import (
	"context"
	"math"
	"math/rand"

	"imputelab/domain/dataset"

	"gonum.org/v1/gonum/mat"
)

// HousingFeatureNames are the thirteen attributes of the canonical housing data
var HousingFeatureNames = []string{
	"CRIM", "ZN", "INDUS", "CHAS", "NOX", "RM", "AGE",
	"DIS", "RAD", "TAX", "PTRATIO", "B", "LSTAT",
}

// HousingTargetName is the median home value column
const HousingTargetName = "MEDV"

// HousingGeneratorConfig configures the synthetic housing generator
type HousingGeneratorConfig struct {
	Rows     int     `json:"rows"`
	Seed     int64   `json:"seed"`
	NoiseStd float64 `json:"noise_std"`
}

// DefaultHousingConfig matches the shape of the canonical 506 × 13 housing data
func DefaultHousingConfig() HousingGeneratorConfig {
	return HousingGeneratorConfig{
		Rows:     506,
		Seed:     1978,
		NoiseStd: 4.5,
	}
}

// housingCoefficients drive MEDV. Every attribute contributes so that removing
// any single column costs explained variance.
var housingCoefficients = []float64{
	-0.108, 0.046, 0.021, 2.69, -17.8, 3.81, 0.012,
	-1.48, 0.31, -0.012, -0.95, 0.0093, -0.525,
}

const housingIntercept = 36.5

// HousingDataGenerator generates a deterministic housing-like regression dataset
type HousingDataGenerator struct {
	config HousingGeneratorConfig
	rng    *rand.Rand
}

// NewHousingDataGenerator creates a new housing data generator
func NewHousingDataGenerator(config HousingGeneratorConfig) *HousingDataGenerator {
	return &HousingDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds the dataset. The same config always yields the same values.
func (g *HousingDataGenerator) Generate() (*dataset.Dataset, error) {
	rows := g.config.Rows
	cols := len(HousingFeatureNames)
	features := mat.NewDense(rows, cols, nil)
	targets := make([]float64, rows)

	for i := 0; i < rows; i++ {
		row := g.generateTract()
		features.SetRow(i, row)

		medv := housingIntercept
		for j, v := range row {
			medv += housingCoefficients[j] * v
		}
		medv += g.rng.NormFloat64() * g.config.NoiseStd
		targets[i] = math.Max(medv, 5)
	}

	return dataset.New(features, targets, HousingFeatureNames, HousingTargetName)
}

// generateTract draws one census tract with roughly the marginal shapes of the real data
func (g *HousingDataGenerator) generateTract() []float64 {
	r := g.rng

	crim := math.Exp(r.NormFloat64()*1.6 - 1.2) // right skewed
	zn := 0.0
	if r.Float64() < 0.26 {
		zn = 12.5 + r.Float64()*87.5
	}
	indus := 0.5 + r.Float64()*27
	chas := 0.0
	if r.Float64() < 0.07 {
		chas = 1
	}
	nox := clamp(0.38+0.012*indus+r.NormFloat64()*0.04, 0.38, 0.87)
	rm := clamp(6.28+r.NormFloat64()*0.7, 3.5, 8.8)
	age := clamp(100-r.ExpFloat64()*32, 3, 100) // left skewed
	dis := clamp(math.Exp(1.25-0.01*(age-68)+r.NormFloat64()*0.3), 1.1, 12.1)

	rad := float64(1 + r.Intn(8))
	if r.Float64() < 0.26 {
		rad = 24
	}
	tax := clamp(190+17*rad+r.NormFloat64()*50, 187, 711)
	ptratio := 22 - math.Min(r.ExpFloat64()*2.5, 9.4) // left skewed
	b := 396.9 - math.Min(r.ExpFloat64()*20, 396)     // left skewed
	lstat := clamp(12.6-4*(rm-6.28)+r.NormFloat64()*5, 1.7, 38)

	return []float64{crim, zn, indus, chas, nox, rm, age, dis, rad, tax, ptratio, b, lstat}
}

// HousingSource implements ports.DatasetReaderPort with generated data
type HousingSource struct {
	config HousingGeneratorConfig
}

// NewHousingSource creates a synthetic dataset source
func NewHousingSource(config HousingGeneratorConfig) *HousingSource {
	return &HousingSource{config: config}
}

// ReadDataset generates the dataset
func (s *HousingSource) ReadDataset(ctx context.Context) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewHousingDataGenerator(s.config).Generate()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
