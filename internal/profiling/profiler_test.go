package profiling

import (
	"bytes"
	"math"
	"testing"

	"imputelab/adapters/injector"
	"imputelab/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestProfileColumn(t *testing.T) {
	t.Run("quartiles and mnar share", func(t *testing.T) {
		p, err := ProfileColumn(0, "x", []float64{1, 2, 3, 4, 5, 6, 7, 8})
		require.NoError(t, err)

		assert.InDelta(t, 4.5, p.Summary.Mean, 1e-12)
		assert.InDelta(t, 2.75, p.Summary.Q25, 1e-12)
		assert.InDelta(t, 6.25, p.Summary.Q75, 1e-12)
		assert.InDelta(t, 4.5, p.Summary.Median, 1e-12)
		assert.InDelta(t, 0, p.Skewness, 1e-12)
		assert.Equal(t, 0, p.Outliers)
		assert.InDelta(t, 0.25, p.MNARShare, 1e-12)
		assert.False(t, p.Empty())
	})

	t.Run("outlier", func(t *testing.T) {
		p, err := ProfileColumn(1, "y", []float64{1, 2, 3, 4, 5, 6, 7, 100})
		require.NoError(t, err)
		assert.Equal(t, 1, p.Outliers)
		assert.Greater(t, p.Skewness, 1.0)
	})

	t.Run("mostly zero flag", func(t *testing.T) {
		p, err := ProfileColumn(2, "flag", []float64{0, 0, 0, 0, 0, 0, 0, 1})
		require.NoError(t, err)
		assert.Equal(t, 0.0, p.Summary.Q75)
		assert.True(t, p.Empty())
	})

	t.Run("constant", func(t *testing.T) {
		p, err := ProfileColumn(3, "c", []float64{2, 2, 2, 2})
		require.NoError(t, err)
		assert.Equal(t, 0.0, p.Summary.StdDev)
		assert.Equal(t, 0.0, p.Skewness)
		assert.Equal(t, 0.0, p.Kurtosis)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ProfileColumn(0, "none", nil)
		assert.Error(t, err)
	})
}

func TestProfileDatasetMatchesInjector(t *testing.T) {
	features := mat.NewDense(8, 2, []float64{
		1, 0,
		2, 0,
		3, 0,
		4, 0,
		5, 0,
		6, 0,
		7, 0,
		8, 1,
	})
	ds, err := dataset.New(features, []float64{1, 2, 3, 4, 5, 6, 7, 8}, []string{"rooms", "river"}, "price")
	require.NoError(t, err)

	profiles, err := ProfileDataset(ds)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "rooms", profiles[0].Name)
	assert.Equal(t, "river", profiles[1].Name)

	inj := injector.NewInjector(nil, nil)
	for _, p := range profiles {
		out, err := inj.InjectMNAR(ds.FeaturesView(), p.Index)
		require.NoError(t, err)
		fractions := injector.MissingFractions(out)
		assert.InDelta(t, p.MNARShare, fractions[p.Index], 1e-12, "column %s", p.Name)
	}
	assert.True(t, profiles[1].Empty())
	assert.False(t, math.IsNaN(profiles[0].Kurtosis))
}

func TestWriteProfiles(t *testing.T) {
	p, err := ProfileColumn(0, "flag", []float64{0, 0, 0, 0, 0, 0, 0, 1})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteProfiles(&buf, []ColumnProfile{p}))
	out := buf.String()
	assert.Contains(t, out, "mnar blanked")
	assert.Contains(t, out, "flag")
	assert.Contains(t, out, "100.0% (all)")
}
