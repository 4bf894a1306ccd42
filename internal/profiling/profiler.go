package profiling

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"imputelab/adapters/injector"
	"imputelab/domain/dataset"
	"imputelab/domain/missingness"

	"github.com/montanaflynn/stats"
)

// Summary holds the location and spread of one column
type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// ColumnProfile describes a feature column before any values are removed.
// MNARShare is the fraction of rows an MNAR injection on this column would blank.
type ColumnProfile struct {
	Index     int     `json:"index"`
	Name      string  `json:"name"`
	Summary   Summary `json:"summary"`
	Skewness  float64 `json:"skewness"`
	Kurtosis  float64 `json:"kurtosis"`
	Outliers  int     `json:"outliers"`
	MNARShare float64 `json:"mnar_share"`
}

// Empty reports whether an MNAR injection would leave no observed values.
func (p ColumnProfile) Empty() bool {
	return p.MNARShare >= 1
}

// ProfileColumn computes the profile of one column of values
func ProfileColumn(index int, name string, data []float64) (ColumnProfile, error) {
	profile := ColumnProfile{Index: index, Name: name}

	mean, err := stats.Mean(data)
	if err != nil {
		return profile, fmt.Errorf("column %s: %w", name, err)
	}
	stdDev, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return profile, fmt.Errorf("column %s: %w", name, err)
	}
	min, err := stats.Min(data)
	if err != nil {
		return profile, fmt.Errorf("column %s: %w", name, err)
	}
	max, err := stats.Max(data)
	if err != nil {
		return profile, fmt.Errorf("column %s: %w", name, err)
	}
	median, err := stats.Median(data)
	if err != nil {
		return profile, fmt.Errorf("column %s: %w", name, err)
	}

	// Same interpolation as the injector so MNARShare matches what it removes
	q25, err := injector.Quantile(data, 0.25)
	if err != nil {
		return profile, fmt.Errorf("column %s: %w", name, err)
	}
	q75, err := injector.Quantile(data, missingness.MNARQuantile)
	if err != nil {
		return profile, fmt.Errorf("column %s: %w", name, err)
	}

	profile.Summary = Summary{
		Mean:   mean,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
		Median: median,
		Q25:    q25,
		Q75:    q75,
	}
	profile.Skewness = calculateSkewness(data, mean, stdDev)
	profile.Kurtosis = calculateKurtosis(data, mean, stdDev)
	profile.Outliers = detectOutliers(data, q25, q75)

	blanked := 0
	for _, x := range data {
		if x >= q75 {
			blanked++
		}
	}
	profile.MNARShare = float64(blanked) / float64(len(data))

	return profile, nil
}

// ProfileDataset profiles every feature column of ds in column order
func ProfileDataset(ds *dataset.Dataset) ([]ColumnProfile, error) {
	names := ds.FeatureNames()
	profiles := make([]ColumnProfile, 0, ds.Cols())
	for j := 0; j < ds.Cols(); j++ {
		column, err := ds.Column(j)
		if err != nil {
			return nil, err
		}
		profile, err := ProfileColumn(j, names[j], column)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// WriteProfiles prints one aligned row per column
func WriteProfiles(w io.Writer, profiles []ColumnProfile) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tcolumn\tmean\tstd\tmin\tmedian\tq75\tmax\tskew\toutliers\tmnar blanked")
	for _, p := range profiles {
		s := p.Summary
		note := ""
		if p.Empty() {
			note = " (all)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.2f\t%d\t%.1f%%%s\n",
			p.Index, p.Name, s.Mean, s.StdDev, s.Min, s.Median, s.Q75, s.Max,
			p.Skewness, p.Outliers, 100*p.MNARShare, note)
	}
	return tw.Flush()
}

// calculateSkewness computes the adjusted Fisher-Pearson sample skewness
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d
	}
	return sum / n * math.Sqrt(n*(n-1)) / (n - 2)
}

// calculateKurtosis computes sample excess kurtosis
func calculateKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d * d
	}
	g2 := sum/n - 3
	return ((n+1)*g2 + 6) * (n - 1) / ((n - 2) * (n - 3))
}

// detectOutliers counts values outside the 1.5 IQR fences
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lower := q25 - 1.5*iqr
	upper := q75 + 1.5*iqr

	count := 0
	for _, x := range data {
		if x < lower || x > upper {
			count++
		}
	}
	return count
}
