package report

import (
	"imputelab/domain/stats"
)

// SeriesPoint is one plotted position: the independent variable and the metric band around it
type SeriesPoint struct {
	X     float64 `json:"x"`
	Mean  float64 `json:"y"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Series is the ordered sequence of points for one imputation method
type Series struct {
	Name   string        `json:"name"`
	Points []SeriesPoint `json:"points"`
}

// Xs returns the independent-variable values in order
func (s Series) Xs() []float64 {
	xs := make([]float64, len(s.Points))
	for i, p := range s.Points {
		xs[i] = p.X
	}
	return xs
}

// ToSeries extracts (x, mean, mean-std, mean+std) tuples for one metric, keeping the
// order in which the driver produced the points.
func ToSeries(method stats.MethodResults, metric stats.Metric) Series {
	points := make([]SeriesPoint, len(method.Points))
	for i, p := range method.Points {
		agg := p.Stats.Get(metric)
		points[i] = SeriesPoint{
			X:     float64(p.Key),
			Mean:  agg.Mean,
			Lower: agg.Lower(),
			Upper: agg.Upper(),
		}
	}
	return Series{Name: method.Method, Points: points}
}

// SeriesFor converts every non-baseline method of a result table.
func SeriesFor(table *stats.ResultTable, metric stats.Metric) []Series {
	out := make([]Series, 0, len(table.Methods))
	for _, m := range table.Methods {
		if m.Method == stats.BaselineKey {
			continue
		}
		out = append(out, ToSeries(m, metric))
	}
	return out
}
