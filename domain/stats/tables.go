package stats

// BaselineKey is the method name used for the zero-missingness reference entry.
const BaselineKey = "baseline"

// Point is the result for one independent-variable value (missing percentage or column index)
type Point struct {
	Key   int         `json:"key"`
	Stats MetricStats `json:"stats"`
}

// MethodResults holds the points for one imputation method in candidate-set order
type MethodResults struct {
	Method string  `json:"method"`
	Points []Point `json:"points"`
}

// Lookup finds the stats for a key
func (m MethodResults) Lookup(key int) (MetricStats, bool) {
	for _, p := range m.Points {
		if p.Key == key {
			return p.Stats, true
		}
	}
	return MetricStats{}, false
}

// ResultTable is the MCAR result structure: method → percentage → stats, plus the baseline.
// Built once per run and read-only afterwards.
type ResultTable struct {
	Baseline MetricStats     `json:"baseline"`
	Methods  []MethodResults `json:"methods"`
}

// Method returns the results for an imputation method
func (t *ResultTable) Method(name string) (MethodResults, bool) {
	for _, m := range t.Methods {
		if m.Method == name {
			return m, true
		}
	}
	return MethodResults{}, false
}

// ColumnResult is a single MNAR score for one targeted column
type ColumnResult struct {
	Column int         `json:"column"`
	Result TrialResult `json:"result"`
}

// MNARMethod aggregates one method's scores across every targeted column
type MNARMethod struct {
	Method    string         `json:"method"`
	Stats     MetricStats    `json:"stats"`
	PerColumn []ColumnResult `json:"per_column"`
	Skipped   []int          `json:"skipped,omitempty"` // columns left with no observed values
}

// MNARTable is the MNAR result structure: one aggregate per method, plus the baseline.
type MNARTable struct {
	Baseline MetricStats  `json:"baseline"`
	Methods  []MNARMethod `json:"methods"`
}

// Method returns the MNAR results for an imputation method
func (t *MNARTable) Method(name string) (MNARMethod, bool) {
	for _, m := range t.Methods {
		if m.Method == name {
			return m, true
		}
	}
	return MNARMethod{}, false
}

// Bar is one labelled aggregate for bar charts
type Bar struct {
	Label     string    `json:"label"`
	Aggregate Aggregate `json:"aggregate"`
}

// Bars lists the baseline followed by each method for the given metric.
func (t *MNARTable) Bars(m Metric) []Bar {
	bars := make([]Bar, 0, len(t.Methods)+1)
	bars = append(bars, Bar{Label: BaselineKey, Aggregate: t.Baseline.Get(m)})
	for _, method := range t.Methods {
		bars = append(bars, Bar{Label: method.Method, Aggregate: method.Stats.Get(m)})
	}
	return bars
}
