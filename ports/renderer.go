package ports

import (
	"imputelab/domain/stats"
)

// ChartRendererPort draws result tables. Implementations return the path of what they wrote.
type ChartRendererPort interface {
	RenderLineComparison(table *stats.ResultTable, metric stats.Metric) (string, error)
	RenderBarComparison(table *stats.MNARTable, metric stats.Metric) (string, error)
}
