package run

import (
	"time"

	"imputelab/domain/core"
	"imputelab/domain/dataset"
	"imputelab/domain/stats"
)

// Report is the complete in-memory output of one experiment run
type Report struct {
	RunID      core.RunID         `json:"run_id"`
	Seed       int64              `json:"seed"`
	Dataset    dataset.Shape      `json:"dataset"`
	TrialCount int                `json:"trial_count"`
	StartedAt  time.Time          `json:"started_at"`
	Duration   time.Duration      `json:"duration"`
	MCAR       *stats.ResultTable `json:"mcar"`
	MNAR       *stats.MNARTable   `json:"mnar"`
}

// Baseline returns the shared zero-missingness stats
func (r *Report) Baseline() stats.MetricStats {
	if r.MCAR != nil {
		return r.MCAR.Baseline
	}
	if r.MNAR != nil {
		return r.MNAR.Baseline
	}
	return stats.MetricStats{}
}
