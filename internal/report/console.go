package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"imputelab/domain/run"
	"imputelab/domain/stats"
)

// WriteMissingFractions prints the per-column share of missing values after an MNAR
// injection targeting column.
func WriteMissingFractions(w io.Writer, column int, fractions []float64) error {
	parts := make([]string, len(fractions))
	for i, f := range fractions {
		parts[i] = strconv.FormatFloat(f, 'g', 6, 64)
	}
	_, err := fmt.Fprintf(w, "na_percentages: column %d missing\n[%s]\n", column, strings.Join(parts, ", "))
	return err
}

// PrintSummary writes the MCAR and MNAR tables of a report as aligned text.
func PrintSummary(w io.Writer, rep *run.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Run %s (seed %d, %d rows x %d cols, %d trials per combination, %s)\n",
		rep.RunID, rep.Seed, rep.Dataset.Rows, rep.Dataset.Cols, rep.TrialCount, rep.Duration.Round(1e6))

	base := rep.Baseline()
	fmt.Fprintf(tw, "\nBaseline\tR2 %.4f\tMSE %.4f\n", base.GoodnessOfFit.Mean, base.Loss.Mean)

	if rep.MCAR != nil {
		fmt.Fprintln(tw, "\nMCAR\nmethod\tmissing %\tR2 avg\tR2 std\tMSE avg\tMSE std\tn")
		for _, m := range rep.MCAR.Methods {
			for _, p := range m.Points {
				writeRow(tw, m.Method, strconv.Itoa(p.Key), p.Stats)
			}
		}
	}

	if rep.MNAR != nil {
		fmt.Fprintln(tw, "\nMNAR\nmethod\tcolumns\tR2 avg\tR2 std\tMSE avg\tMSE std\tn")
		writeRow(tw, stats.BaselineKey, "-", rep.MNAR.Baseline)
		for _, m := range rep.MNAR.Methods {
			writeRow(tw, m.Method, strconv.Itoa(len(m.PerColumn)), m.Stats)
		}
		for _, m := range rep.MNAR.Methods {
			if len(m.Skipped) > 0 {
				fmt.Fprintf(tw, "%s skipped columns %v (no observed values left)\n", m.Method, m.Skipped)
			}
		}
	}

	return tw.Flush()
}

func writeRow(w io.Writer, method, key string, s stats.MetricStats) {
	fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\t%.4f\t%.4f\t%d\n",
		method, key,
		s.GoodnessOfFit.Mean, s.GoodnessOfFit.StdDev,
		s.Loss.Mean, s.Loss.StdDev,
		s.Loss.N)
}
