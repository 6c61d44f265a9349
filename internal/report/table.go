package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/cwbudde/diffevo/internal/de"
)

// maxPositionColumns caps how many position components the table prints
// before truncating with an ellipsis.
const maxPositionColumns = 6

// WriteTable renders a per-run summary of the study to w, followed by a
// cross-run statistics footer when more than one run was executed.
func WriteTable(w io.Writer, objective string, result *de.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("diffevo study: %s", objective)

	t.AppendHeader(table.Row{"Run", "Initial Best", "Final Best", "Best Position"})

	bestRun := result.BestRun()
	for i, run := range result.Runs {
		label := fmt.Sprintf("%d", i+1)
		if i == bestRun {
			label += " *"
		}
		t.AppendRow(table.Row{
			label,
			fmt.Sprintf("%.6g", run.Curve[0]),
			fmt.Sprintf("%.6g", run.DisplayBest()),
			formatPosition(run.BestPosition),
		})
	}

	if len(result.Runs) > 1 {
		s := Summarize(result.BestFitnessPerRun())
		t.AppendFooter(table.Row{
			"stats",
			"",
			fmt.Sprintf("mean %.6g / std %.6g", s.Mean, s.StdDev),
			fmt.Sprintf("min %.6g / max %.6g", s.Min, s.Max),
		})
	}

	t.Render()
}

// formatPosition renders a position vector compactly, truncating long
// vectors after maxPositionColumns components.
func formatPosition(pos []float64) string {
	parts := make([]string, 0, maxPositionColumns+1)
	for i, v := range pos {
		if i == maxPositionColumns {
			parts = append(parts, fmt.Sprintf("… (%d total)", len(pos)))
			break
		}
		parts = append(parts, fmt.Sprintf("%.4g", v))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
