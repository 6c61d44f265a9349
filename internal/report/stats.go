// Package report turns finished study results into human-facing output:
// terminal tables, cross-run statistics and spreadsheet exports. It consumes
// the engine's plain data and contains no algorithmic logic.
package report

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the per-run best fitness values of a study.
type Summary struct {
	Runs   int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize computes cross-run statistics over the final best fitness of
// each run. With a single run the standard deviation is reported as zero.
func Summarize(perRun []float64) Summary {
	if len(perRun) == 0 {
		return Summary{}
	}

	s := Summary{
		Runs: len(perRun),
		Mean: stat.Mean(perRun, nil),
		Min:  floats.Min(perRun),
		Max:  floats.Max(perRun),
	}
	if len(perRun) > 1 {
		s.StdDev = stat.StdDev(perRun, nil)
	}
	return s
}
