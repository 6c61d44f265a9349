package de

// RunResult holds the output of one independent run.
type RunResult struct {
	// BestFitness is the lowest objective value observed during the run.
	BestFitness float64 `json:"bestFitness"`

	// BestPosition is the position that achieved BestFitness.
	BestPosition []float64 `json:"bestPosition"`

	// Curve is the convergence curve: the global best fitness recorded once
	// per generation. Its length is exactly MaxIt and it never increases.
	Curve []float64 `json:"curve"`
}

// DisplayBest returns the best fitness with the final reporting rule
// applied: values below 1e-8 read as exactly zero. The stored BestFitness is
// left untouched.
func (r *RunResult) DisplayBest() float64 {
	if r.BestFitness < zeroDisplayThreshold {
		return 0
	}
	return r.BestFitness
}

// Result aggregates the outcome of all independent runs of a study.
type Result struct {
	Runs []RunResult `json:"runs"`
}

// BestRun returns the index of the run with the lowest best fitness.
func (r *Result) BestRun() int {
	best := 0
	for i := range r.Runs {
		if r.Runs[i].BestFitness < r.Runs[best].BestFitness {
			best = i
		}
	}
	return best
}

// BestFitnessPerRun returns the final best fitness of each run in run order.
func (r *Result) BestFitnessPerRun() []float64 {
	vals := make([]float64, len(r.Runs))
	for i := range r.Runs {
		vals[i] = r.Runs[i].BestFitness
	}
	return vals
}
