// Package de implements the classic differential evolution metaheuristic
// (DE/rand/1 with binomial crossover) for minimizing a continuous,
// box-constrained objective over a fixed-dimensional real search space.
//
// The engine is deliberately plain: constant control parameters, clamping
// boundary repair, a fixed generation budget and per-slot elitist selection
// against the previous generation's accepted state. Presentation concerns
// (logging, tables, persistence) live outside this package; the engine only
// produces data.
package de

import (
	"fmt"
	"math"
	"math/rand"
)

// zeroDisplayThreshold is the cutoff below which a final best fitness is
// reported as exactly zero. Display-only: the recorded state keeps the raw
// value.
const zeroDisplayThreshold = 1e-8

// ProgressFunc receives the global best fitness after each completed
// generation. run is the zero-based run index, gen the zero-based generation
// index. Callbacks execute synchronously on the run's goroutine.
type ProgressFunc func(run, gen int, bestFitness float64)

// Optimizer executes differential evolution studies for one objective under
// one validated configuration. An Optimizer is safe to reuse across calls;
// each run owns all of its mutable state.
type Optimizer struct {
	cfg Config
	obj Objective

	// OnProgress, when non-nil, is invoked after every generation.
	OnProgress ProgressFunc
}

// New validates cfg and returns an Optimizer for the given objective.
func New(cfg Config, obj Objective) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: objective must not be nil", ErrInvalidConfig)
	}
	return &Optimizer{cfg: cfg, obj: obj}, nil
}

// Config returns the validated configuration the optimizer was built with.
func (o *Optimizer) Config() Config {
	return o.cfg
}

// Run executes cfg.RunNo independent runs sequentially and collects the
// per-run results. Run r draws from a source seeded with Seed + r, so the
// whole study is reproducible.
func (o *Optimizer) Run() (*Result, error) {
	res := &Result{Runs: make([]RunResult, o.cfg.RunNo)}
	for r := 0; r < o.cfg.RunNo; r++ {
		rng := rand.New(rand.NewSource(o.cfg.Seed + int64(r)))
		rr, err := o.RunOnce(r, rng)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", r, err)
		}
		res.Runs[r] = *rr
	}
	return res, nil
}

// RunOnce executes a single independent run using the supplied random
// source: population initialization followed by exactly MaxIt generations of
// mutation, crossover, boundary repair, evaluation and elitist selection.
// The run index is only used for progress reporting.
func (o *Optimizer) RunOnce(run int, rng *rand.Rand) (*RunResult, error) {
	pop, err := newPopulation(o.cfg, o.obj, rng)
	if err != nil {
		return nil, fmt.Errorf("population init: %w", err)
	}

	curve := make([]float64, 0, o.cfg.MaxIt)
	for gen := 0; gen < o.cfg.MaxIt; gen++ {
		if err := o.step(pop, rng); err != nil {
			return nil, fmt.Errorf("generation %d: %w", gen, err)
		}
		curve = append(curve, pop.bestFitness)
		if o.OnProgress != nil {
			o.OnProgress(run, gen, pop.bestFitness)
		}
	}

	return &RunResult{
		BestFitness:  pop.bestFitness,
		BestPosition: append([]float64(nil), pop.bestPosition...),
		Curve:        curve,
	}, nil
}

// step advances the population by one generation. Donor positions come from
// a snapshot taken at the top of the generation, so every individual mutates
// against a generation-coherent view even though slots are updated in place
// in index order.
func (o *Optimizer) step(pop *population, rng *rand.Rand) error {
	prev := pop.snapshot()

	for i := range pop.members {
		ind := &pop.members[i]

		r1, r2, r3 := pickDonors(rng, len(pop.members), i)

		trial := make([]float64, o.cfg.Dim)
		for j := 0; j < o.cfg.Dim; j++ {
			mutant := prev[r3][j] + o.cfg.F*(prev[r1][j]-prev[r2][j])
			mutant = clamp(mutant, o.cfg.LB, o.cfg.UB)
			if rng.Float64() <= o.cfg.CR {
				trial[j] = mutant
			} else {
				trial[j] = prev[i][j]
			}
			trial[j] = clamp(trial[j], o.cfg.LB, o.cfg.UB)
		}

		// The trial unconditionally becomes the working position and is
		// evaluated; selection then decides against the accepted state
		// retained from the previous generation, not the live parent.
		ind.position = trial
		fit, err := evaluate(o.obj, trial)
		if err != nil {
			return err
		}
		ind.fitness = fit

		if ind.acceptedFitness < ind.fitness {
			copy(ind.position, ind.acceptedPosition)
			ind.fitness = ind.acceptedFitness
		}
		copy(ind.acceptedPosition, ind.position)
		ind.acceptedFitness = ind.fitness
	}

	pop.updateBest()
	return nil
}

// pickDonors draws three population indices that are pairwise distinct and
// each distinct from the target index, uniformly at random. Requires n >= 4,
// which Config.Validate guarantees.
func pickDonors(rng *rand.Rand, n, target int) (r1, r2, r3 int) {
	r1 = rng.Intn(n)
	for r1 == target {
		r1 = rng.Intn(n)
	}
	r2 = rng.Intn(n)
	for r2 == target || r2 == r1 {
		r2 = rng.Intn(n)
	}
	r3 = rng.Intn(n)
	for r3 == target || r3 == r1 || r3 == r2 {
		r3 = rng.Intn(n)
	}
	return r1, r2, r3
}

// clamp repairs an out-of-bounds component to the nearest bound, inclusive
// at both ends.
func clamp(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}
