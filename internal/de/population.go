package de

import "math/rand"

// individual is one slot of the population: the working solution vector with
// its fitness, plus the state retained by the previous generation's elitist
// selection. The accepted state is both the rollback target and the baseline
// for the next generation's acceptance test.
type individual struct {
	position []float64
	fitness  float64

	acceptedPosition []float64
	acceptedFitness  float64
}

// population is a fixed-size ordered collection of individuals together with
// the best solution observed so far within one run.
type population struct {
	members []individual

	bestPosition []float64
	bestFitness  float64
}

// newPopulation draws NPop positions uniformly from [LB, UB], evaluates each
// one, seeds the accepted state from the initial state and initializes the
// run's global best. An objective failure aborts initialization.
func newPopulation(cfg Config, obj Objective, rng *rand.Rand) (*population, error) {
	pop := &population{
		members: make([]individual, cfg.NPop),
	}

	for i := range pop.members {
		pos := make([]float64, cfg.Dim)
		for j := range pos {
			pos[j] = cfg.LB + (cfg.UB-cfg.LB)*rng.Float64()
		}

		fit, err := evaluate(obj, pos)
		if err != nil {
			return nil, err
		}

		pop.members[i] = individual{
			position:         pos,
			fitness:          fit,
			acceptedPosition: append([]float64(nil), pos...),
			acceptedFitness:  fit,
		}

		if i == 0 || fit < pop.bestFitness {
			pop.bestFitness = fit
			pop.bestPosition = append([]float64(nil), pos...)
		}
	}

	return pop, nil
}

// updateBest scans the population after a selection pass and records any
// strict improvement of the global best.
func (p *population) updateBest() {
	for i := range p.members {
		if p.members[i].fitness < p.bestFitness {
			p.bestFitness = p.members[i].fitness
			copy(p.bestPosition, p.members[i].position)
		}
	}
}

// snapshot returns a copy of every member's position as of the top of the
// current generation. Mutation donors are read from this copy so that
// in-place updates of earlier indices cannot leak into later draws.
func (p *population) snapshot() [][]float64 {
	positions := make([][]float64, len(p.members))
	for i := range p.members {
		positions[i] = append([]float64(nil), p.members[i].position...)
	}
	return positions
}
