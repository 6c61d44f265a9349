package de

import (
	"math/rand"

	"github.com/sourcegraph/conc/pool"
)

// RunParallel executes the study's independent runs concurrently on at most
// workers goroutines. Each run owns its population and a source seeded with
// Seed + run index, so results are identical to the sequential Run
// regardless of scheduling. Individuals within a generation are still
// processed sequentially.
func (o *Optimizer) RunParallel(workers int) (*Result, error) {
	if workers < 1 {
		workers = 1
	}

	res := &Result{Runs: make([]RunResult, o.cfg.RunNo)}
	p := pool.New().WithMaxGoroutines(workers).WithErrors()

	for r := 0; r < o.cfg.RunNo; r++ {
		r := r
		p.Go(func() error {
			rng := rand.New(rand.NewSource(o.cfg.Seed + int64(r)))
			rr, err := o.RunOnce(r, rng)
			if err != nil {
				return err
			}
			res.Runs[r] = *rr
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}
