package de

import (
	"errors"
	"fmt"
	"math"
)

// Objective maps a candidate position to a scalar fitness to be minimized.
// It must be deterministic: repeated evaluation of the same vector has to
// yield the same fitness, since elitism and best-tracking compare values
// across generations.
type Objective func(x []float64) (float64, error)

// ErrNonFiniteFitness is returned when an objective produces NaN or an
// infinity. A non-finite fitness would corrupt the monotonic-best invariant,
// so it is fatal for the run rather than being replaced by a sentinel.
var ErrNonFiniteFitness = errors.New("objective returned non-finite fitness")

// evaluate calls the objective and rejects non-finite results.
func evaluate(obj Objective, x []float64) (float64, error) {
	fit, err := obj(x)
	if err != nil {
		return 0, fmt.Errorf("objective evaluation failed: %w", err)
	}
	if math.IsNaN(fit) || math.IsInf(fit, 0) {
		return 0, fmt.Errorf("%w: %g", ErrNonFiniteFitness, fit)
	}
	return fit, nil
}
