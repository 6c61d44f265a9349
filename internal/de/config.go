package de

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Config.Validate for any configuration
// violation. Use errors.Is(err, ErrInvalidConfig) to check for this error.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the control parameters for a differential evolution study.
// All fields are fixed for the lifetime of the study; there is no adaptive
// tuning of F or CR.
type Config struct {
	// RunNo is the number of independent runs, each with a freshly
	// initialized population.
	RunNo int

	// NPop is the population size. DE/rand/1 mutation needs three donors
	// distinct from the target, so NPop must be at least 4.
	NPop int

	// MaxIt is the number of generations per run. The run terminates after
	// exactly MaxIt generations; there is no other stopping criterion.
	MaxIt int

	// Dim is the dimensionality of the search space.
	Dim int

	// LB and UB are the scalar box bounds applied to every dimension.
	LB float64
	UB float64

	// F is the mutation scaling factor applied to the difference vector.
	F float64

	// CR is the per-dimension crossover probability in [0, 1].
	CR float64

	// Seed is the base random seed. Run r uses a source seeded with
	// Seed + r, so runs are independent yet reproducible.
	Seed int64
}

// Validate checks the configuration before any run starts. It returns an
// error wrapping ErrInvalidConfig on the first violation found; no partial
// execution happens on a bad config.
func (c Config) Validate() error {
	if c.RunNo <= 0 {
		return fmt.Errorf("%w: RunNo must be positive, got %d", ErrInvalidConfig, c.RunNo)
	}
	if c.NPop < 4 {
		return fmt.Errorf("%w: NPop must be at least 4, got %d", ErrInvalidConfig, c.NPop)
	}
	if c.MaxIt <= 0 {
		return fmt.Errorf("%w: MaxIt must be positive, got %d", ErrInvalidConfig, c.MaxIt)
	}
	if c.Dim <= 0 {
		return fmt.Errorf("%w: Dim must be positive, got %d", ErrInvalidConfig, c.Dim)
	}
	if c.LB >= c.UB {
		return fmt.Errorf("%w: LB must be strictly below UB, got [%g, %g]", ErrInvalidConfig, c.LB, c.UB)
	}
	if c.CR < 0 || c.CR > 1 {
		return fmt.Errorf("%w: CR must be in [0, 1], got %g", ErrInvalidConfig, c.CR)
	}
	return nil
}
