// Package objective provides a small catalogue of standard continuous
// benchmark functions for exercising the optimizer, keyed by name for the
// CLI and the HTTP API. All functions are minimization problems with a known
// global minimum of zero.
package objective

import (
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/diffevo/internal/de"
)

// Benchmark couples an objective with the bounds it is conventionally
// evaluated on.
type Benchmark struct {
	Name string

	// LB and UB are the suggested per-dimension box bounds.
	LB float64
	UB float64

	Func de.Objective
}

var catalogue = map[string]Benchmark{
	"sphere": {
		Name: "sphere",
		LB:   -5, UB: 5,
		Func: Sphere,
	},
	"rosenbrock": {
		Name: "rosenbrock",
		LB:   -5, UB: 10,
		Func: Rosenbrock,
	},
	"rastrigin": {
		Name: "rastrigin",
		LB:   -5.12, UB: 5.12,
		Func: Rastrigin,
	},
	"ackley": {
		Name: "ackley",
		LB:   -32.768, UB: 32.768,
		Func: Ackley,
	},
}

// Lookup returns the benchmark registered under name.
func Lookup(name string) (Benchmark, error) {
	b, ok := catalogue[name]
	if !ok {
		return Benchmark{}, fmt.Errorf("unknown objective %q (available: %v)", name, Names())
	}
	return b, nil
}

// Names returns the registered benchmark names in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sphere is the sum of squares, minimum 0 at the origin.
func Sphere(x []float64) (float64, error) {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum, nil
}

// Rosenbrock is the classic banana valley, minimum 0 at (1, ..., 1).
func Rosenbrock(x []float64) (float64, error) {
	var sum float64
	for i := 0; i < len(x)-1; i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1 - x[i]
		sum += 100*a*a + b*b
	}
	return sum, nil
}

// Rastrigin is highly multimodal, minimum 0 at the origin.
func Rastrigin(x []float64) (float64, error) {
	sum := 10 * float64(len(x))
	for _, v := range x {
		sum += v*v - 10*math.Cos(2*math.Pi*v)
	}
	return sum, nil
}

// Ackley has a nearly flat outer region and a deep central hole, minimum 0
// at the origin.
func Ackley(x []float64) (float64, error) {
	n := float64(len(x))
	var sumSq, sumCos float64
	for _, v := range x {
		sumSq += v * v
		sumCos += math.Cos(2 * math.Pi * v)
	}
	return -20*math.Exp(-0.2*math.Sqrt(sumSq/n)) - math.Exp(sumCos/n) + 20 + math.E, nil
}
