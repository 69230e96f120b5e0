package de

import (
	"errors"
	"math"
	"math/rand"
)

// Objective is the function to minimize. It must never panic; callers
// map evaluation failures to a large finite penalty instead.
type Objective func(x []float64) float64

// Bound is an inclusive box constraint on one dimension.
type Bound struct {
	Min float64
	Max float64
}

// Options tunes a minimization run. Zero values fall back to defaults.
type Options struct {
	// PopFactor sets the population size as a multiple of the
	// dimensionality. Default 15, total population never below 5.
	PopFactor int
	// MaxIter bounds the number of generations. Default 100.
	MaxIter int
	// Tol is the relative convergence tolerance on the spread of
	// population energies. Default 0.01.
	Tol float64
	// Mutation is the dither interval for the differential weight; a
	// fresh weight is drawn per generation. Default [0.5, 1.0).
	Mutation [2]float64
	// Recombination is the crossover probability. Default 0.7.
	Recombination float64
	// Seed initializes the run's private random-number generator.
	Seed int64
}

func (o *Options) applyDefaults() {
	if o.PopFactor <= 0 {
		o.PopFactor = 15
	}
	if o.MaxIter <= 0 {
		o.MaxIter = 100
	}
	if o.Tol <= 0 {
		o.Tol = 0.01
	}
	if o.Mutation == [2]float64{} {
		o.Mutation = [2]float64{0.5, 1.0}
	}
	if o.Recombination <= 0 {
		o.Recombination = 0.7
	}
}

// Result reports the best point found and whether the run converged.
type Result struct {
	X           []float64
	Fun         float64
	Converged   bool
	Iterations  int
	Evaluations int
}

var (
	// ErrNoObjective is returned when no objective function is given.
	ErrNoObjective = errors.New("de: objective function is nil")
	// ErrNoBounds is returned when the bound box is empty.
	ErrNoBounds = errors.New("de: bounds are empty")
	// ErrInvalidBound is returned when a bound has Min > Max.
	ErrInvalidBound = errors.New("de: bound has min greater than max")
	// ErrInvalidMutation is returned for a malformed dither interval.
	ErrInvalidMutation = errors.New("de: mutation interval is invalid")
)

// Minimize searches the bound box for a minimum of fn.
func Minimize(fn Objective, bounds []Bound, opts Options) (Result, error) {
	if fn == nil {
		return Result{}, ErrNoObjective
	}
	if len(bounds) == 0 {
		return Result{}, ErrNoBounds
	}
	for _, b := range bounds {
		if b.Min > b.Max {
			return Result{}, ErrInvalidBound
		}
	}
	opts.applyDefaults()
	if opts.Mutation[0] > opts.Mutation[1] || opts.Mutation[0] < 0 {
		return Result{}, ErrInvalidMutation
	}

	dim := len(bounds)
	popSize := opts.PopFactor * dim
	if popSize < 5 {
		popSize = 5
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	// Initial population: uniform over the box.
	pop := make([][]float64, popSize)
	energies := make([]float64, popSize)
	evals := 0
	bestIdx := 0
	for i := range pop {
		pop[i] = samplePoint(rng, bounds)
		energies[i] = fn(pop[i])
		evals++
		if energies[i] < energies[bestIdx] {
			bestIdx = i
		}
	}

	res := Result{}
	trial := make([]float64, dim)
	for gen := 1; gen <= opts.MaxIter; gen++ {
		res.Iterations = gen
		f := opts.Mutation[0] + rng.Float64()*(opts.Mutation[1]-opts.Mutation[0])
		for i := 0; i < popSize; i++ {
			r1, r2, r3 := pickDistinct(rng, popSize, i)
			jrand := rng.Intn(dim)
			for j := 0; j < dim; j++ {
				if j == jrand || rng.Float64() < opts.Recombination {
					trial[j] = clamp(pop[r1][j]+f*(pop[r2][j]-pop[r3][j]), bounds[j])
				} else {
					trial[j] = pop[i][j]
				}
			}
			e := fn(trial)
			evals++
			if e <= energies[i] {
				copy(pop[i], trial)
				energies[i] = e
				if e < energies[bestIdx] {
					bestIdx = i
				}
			}
		}
		if converged(energies, opts.Tol) {
			res.Converged = true
			break
		}
	}

	res.X = append([]float64(nil), pop[bestIdx]...)
	res.Fun = energies[bestIdx]
	res.Evaluations = evals
	return res, nil
}

// converged reports whether the spread of population energies has
// collapsed relative to their mean.
func converged(energies []float64, tol float64) bool {
	var mean float64
	for _, e := range energies {
		mean += e
	}
	mean /= float64(len(energies))
	var variance float64
	for _, e := range energies {
		d := e - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(energies)))
	return std <= tol*math.Abs(mean)
}

func samplePoint(rng *rand.Rand, bounds []Bound) []float64 {
	x := make([]float64, len(bounds))
	for i, b := range bounds {
		x[i] = b.Min + rng.Float64()*(b.Max-b.Min)
	}
	return x
}

// pickDistinct draws three distinct population indices, all different
// from skip.
func pickDistinct(rng *rand.Rand, n, skip int) (int, int, int) {
	idx := [3]int{}
	for k := 0; k < 3; {
		c := rng.Intn(n)
		if c == skip {
			continue
		}
		dup := false
		for j := 0; j < k; j++ {
			if idx[j] == c {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		idx[k] = c
		k++
	}
	return idx[0], idx[1], idx[2]
}

func clamp(v float64, b Bound) float64 {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}
