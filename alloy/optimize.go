package alloy

import (
	"context"
	"math"

	"github.com/Enwin-A/Alloy-App/de"
)

// Tuning for the optimization strategy. Each attempt seeds its own
// optimizer run from a fixed base plus the attempt index.
const (
	optMaxIter       = 200
	optTol           = 0.001
	optMutationLow   = 0.5
	optMutationHigh  = 1.5
	optRecombination = 0.7
	// optErrorSlack widens the acceptable relative error for optimizer
	// results beyond the request tolerance.
	optErrorSlack = 1.5
)

// optimize is strategy C: minimize the squared prediction error over
// the bound box with differential evolution. Oracle failures inside the
// objective become a large finite penalty so the optimizer never
// aborts; a failed attempt is simply skipped. Attempts stop once twice
// the requested candidate count has accumulated across all strategies.
func (s *Suggester) optimize(ctx context.Context, req SuggestRequest, band TargetRange, have int) ([]Candidate, StrategyReport) {
	attempts := minOptAttempts
	if 3*req.NSuggestions > attempts {
		attempts = 3 * req.NSuggestions
	}

	bounds := make([]de.Bound, 0, s.bundle.Schema.Len())
	for _, r := range s.bundle.Schema.Bounds() {
		bounds = append(bounds, de.Bound{Min: r.Low, Max: r.High})
	}
	objective := func(x []float64) float64 {
		predicted, err := s.bundle.Oracle.Predict(ctx, x)
		if err != nil {
			return oracleFailPenalty
		}
		d := predicted - req.Value
		return d * d
	}
	funThreshold := (req.Value * req.Tolerance) * (req.Value * req.Tolerance)

	var out []Candidate
	total := have
	for attempt := 0; attempt < attempts; attempt++ {
		if total >= 2*req.NSuggestions {
			break
		}
		result, err := de.Minimize(objective, bounds, de.Options{
			MaxIter:       optMaxIter,
			Tol:           optTol,
			Mutation:      [2]float64{optMutationLow, optMutationHigh},
			Recombination: optRecombination,
			Seed:          optSeedBase + int64(attempt),
		})
		if err != nil {
			continue
		}
		if !result.Converged && result.Fun >= funThreshold {
			continue
		}
		predicted, err := s.bundle.Oracle.Predict(ctx, result.X)
		if err != nil {
			continue
		}
		if math.Abs(predicted-req.Value)/req.Value > req.Tolerance*optErrorSlack {
			continue
		}
		out = append(out, s.newCandidate(result.X, predicted, req, SourceOptimization, nil))
		total++
	}
	return out, StrategyReport{Source: SourceOptimization, Candidates: len(out)}
}
