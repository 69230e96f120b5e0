package alloy

import (
	"context"
	"math/rand"
)

// randomScan is strategy B: draw a fixed number of vectors uniformly
// inside the bound box and keep those whose prediction lands in the
// band. The generator is seeded with a constant and owned by this call,
// so the sample sequence is identical on every run. Samples whose
// prediction fails are dropped from both candidates and statistics.
func (s *Suggester) randomScan(ctx context.Context, req SuggestRequest, band TargetRange) ([]Candidate, *ModelStats, StrategyReport) {
	rng := rand.New(rand.NewSource(scanSeed))
	bounds := s.bundle.Schema.Bounds()

	predictions := make([]float64, 0, scanSamples)
	points := make([][]float64, 0, scanSamples)
	for i := 0; i < scanSamples; i++ {
		x := make([]float64, len(bounds))
		for j, b := range bounds {
			x[j] = b.Low + rng.Float64()*(b.High-b.Low)
		}
		predicted, err := s.bundle.Oracle.Predict(ctx, x)
		if err != nil {
			continue
		}
		predictions = append(predictions, predicted)
		points = append(points, x)
	}
	if len(predictions) == 0 {
		return nil, nil, StrategyReport{Source: SourceRandomScan}
	}

	stats := &ModelStats{PredMin: predictions[0], PredMax: predictions[0]}
	var sum float64
	for _, p := range predictions {
		if p < stats.PredMin {
			stats.PredMin = p
		}
		if p > stats.PredMax {
			stats.PredMax = p
		}
		sum += p
	}
	stats.PredMean = sum / float64(len(predictions))
	stats.InRange = band.Contains(stats.PredMean)

	var out []Candidate
	for i, p := range predictions {
		if !band.Contains(p) {
			continue
		}
		stats.InRange = true
		out = append(out, s.newCandidate(points[i], p, req, SourceRandomScan, nil))
	}
	return out, stats, StrategyReport{Source: SourceRandomScan, Candidates: len(out)}
}
