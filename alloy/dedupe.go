package alloy

import "math"

// dedupeThreshold is the minimum L1 distance, in percentage points over
// the composition features, separating two distinct candidates.
const dedupeThreshold = 1.0

// Dedupe merges near-identical candidates across strategies, preserving
// first-seen order. A candidate is discarded when its composition lies
// within the L1 threshold of any already-accepted candidate.
func Dedupe(candidates []Candidate) []Candidate {
	unique := make([]Candidate, 0, len(candidates))
	for _, cand := range candidates {
		dup := false
		for _, kept := range unique {
			if compositionDistance(cand.Composition, kept.Composition) < dedupeThreshold {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, cand)
		}
	}
	return unique
}

// compositionDistance is the sum of absolute per-element differences
// over the composition features, missing elements counting as 0.
func compositionDistance(a, b map[string]float64) float64 {
	var dist float64
	for _, elem := range CompositionElements {
		dist += math.Abs(a[elem] - b[elem])
	}
	return dist
}
