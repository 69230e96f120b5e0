// Package alloy implements inverse design of aluminium alloys: given a
// target mechanical-property value and a regression oracle, it searches
// for compositions and processing parameters whose predicted property
// falls inside a tolerance band of the target.
//
// Three independent strategies feed one ranked result: a historical
// dataset lookup, a fixed-seed random scan of the bound box, and
// repeated differential-evolution runs against the oracle. Candidates
// are annotated with physical-validity checks and alloy-series tags,
// deduplicated by composition distance, and ordered valid-first by
// prediction error. All randomness is seeded per call, so identical
// inputs always produce identical results.
package alloy
