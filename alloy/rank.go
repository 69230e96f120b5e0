package alloy

import "sort"

// Rank orders candidates by validity first, then ascending absolute
// error, and truncates to n. The sort is stable so candidates that tie
// keep their strategy order, preserving reproducibility.
func Rank(candidates []Candidate, n int) []Candidate {
	ranked := append([]Candidate(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].IsValid != ranked[j].IsValid {
			return ranked[i].IsValid
		}
		return ranked[i].Error < ranked[j].Error
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
