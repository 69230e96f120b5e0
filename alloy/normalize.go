package alloy

import "math"

// NormalizeComposition balances a vector so the composition features sum
// to 100%. Al is the base element in aluminium alloys, so it absorbs the
// remainder; when clamping Al to its limits leaves the total off by more
// than 0.5%, the other elements are rescaled proportionally. The input
// is not modified.
func NormalizeComposition(x []float64, schema *FeatureSchema) []float64 {
	out := append([]float64(nil), x...)
	alIdx, ok := schema.Index("Al")
	if !ok || alIdx >= len(out) {
		return out
	}

	var nonAlSum float64
	for _, elem := range CompositionElements {
		if elem == "Al" {
			continue
		}
		if i, ok := schema.Index(elem); ok && i < len(out) {
			nonAlSum += out[i]
		}
	}

	limits := CompositionLimits["Al"]
	targetAl := compositionSumTarget - nonAlSum
	targetAl = math.Max(limits.Low, math.Min(limits.High, targetAl))
	out[alIdx] = targetAl

	if math.Abs(targetAl+nonAlSum-compositionSumTarget) > 0.5 && nonAlSum > 0 {
		scale := (compositionSumTarget - targetAl) / nonAlSum
		for _, elem := range CompositionElements {
			if elem == "Al" {
				continue
			}
			if i, ok := schema.Index(elem); ok && i < len(out) {
				out[i] *= scale
			}
		}
	}
	return out
}
