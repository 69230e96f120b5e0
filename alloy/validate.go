package alloy

import "fmt"

const (
	// compositionSumTarget is the expected total of all composition
	// features in wt%.
	compositionSumTarget = 100.0
	// compositionSumSlack is the allowed deviation from the target sum.
	compositionSumSlack = 1.0
	// maxTotalAlloying caps the combined alloying content in wt%.
	maxTotalAlloying = 15.0
)

// Validate scores a feature vector against the physical-plausibility
// rules: per-element limits, composition sum ≈ 100% and total alloying
// content. Violations are reported as data, in check order; they never
// exclude a vector from consideration. Pure function, never fails.
func Validate(x []float64, schema *FeatureSchema) (bool, []string) {
	var violations []string

	for _, elem := range CompositionElements {
		i, ok := schema.Index(elem)
		if !ok || i >= len(x) {
			continue
		}
		val := x[i]
		limits, ok := CompositionLimits[elem]
		if !ok {
			limits = Range{0, 100}
		}
		if !limits.Contains(val) {
			violations = append(violations,
				fmt.Sprintf("%s=%.2f%% outside [%g, %g]%%", elem, val, limits.Low, limits.High))
		}
	}

	compSum := sumElements(x, schema, CompositionElements)
	if diff := compSum - compositionSumTarget; diff > compositionSumSlack || diff < -compositionSumSlack {
		violations = append(violations,
			fmt.Sprintf("Composition sum=%.1f%%, should be ~100%%", compSum))
	}

	totalAlloying := sumElements(x, schema, AlloyingElements)
	if totalAlloying > maxTotalAlloying {
		violations = append(violations,
			fmt.Sprintf("Total alloying=%.1f%% > 15%%", totalAlloying))
	}

	return len(violations) == 0, violations
}

func sumElements(x []float64, schema *FeatureSchema, elements []string) float64 {
	var sum float64
	for _, elem := range elements {
		if i, ok := schema.Index(elem); ok && i < len(x) {
			sum += x[i]
		}
	}
	return sum
}
