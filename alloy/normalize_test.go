package alloy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Enwin-A/Alloy-App/alloy"
)

func compositionSum(schema *alloy.FeatureSchema, x []float64) float64 {
	var sum float64
	for _, v := range schema.CompositionOf(x) {
		sum += v
	}
	return sum
}

func TestNormalizeComposition_BalancesAl(t *testing.T) {
	schema := alloy.DefaultSchema()
	x := schema.Vector(map[string]float64{"Al": 90.0, "Mg": 3.0, "Cu": 1.0})
	out := alloy.NormalizeComposition(x, schema)

	alIdx, _ := schema.Index("Al")
	assert.Equal(t, 96.0, out[alIdx], "Al absorbs the remainder")
	assert.InDelta(t, 100.0, compositionSum(schema, out), 1e-9)
}

func TestNormalizeComposition_ClampAndRescale(t *testing.T) {
	schema := alloy.DefaultSchema()
	// Non-Al content of 30% would push Al below its floor; Al is clamped
	// to 85 and the rest is rescaled to close the gap.
	x := schema.Vector(map[string]float64{"Al": 50.0, "Mg": 6.0, "Zn": 8.0, "Cu": 5.0, "Mn": 1.5,
		"Si": 1.5, "Fe": 0.5, "Cr": 0.35, "Ni": 0.1, "Ti": 0.2, "Zr": 0.25, "Sc": 0.5, "Other": 0.15})
	out := alloy.NormalizeComposition(x, schema)
	alIdx, _ := schema.Index("Al")
	assert.Equal(t, 85.0, out[alIdx])
	assert.InDelta(t, 100.0, compositionSum(schema, out), 1e-9)
}

func TestNormalizeComposition_NoAlInSchema(t *testing.T) {
	schema := alloy.NewFeatureSchema([]string{"Mg", "Cu"})
	x := []float64{3, 1}
	out := alloy.NormalizeComposition(x, schema)
	assert.Equal(t, x, out)
}

func TestNormalizeComposition_InputUntouched(t *testing.T) {
	schema := alloy.DefaultSchema()
	x := schema.Vector(map[string]float64{"Al": 90.0, "Mg": 3.0})
	before := append([]float64(nil), x...)
	alloy.NormalizeComposition(x, schema)
	assert.Equal(t, before, x)
}
