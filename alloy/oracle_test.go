package alloy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Enwin-A/Alloy-App/alloy"
)

func TestNewBundle(t *testing.T) {
	_, err := alloy.NewBundle(nil, nil)
	require.ErrorIs(t, err, alloy.ErrNoOracle)

	oracle := alloy.OracleFunc(func(context.Context, []float64) (float64, error) { return 1, nil })
	bundle, err := alloy.NewBundle(oracle, nil)
	require.NoError(t, err)
	assert.Equal(t, alloy.DefaultSchema().Names(), bundle.Schema.Names(), "nil schema defaults to the training schema")
}

func TestPredictSingle(t *testing.T) {
	schema := alloy.DefaultSchema()
	var seen []float64
	oracle := alloy.OracleFunc(func(_ context.Context, x []float64) (float64, error) {
		seen = append([]float64(nil), x...)
		return 250, nil
	})
	bundle, err := alloy.NewBundle(oracle, schema)
	require.NoError(t, err)

	pred, err := bundle.PredictSingle(context.Background(),
		map[string]float64{"Al": 96.9, "Mg": 3.0, "Cu": 0.1},
		map[string]float64{"homog_temp_max_C": 500})
	require.NoError(t, err)

	assert.Equal(t, 250.0, pred.PredictedValue)
	assert.True(t, pred.IsValid)
	assert.Empty(t, pred.Violations)
	assert.Equal(t, []string{"5xxx (Mg-based (marine))"}, pred.AlloySeries)

	require.Len(t, seen, schema.Len())
	alIdx, _ := schema.Index("Al")
	tempIdx, _ := schema.Index("homog_temp_max_C")
	feIdx, _ := schema.Index("Fe")
	assert.Equal(t, 96.9, seen[alIdx])
	assert.Equal(t, 500.0, seen[tempIdx])
	assert.Zero(t, seen[feIdx], "missing features default to 0")
}

func TestPredictSingle_CompositionOverridesProcessing(t *testing.T) {
	schema := alloy.NewFeatureSchema([]string{"Mg"})
	oracle := alloy.OracleFunc(func(_ context.Context, x []float64) (float64, error) {
		return x[0], nil
	})
	bundle, err := alloy.NewBundle(oracle, schema)
	require.NoError(t, err)
	pred, err := bundle.PredictSingle(context.Background(),
		map[string]float64{"Mg": 3}, map[string]float64{"Mg": 9})
	require.NoError(t, err)
	assert.Equal(t, 3.0, pred.PredictedValue)
}

func TestPredictSingle_OracleError(t *testing.T) {
	oracle := alloy.OracleFunc(func(context.Context, []float64) (float64, error) {
		return 0, errors.New("bad tensor")
	})
	bundle, err := alloy.NewBundle(oracle, nil)
	require.NoError(t, err)
	_, err = bundle.PredictSingle(context.Background(), map[string]float64{"Al": 95}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad tensor")
}
