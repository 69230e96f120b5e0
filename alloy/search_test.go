package alloy_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Enwin-A/Alloy-App/alloy"
)

// fakeDataset is an in-memory Dataset stub.
type fakeDataset struct {
	rows []alloy.Row
	err  error
}

func (d *fakeDataset) Rows(string) ([]alloy.Row, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.rows, nil
}

// mgOracle predicts 60·Mg, giving a prediction range of [0,360] over the
// Mg bounds.
func mgOracle(t *testing.T, schema *alloy.FeatureSchema) alloy.Oracle {
	t.Helper()
	idx, ok := schema.Index("Mg")
	require.True(t, ok)
	return alloy.OracleFunc(func(_ context.Context, x []float64) (float64, error) {
		return 60 * x[idx], nil
	})
}

func newTestSuggester(t *testing.T, oracle alloy.Oracle, data alloy.Dataset) *alloy.Suggester {
	t.Helper()
	bundle, err := alloy.NewBundle(oracle, alloy.DefaultSchema())
	require.NoError(t, err)
	s, err := alloy.NewSuggester(bundle, data, nil)
	require.NoError(t, err)
	return s
}

func TestSuggest_RejectsNonPositiveTarget(t *testing.T) {
	s := newTestSuggester(t, mgOracle(t, alloy.DefaultSchema()), nil)
	_, err := s.Suggest(context.Background(), alloy.SuggestRequest{Target: "YS", Value: 0})
	require.ErrorIs(t, err, alloy.ErrInvalidTarget)
	_, err = s.Suggest(context.Background(), alloy.SuggestRequest{Target: "YS", Value: -5})
	require.ErrorIs(t, err, alloy.ErrInvalidTarget)
}

func TestSuggest_Deterministic(t *testing.T) {
	data := &fakeDataset{rows: []alloy.Row{
		{Values: map[string]float64{"Al": 96.5, "Mg": 3.3, "YS (MPa)": 198}, Target: 198},
		{Values: map[string]float64{"Al": 94.8, "Mg": 3.5, "YS (MPa)": 210}, Target: 210},
		{Values: map[string]float64{"Al": 99.0, "Mg": 0.5, "YS (MPa)": 30}, Target: 30},
	}}
	schema := alloy.DefaultSchema()

	run := func() *alloy.SearchResult {
		s := newTestSuggester(t, mgOracle(t, schema), data)
		res, err := s.Suggest(context.Background(), alloy.SuggestRequest{
			Target: "YS", Value: 200, NSuggestions: 5, Tolerance: 0.1,
		})
		require.NoError(t, err)
		return res
	}
	first := run()
	second := run()
	assert.Equal(t, first, second, "identical inputs must reproduce the identical result")
	assert.NotEmpty(t, first.Candidates)
}

func TestSuggest_BandRespectAndBoundContainment(t *testing.T) {
	schema := alloy.DefaultSchema()
	s := newTestSuggester(t, mgOracle(t, schema), nil)
	res, err := s.Suggest(context.Background(), alloy.SuggestRequest{
		Target: "YS", Value: 200, NSuggestions: 8, Tolerance: 0.1,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Candidates)
	assert.InDelta(t, 180, res.TargetRange.Low, 1e-9)
	assert.InDelta(t, 220, res.TargetRange.High, 1e-9)

	for _, cand := range res.Candidates {
		switch cand.Source {
		case alloy.SourceRandomScan:
			assert.True(t, res.TargetRange.Contains(cand.PredictedValue),
				"scan candidate outside band: %f", cand.PredictedValue)
		case alloy.SourceOptimization:
			assert.LessOrEqual(t, math.Abs(cand.PredictedValue-200)/200, 1.5*0.1)
		}
		// Sampled and optimized points never leave the bound box, so any
		// violation must come from the sum/alloying checks.
		for elem, val := range cand.Composition {
			limits := alloy.CompositionLimits[elem]
			assert.GreaterOrEqual(t, val, limits.Low, "%s below bound", elem)
			assert.LessOrEqual(t, val, limits.High, "%s above bound", elem)
		}
		for _, violation := range cand.Violations {
			assert.NotContains(t, violation, "outside")
		}
	}
}

func TestSuggest_RankingInvariant(t *testing.T) {
	schema := alloy.DefaultSchema()
	s := newTestSuggester(t, mgOracle(t, schema), nil)
	res, err := s.Suggest(context.Background(), alloy.SuggestRequest{
		Target: "YS", Value: 200, NSuggestions: 10, Tolerance: 0.1,
	})
	require.NoError(t, err)
	for i := 1; i < len(res.Candidates); i++ {
		prev, cur := res.Candidates[i-1], res.Candidates[i]
		if prev.IsValid == cur.IsValid {
			assert.LessOrEqual(t, prev.Error, cur.Error)
		} else {
			assert.True(t, prev.IsValid, "invalid candidate ranked before a valid one")
		}
	}
}

func TestSuggest_DedupInvariant(t *testing.T) {
	schema := alloy.DefaultSchema()
	s := newTestSuggester(t, mgOracle(t, schema), nil)
	res, err := s.Suggest(context.Background(), alloy.SuggestRequest{
		Target: "YS", Value: 200, NSuggestions: 10, Tolerance: 0.1,
	})
	require.NoError(t, err)
	for i := range res.Candidates {
		for j := i + 1; j < len(res.Candidates); j++ {
			var dist float64
			for _, elem := range alloy.CompositionElements {
				dist += math.Abs(res.Candidates[i].Composition[elem] - res.Candidates[j].Composition[elem])
			}
			assert.GreaterOrEqual(t, dist, 1.0)
		}
	}
}

func TestSuggest_FailingOracleReturnsEmptyResult(t *testing.T) {
	failing := alloy.OracleFunc(func(context.Context, []float64) (float64, error) {
		return 0, errors.New("model exploded")
	})
	s := newTestSuggester(t, failing, nil)
	res, err := s.Suggest(context.Background(), alloy.SuggestRequest{
		Target: "YS", Value: 200, NSuggestions: 5, Tolerance: 0.1,
	})
	require.NoError(t, err, "oracle failures must never fail the search")
	assert.Empty(t, res.Candidates)
	assert.Nil(t, res.ModelStats)
	require.Len(t, res.Reports, 3)
	for _, report := range res.Reports {
		assert.Zero(t, report.Candidates)
	}
}

func TestSuggest_HistoricalLookup(t *testing.T) {
	schema := alloy.DefaultSchema()
	data := &fakeDataset{rows: []alloy.Row{
		{Values: map[string]float64{"Al": 96.5, "Mg": 3.3}, Target: 198},
		{Values: map[string]float64{"Al": 99.0, "Mg": 0.2}, Target: 12}, // outside band
		{Values: map[string]float64{"Al": 94.9, "Mg": 3.5}, Target: 215},
	}}
	s := newTestSuggester(t, mgOracle(t, schema), data)
	res, err := s.Suggest(context.Background(), alloy.SuggestRequest{
		Target: "YS", Value: 200, NSuggestions: 10, Tolerance: 0.1,
	})
	require.NoError(t, err)

	var hist []alloy.Candidate
	for _, cand := range res.Candidates {
		if cand.Source == alloy.SourceHistorical {
			hist = append(hist, cand)
		}
	}
	require.NotEmpty(t, hist, "in-band dataset rows must surface as historical candidates")
	for _, cand := range hist {
		require.NotNil(t, cand.ActualValue)
		assert.True(t, res.TargetRange.Contains(*cand.ActualValue))
	}
	assert.Equal(t, alloy.SourceHistorical, res.Reports[0].Source)
	assert.False(t, res.Reports[0].Skipped)
	assert.Equal(t, 2, res.Reports[0].Candidates)
}

func TestSuggest_HistoricalSkipReasons(t *testing.T) {
	schema := alloy.DefaultSchema()

	t.Run("no dataset", func(t *testing.T) {
		s := newTestSuggester(t, mgOracle(t, schema), nil)
		res, err := s.Suggest(context.Background(), alloy.SuggestRequest{Target: "YS", Value: 200})
		require.NoError(t, err)
		require.True(t, res.Reports[0].Skipped)
		assert.Contains(t, res.Reports[0].Reason, "no historical dataset")
	})

	t.Run("unreadable dataset", func(t *testing.T) {
		s := newTestSuggester(t, mgOracle(t, schema), &fakeDataset{err: errors.New("disk gone")})
		res, err := s.Suggest(context.Background(), alloy.SuggestRequest{Target: "YS", Value: 200})
		require.NoError(t, err)
		require.True(t, res.Reports[0].Skipped)
		assert.Contains(t, res.Reports[0].Reason, "disk gone")
	})

	t.Run("unknown target column", func(t *testing.T) {
		s := newTestSuggester(t, mgOracle(t, schema), &fakeDataset{})
		res, err := s.Suggest(context.Background(), alloy.SuggestRequest{Target: "hardness", Value: 200})
		require.NoError(t, err)
		require.True(t, res.Reports[0].Skipped)
		assert.Contains(t, res.Reports[0].Reason, "hardness")
	})
}

func TestSuggest_OptimizationFindsTightTarget(t *testing.T) {
	// A tolerance this tight leaves the random scan with (almost) no
	// hits, so the optimizer has to do the work.
	schema := alloy.DefaultSchema()
	s := newTestSuggester(t, mgOracle(t, schema), nil)
	res, err := s.Suggest(context.Background(), alloy.SuggestRequest{
		Target: "YS", Value: 200, NSuggestions: 5, Tolerance: 0.002,
	})
	require.NoError(t, err)

	var opt []alloy.Candidate
	for _, cand := range res.Candidates {
		if cand.Source == alloy.SourceOptimization {
			opt = append(opt, cand)
		}
	}
	require.NotEmpty(t, opt, "optimizer should land inside a tight band")
	for _, cand := range opt {
		assert.LessOrEqual(t, math.Abs(cand.PredictedValue-200)/200, 1.5*0.002)
	}
}

func TestSuggest_ScanStatistics(t *testing.T) {
	schema := alloy.DefaultSchema()
	s := newTestSuggester(t, mgOracle(t, schema), nil)
	res, err := s.Suggest(context.Background(), alloy.SuggestRequest{
		Target: "YS", Value: 200, NSuggestions: 5, Tolerance: 0.1,
	})
	require.NoError(t, err)
	require.NotNil(t, res.ModelStats)
	stats := res.ModelStats
	assert.LessOrEqual(t, stats.PredMin, stats.PredMean)
	assert.LessOrEqual(t, stats.PredMean, stats.PredMax)
	assert.GreaterOrEqual(t, stats.PredMin, 0.0)
	assert.LessOrEqual(t, stats.PredMax, 360.0)
	assert.True(t, stats.InRange, "samples land in the band, so in_range holds")
}

func TestNewSuggester_RequiresOracle(t *testing.T) {
	_, err := alloy.NewSuggester(nil, nil, nil)
	require.ErrorIs(t, err, alloy.ErrNoOracle)
	_, err = alloy.NewSuggester(&alloy.Bundle{Schema: alloy.DefaultSchema()}, nil, nil)
	require.ErrorIs(t, err, alloy.ErrNoOracle)
}

func TestSuggest_SourcesAreWellKnown(t *testing.T) {
	schema := alloy.DefaultSchema()
	data := &fakeDataset{rows: []alloy.Row{
		{Values: map[string]float64{"Al": 96.5, "Mg": 3.3}, Target: 200},
	}}
	s := newTestSuggester(t, mgOracle(t, schema), data)
	res, err := s.Suggest(context.Background(), alloy.SuggestRequest{
		Target: "YS", Value: 200, NSuggestions: 10, Tolerance: 0.1,
	})
	require.NoError(t, err)
	known := map[string]bool{
		alloy.SourceHistorical:   true,
		alloy.SourceRandomScan:   true,
		alloy.SourceOptimization: true,
	}
	for _, cand := range res.Candidates {
		assert.True(t, known[cand.Source], "unknown source %q", cand.Source)
		assert.NotEmpty(t, cand.AlloySeries)
		if strings.HasPrefix(cand.AlloySeries[0], "5xxx") {
			assert.InDelta(t, 200.0/60.0, cand.Composition["Mg"], 1.4)
		}
	}
}
