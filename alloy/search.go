package alloy

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
)

// Search constants mirror the tuned values of the reference pipeline.
// The fixed seeds make every search reproducible: re-running with the
// same oracle, dataset and inputs yields an identical result.
const (
	scanSamples       = 500
	scanSeed          = 42
	optSeedBase       = 42
	historicalLimit   = 10
	minOptAttempts    = 30
	oracleFailPenalty = 1e10
)

// ErrInvalidTarget is returned for a non-positive target value.
var ErrInvalidTarget = errors.New("alloy: target value must be positive")

// SuggestRequest parameterizes one inverse-design search.
type SuggestRequest struct {
	// Target names the property being designed for, e.g. "YS" or "UTS".
	Target string
	// Value is the desired property value. Must be > 0.
	Value float64
	// NSuggestions caps the returned candidate list. Default 10.
	NSuggestions int
	// Tolerance is the acceptable band as a fraction of Value. Default 0.1.
	Tolerance float64
}

func (r *SuggestRequest) applyDefaults() {
	if r.NSuggestions <= 0 {
		r.NSuggestions = 10
	}
	if r.Tolerance <= 0 {
		r.Tolerance = 0.1
	}
}

// Suggester runs the multi-strategy candidate search over a model
// bundle. Searches are synchronous and share no mutable state, so a
// single Suggester may serve concurrent calls.
type Suggester struct {
	bundle *Bundle
	data   Dataset
	logger *log.Logger
}

// NewSuggester constructs a suggester. The dataset is optional; without
// one the historical strategy is skipped. The logger may be nil.
func NewSuggester(bundle *Bundle, data Dataset, logger *log.Logger) (*Suggester, error) {
	if bundle == nil || bundle.Oracle == nil {
		return nil, ErrNoOracle
	}
	return &Suggester{bundle: bundle, data: data, logger: logger}, nil
}

// Suggest produces up to NSuggestions ranked feature vectors whose
// predicted property value approaches the target. The three strategies
// run in fixed order; no strategy failure is fatal, so the result may
// hold fewer candidates than requested, or none.
func (s *Suggester) Suggest(ctx context.Context, req SuggestRequest) (*SearchResult, error) {
	if req.Value <= 0 {
		return nil, ErrInvalidTarget
	}
	req.applyDefaults()
	band := TargetRange{
		Low:  req.Value * (1 - req.Tolerance),
		High: req.Value * (1 + req.Tolerance),
	}

	var all []Candidate
	reports := make([]StrategyReport, 0, 3)

	histCands, histReport := s.historical(ctx, req, band)
	all = append(all, histCands...)
	reports = append(reports, histReport)

	scanCands, stats, scanReport := s.randomScan(ctx, req, band)
	all = append(all, scanCands...)
	reports = append(reports, scanReport)

	optCands, optReport := s.optimize(ctx, req, band, len(all))
	all = append(all, optCands...)
	reports = append(reports, optReport)

	unique := Dedupe(all)
	ranked := Rank(unique, req.NSuggestions)
	s.logf("search %s=%.1f: %d raw, %d unique, %d returned",
		req.Target, req.Value, len(all), len(unique), len(ranked))

	return &SearchResult{
		Candidates:  ranked,
		ModelStats:  stats,
		TargetRange: band,
		Reports:     reports,
	}, nil
}

// newCandidate annotates a vector with prediction error, validity and
// series tags. Candidates are immutable once built.
func (s *Suggester) newCandidate(x []float64, predicted float64, req SuggestRequest, source string, actual *float64) Candidate {
	isValid, violations := Validate(x, s.bundle.Schema)
	composition := s.bundle.Schema.CompositionOf(x)
	absErr := math.Abs(predicted - req.Value)
	return Candidate{
		Composition:    composition,
		PredictedValue: predicted,
		ActualValue:    actual,
		Error:          absErr,
		ErrorPct:       absErr / req.Value * 100,
		IsValid:        isValid,
		Violations:     violations,
		Source:         source,
		AlloySeries:    ClassifySeries(composition),
	}
}

func skippedReport(source, format string, args ...any) StrategyReport {
	return StrategyReport{
		Source:  source,
		Skipped: true,
		Reason:  fmt.Sprintf(format, args...),
	}
}

func (s *Suggester) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
