package alloy

// Candidate sources.
const (
	SourceHistorical   = "historical"
	SourceRandomScan   = "random_scan"
	SourceOptimization = "optimization"
)

// Candidate is a suggested feature vector annotated with prediction and
// physical-validity information. Never mutated after creation.
type Candidate struct {
	Composition    map[string]float64 `json:"composition"`
	PredictedValue float64            `json:"predicted_value"`
	ActualValue    *float64           `json:"actual_value,omitempty"`
	Error          float64            `json:"error"`
	ErrorPct       float64            `json:"error_pct"`
	IsValid        bool               `json:"is_valid"`
	Violations     []string           `json:"violations"`
	Source         string             `json:"source"`
	AlloySeries    []string           `json:"alloy_series"`
}

// ModelStats aggregates the random-scan predictions.
type ModelStats struct {
	PredMin  float64 `json:"pred_min"`
	PredMax  float64 `json:"pred_max"`
	PredMean float64 `json:"pred_mean"`
	InRange  bool    `json:"in_range"`
}

// TargetRange is the acceptable prediction interval around the target.
type TargetRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether v falls inside the band.
func (t TargetRange) Contains(v float64) bool {
	return v >= t.Low && v <= t.High
}

// StrategyReport records how a single strategy fared, so that skipped or
// degraded strategies stay visible without failing the search.
type StrategyReport struct {
	Source     string `json:"source"`
	Candidates int    `json:"candidates"`
	Skipped    bool   `json:"skipped"`
	Reason     string `json:"reason,omitempty"`
}

// SearchResult is the ranked outcome of a suggestion search.
type SearchResult struct {
	Candidates  []Candidate      `json:"candidates"`
	ModelStats  *ModelStats      `json:"model_stats,omitempty"`
	TargetRange TargetRange      `json:"target_range"`
	Reports     []StrategyReport `json:"strategy_reports,omitempty"`
}
