package alloy

import "context"

// historical is strategy A: look up dataset rows whose recorded target
// value already lies in the band and re-predict them with the oracle.
// An unavailable or unreadable dataset is not an error; the strategy
// just contributes nothing and says so in its report.
func (s *Suggester) historical(ctx context.Context, req SuggestRequest, band TargetRange) ([]Candidate, StrategyReport) {
	if s.data == nil {
		return nil, skippedReport(SourceHistorical, "no historical dataset configured")
	}
	col, ok := TargetColumn(req.Target)
	if !ok {
		return nil, skippedReport(SourceHistorical, "no dataset column for target %q", req.Target)
	}
	rows, err := s.data.Rows(col)
	if err != nil {
		return nil, skippedReport(SourceHistorical, "read dataset: %v", err)
	}

	var out []Candidate
	for _, row := range rows {
		if len(out) >= historicalLimit {
			break
		}
		if !band.Contains(row.Target) {
			continue
		}
		x := s.bundle.Schema.Vector(row.Values)
		predicted, err := s.bundle.Oracle.Predict(ctx, x)
		if err != nil {
			continue
		}
		actual := row.Target
		out = append(out, s.newCandidate(x, predicted, req, SourceHistorical, &actual))
	}
	return out, StrategyReport{Source: SourceHistorical, Candidates: len(out)}
}
