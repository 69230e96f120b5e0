package gp

import (
	"encoding/json"
	"fmt"
	"os"
)

// Scaler is the standard-scaling transform exported alongside the
// model. The regression graph expects scaled inputs, so Transform must
// match the training-time scaler exactly.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LoadScaler reads a scaler sidecar file.
func LoadScaler(path string) (*Scaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler: %w", err)
	}
	var s Scaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}
	if len(s.Mean) != len(s.Scale) {
		return nil, fmt.Errorf("scaler mean/scale length mismatch: %d vs %d", len(s.Mean), len(s.Scale))
	}
	return &s, nil
}

// Transform applies the scaling to a feature vector. Dimensions beyond
// the scaler's length pass through unchanged; a zero scale is treated
// as 1 to avoid division blowups.
func (s *Scaler) Transform(x []float64) []float64 {
	out := append([]float64(nil), x...)
	if s == nil {
		return out
	}
	for i := range out {
		if i >= len(s.Mean) {
			break
		}
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (out[i] - s.Mean[i]) / scale
	}
	return out
}
