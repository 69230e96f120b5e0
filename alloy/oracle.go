package alloy

import (
	"context"
	"errors"
	"fmt"
)

// Oracle is the scalar regression function mapping a feature vector to a
// predicted property value. Implementations must be re-entrant: a single
// search may invoke Predict hundreds of times.
type Oracle interface {
	Predict(ctx context.Context, x []float64) (float64, error)
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(ctx context.Context, x []float64) (float64, error)

// Predict calls f.
func (f OracleFunc) Predict(ctx context.Context, x []float64) (float64, error) {
	return f(ctx, x)
}

// ErrNoOracle is returned when a bundle has no oracle attached.
var ErrNoOracle = errors.New("alloy: bundle has no oracle")

// Bundle pairs an already-resolved oracle with the feature schema it was
// trained against. The surrounding shell is responsible for loading and
// caching bundles; the core never performs model lookup itself.
type Bundle struct {
	Oracle Oracle
	Schema *FeatureSchema
}

// NewBundle builds a bundle, defaulting to the full training schema.
func NewBundle(oracle Oracle, schema *FeatureSchema) (*Bundle, error) {
	if oracle == nil {
		return nil, ErrNoOracle
	}
	if schema == nil {
		schema = DefaultSchema()
	}
	return &Bundle{Oracle: oracle, Schema: schema}, nil
}

// Prediction is the outcome of a direct what-if evaluation.
type Prediction struct {
	PredictedValue float64  `json:"predicted_value"`
	IsValid        bool     `json:"is_valid"`
	Violations     []string `json:"violations"`
	AlloySeries    []string `json:"alloy_series"`
}

// PredictSingle evaluates one composition outside the search loop. The
// composition and processing maps are merged (composition wins on
// conflicts), laid out in schema order with missing features defaulting
// to 0, and the result is annotated with validity and series tags.
func (b *Bundle) PredictSingle(ctx context.Context, composition, processing map[string]float64) (*Prediction, error) {
	if b.Oracle == nil {
		return nil, ErrNoOracle
	}
	inputs := make(map[string]float64, len(composition)+len(processing))
	for name, v := range processing {
		inputs[name] = v
	}
	for name, v := range composition {
		inputs[name] = v
	}
	x := b.Schema.Vector(inputs)
	predicted, err := b.Oracle.Predict(ctx, x)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	isValid, violations := Validate(x, b.Schema)
	return &Prediction{
		PredictedValue: predicted,
		IsValid:        isValid,
		Violations:     violations,
		AlloySeries:    ClassifySeries(composition),
	}, nil
}
