// Package gp runs the exported property-regression model through ONNX
// Runtime and exposes it as an alloy.Oracle.
package gp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Default tensor names used by common sklearn-to-ONNX exports.
const (
	defaultInputName  = "X"
	defaultOutputName = "variable"
)

// Config locates the model artifacts and runtime library.
type Config struct {
	// OrtDLL is the path to the onnxruntime shared library. Empty means
	// the platform default lookup.
	OrtDLL     string
	ModelPath  string
	ScalerPath string
	InputName  string
	OutputName string
}

// The ONNX Runtime environment is process-wide; initialize it once and
// keep it for the life of the process.
var (
	ortInitOnce sync.Once
	ortInitErr  error
)

func initRuntime(dll string) error {
	ortInitOnce.Do(func() {
		if dll != "" {
			ort.SetSharedLibraryPath(dll)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// Regressor wraps an ONNX inference session behind the oracle contract.
// Sessions are not re-entrant, so Predict serializes access; the search
// calls it synchronously anyway.
type Regressor struct {
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
	scaler  *Scaler
	cfg     Config
}

// NewRegressor initializes the runtime, loads the scaler sidecar when
// configured, and opens an inference session for the model.
func NewRegressor(cfg Config) (*Regressor, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("gp: model path is required")
	}
	if cfg.InputName == "" {
		cfg.InputName = defaultInputName
	}
	if cfg.OutputName == "" {
		cfg.OutputName = defaultOutputName
	}
	if err := initRuntime(cfg.OrtDLL); err != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", err)
	}

	var scaler *Scaler
	if cfg.ScalerPath != "" {
		s, err := LoadScaler(cfg.ScalerPath)
		if err != nil {
			return nil, err
		}
		scaler = s
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName}, nil)
	if err != nil {
		return nil, fmt.Errorf("open model session: %w", err)
	}
	return &Regressor{session: session, scaler: scaler, cfg: cfg}, nil
}

// Predict runs one forward pass for a single feature vector.
func (r *Regressor) Predict(_ context.Context, x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, errors.New("gp: empty feature vector")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return 0, errors.New("gp: regressor is closed")
	}

	scaled := r.scaler.Transform(x)
	data := make([]float32, len(scaled))
	for i, v := range scaled {
		data[i] = float32(v)
	}
	input, err := ort.NewTensor(ort.NewShape(1, int64(len(data))), data)
	if err != nil {
		return 0, fmt.Errorf("build input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := r.session.Run([]ort.Value{input}, outputs); err != nil {
		return 0, fmt.Errorf("run model: %w", err)
	}
	defer outputs[0].Destroy()

	tensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return 0, fmt.Errorf("unexpected output type %T", outputs[0])
	}
	values := tensor.GetData()
	if len(values) == 0 {
		return 0, errors.New("gp: model produced no output")
	}
	return float64(values[0]), nil
}

// Close releases the inference session. The shared runtime environment
// stays up for other sessions.
func (r *Regressor) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session != nil {
		r.session.Destroy()
		r.session = nil
	}
	return nil
}
