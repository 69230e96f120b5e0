package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Enwin-A/Alloy-App/alloy"
	"github.com/Enwin-A/Alloy-App/internal/modelstore"
)

const apiVersion = "1.0.0"

// server holds the collaborators the handlers need: the bundle cache,
// a per-target historical dataset resolver, and request defaults.
type server struct {
	store    *modelstore.Store
	datasets func(target string) alloy.Dataset
	search   alloy.SearchConfig
	logger   *slog.Logger
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /health", s.handleHealthMonitor)
	mux.HandleFunc("POST /api/suggest", s.handleSuggest)
	mux.HandleFunc("POST /api/predict", s.handlePredict)
	return mux
}

func (s *server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "Alloy Composition Predictor API",
		"version": apiVersion,
		"endpoints": map[string]string{
			"health":  "/api/health",
			"suggest": "/api/suggest (POST)",
			"predict": "/api/predict (POST)",
		},
	})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *server) handleHealthMonitor(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "alloy-api",
	})
}

// suggestRequest is the JSON body for POST /api/suggest.
type suggestRequest struct {
	Target       string   `json:"target"`
	Value        *float64 `json:"value"`
	Tolerance    *float64 `json:"tolerance"`
	NSuggestions *int     `json:"n_suggestions"`
	Mode         string   `json:"mode"`
}

func (s *server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Target == "" {
		req.Target = "YS"
	}
	if req.Mode == "" {
		req.Mode = "balanced"
	}
	value := 200.0
	if req.Value != nil {
		value = *req.Value
	}
	tolerance := s.search.Tolerance
	if req.Tolerance != nil {
		tolerance = *req.Tolerance
	}
	nSuggestions := s.search.NSuggestions
	if req.NSuggestions != nil {
		nSuggestions = *req.NSuggestions
	}

	if _, ok := alloy.TargetColumn(req.Target); !ok {
		writeError(w, http.StatusBadRequest, "Target must be YS or UTS")
		return
	}
	if value <= 0 || value > 1000 {
		writeError(w, http.StatusBadRequest, "Value must be between 0 and 1000 MPa")
		return
	}

	bundle, err := s.store.Get(r.Context(), req.Target+"_"+req.Mode)
	if err != nil {
		s.logger.Error("model load failed", "target", req.Target, "err", err)
		writeError(w, http.StatusNotFound, "Model not found: "+err.Error())
		return
	}

	suggester, err := alloy.NewSuggester(bundle, s.datasets(req.Target), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	results, err := suggester.Suggest(r.Context(), alloy.SuggestRequest{
		Target:       req.Target,
		Value:        value,
		NSuggestions: nSuggestions,
		Tolerance:    tolerance,
	})
	if err != nil {
		s.logger.Error("suggest failed", "target", req.Target, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"target":       req.Target,
		"target_value": value,
		"tolerance":    tolerance,
		"results":      results,
		"timestamp":    time.Now().Format(time.RFC3339),
	})
}

// predictRequest is the JSON body for POST /api/predict.
type predictRequest struct {
	Target      string             `json:"target"`
	Composition map[string]float64 `json:"composition"`
	Processing  map[string]float64 `json:"processing"`
	Mode        string             `json:"mode"`
}

func (s *server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Target == "" {
		req.Target = "YS"
	}
	if req.Mode == "" {
		req.Mode = "balanced"
	}
	if _, ok := alloy.TargetColumn(req.Target); !ok {
		writeError(w, http.StatusBadRequest, "Target must be YS or UTS")
		return
	}

	bundle, err := s.store.Get(r.Context(), req.Target+"_"+req.Mode)
	if err != nil {
		s.logger.Error("model load failed", "target", req.Target, "err", err)
		writeError(w, http.StatusNotFound, "Model not found: "+err.Error())
		return
	}
	prediction, err := bundle.PredictSingle(r.Context(), req.Composition, req.Processing)
	if err != nil {
		s.logger.Error("predict failed", "target", req.Target, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"target":          req.Target,
		"predicted_value": prediction.PredictedValue,
		"is_valid":        prediction.IsValid,
		"violations":      prediction.Violations,
		"alloy_series":    prediction.AlloySeries,
		"inputs": map[string]any{
			"composition": req.Composition,
			"processing":  req.Processing,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
