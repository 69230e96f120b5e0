package alloy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfigFile = "config.json"

// ModelConfig locates the exported regression model and its runtime.
type ModelConfig struct {
	OrtDLL     string `json:"ortDll"`
	ModelPath  string `json:"modelPath"`
	ModelURL   string `json:"modelUrl"`
	ScalerPath string `json:"scalerPath"`
	InputName  string `json:"inputName"`
	OutputName string `json:"outputName"`
}

// DataConfig lists candidate historical dataset locations in priority
// order. Paths may contain a {target} placeholder.
type DataConfig struct {
	Paths []string `json:"paths"`
}

// SearchConfig carries the default search parameters applied when a
// request leaves them unset.
type SearchConfig struct {
	NSuggestions int     `json:"nSuggestions"`
	Tolerance    float64 `json:"tolerance"`
}

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	Model  ModelConfig  `json:"model"`
	Data   DataConfig   `json:"data"`
	Search SearchConfig `json:"search"`
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Model.ModelPath == "" {
		c.Model.ModelPath = "./models/gp_regressor.onnx"
	}
	if c.Model.ScalerPath == "" {
		c.Model.ScalerPath = "./models/scaler.json"
	}
	if len(c.Data.Paths) == 0 {
		c.Data.Paths = []string{
			"./data/{target}_mixup.csv",
			"./data/{target}_mixup.csv.gz",
		}
	}
	if c.Search.NSuggestions <= 0 {
		c.Search.NSuggestions = 10
	}
	if c.Search.Tolerance <= 0 {
		c.Search.Tolerance = 0.1
	}
}

// LoadConfig loads configuration from the given path or the default
// config.json. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// SaveConfig persists configuration to disk atomically.
func SaveConfig(path string, cfg Config) error {
	if path == "" {
		path = defaultConfigFile
	}
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	cfg.ApplyDefaults()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
