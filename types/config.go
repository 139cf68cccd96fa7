package types

import (
	"xaisentinel.com/xrs/utils"
	"fmt"
	"gopkg.in/yaml.v3"
	"io/ioutil"
)

// ModelConfig describes the training setup. Values map onto the
// trainer configuration plus the synthetic dataset parameters.
type ModelConfig struct {
	Rounds          int     `yaml:"rounds" json:"rounds"`
	MaxDepth        int     `yaml:"max_depth" json:"max_depth"`
	LearningRate    float64 `yaml:"learning_rate" json:"learning_rate"`
	Lambda          float64 `yaml:"lambda" json:"lambda"`
	MinSplitGain    float64 `yaml:"min_split_gain" json:"min_split_gain"`
	MinChildWeight  float64 `yaml:"min_child_weight" json:"min_child_weight"`
	DataSize        int     `yaml:"data_size" json:"data_size"`
	Seed            int64   `yaml:"seed" json:"seed"`
	HoldoutFraction float64 `yaml:"holdout_fraction" json:"holdout_fraction"`
}

func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Rounds:          100,
		MaxDepth:        4,
		LearningRate:    0.1,
		Lambda:          1.0,
		MinSplitGain:    1e-6,
		MinChildWeight:  1.0,
		DataSize:        1000,
		Seed:            42,
		HoldoutFraction: 0.2,
	}
}

// LoadModelConfig reads a YAML model configuration. An empty path
// yields the defaults; fields absent from the file keep their default
// values.
func LoadModelConfig(filePath string) (ModelConfig, error) {
	cfg := DefaultModelConfig()
	if filePath == "" {
		return cfg, nil
	}
	buf, err := ioutil.ReadFile(filePath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read model config %s: %w", filePath, err)
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse model config %s: %w", filePath, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid model config %s: %w", filePath, err)
	}
	return cfg, nil
}

func (cfg ModelConfig) Validate() error {
	if cfg.Rounds <= 0 {
		return fmt.Errorf("rounds must be positive, got %d", cfg.Rounds)
	}
	if cfg.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, got %d", cfg.MaxDepth)
	}
	if cfg.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive, got %v", cfg.LearningRate)
	}
	if cfg.DataSize <= 0 {
		return fmt.Errorf("data_size must be positive, got %d", cfg.DataSize)
	}
	if cfg.HoldoutFraction < 0 || cfg.HoldoutFraction >= 1 {
		return fmt.Errorf("holdout_fraction must be in [0, 1), got %v", cfg.HoldoutFraction)
	}
	return nil
}

// Fingerprint identifies the exact training setup in startup logs and
// audit records.
func (cfg ModelConfig) Fingerprint() string {
	buf, err := yaml.Marshal(cfg)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%016x", utils.HashBytes(buf))
}
