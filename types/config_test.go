package types

import (
	"github.com/stretchr/testify/require"
	"io/ioutil"
	"path"
	"testing"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	filePath := path.Join(t.TempDir(), "model.yaml")
	require.NoError(t, ioutil.WriteFile(filePath, []byte(contents), 0644))
	return filePath
}

func TestLoadModelConfig(t *testing.T) {
	t.Run("Empty path yields defaults", func(t *testing.T) {
		cfg, err := LoadModelConfig("")
		require.NoError(t, err)
		require.Equal(t, DefaultModelConfig(), cfg)
	})
	t.Run("File overrides a subset of fields", func(t *testing.T) {
		filePath := writeConfigFile(t, "rounds: 25\nlearning_rate: 0.3\n")
		cfg, err := LoadModelConfig(filePath)
		require.NoError(t, err)
		require.Equal(t, 25, cfg.Rounds)
		require.Equal(t, 0.3, cfg.LearningRate)
		require.Equal(t, DefaultModelConfig().MaxDepth, cfg.MaxDepth)
		require.Equal(t, DefaultModelConfig().Seed, cfg.Seed)
	})
	t.Run("Invalid yaml", func(t *testing.T) {
		filePath := writeConfigFile(t, "rounds: [broken")
		_, err := LoadModelConfig(filePath)
		require.Error(t, err)
	})
	t.Run("Invalid values", func(t *testing.T) {
		filePath := writeConfigFile(t, "rounds: -5\n")
		_, err := LoadModelConfig(filePath)
		require.Error(t, err)
	})
	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadModelConfig(path.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}

func TestModelConfigValidate(t *testing.T) {
	base := DefaultModelConfig()
	for name, corrupt := range map[string]func(*ModelConfig){
		"zero rounds":        func(cfg *ModelConfig) { cfg.Rounds = 0 },
		"zero depth":         func(cfg *ModelConfig) { cfg.MaxDepth = 0 },
		"zero learning rate": func(cfg *ModelConfig) { cfg.LearningRate = 0 },
		"zero data size":     func(cfg *ModelConfig) { cfg.DataSize = 0 },
		"holdout too large":  func(cfg *ModelConfig) { cfg.HoldoutFraction = 1 },
		"holdout negative":   func(cfg *ModelConfig) { cfg.HoldoutFraction = -0.1 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := base
			corrupt(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
	require.NoError(t, base.Validate())
}

func TestModelConfigFingerprint(t *testing.T) {
	cfg := DefaultModelConfig()
	require.Equal(t, cfg.Fingerprint(), DefaultModelConfig().Fingerprint())
	require.Len(t, cfg.Fingerprint(), 16)

	changed := cfg
	changed.Rounds = 50
	require.NotEqual(t, cfg.Fingerprint(), changed.Fingerprint())
}
