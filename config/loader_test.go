package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Orchestrator.StepBudget)
	assert.Equal(t, "gpt-4o", cfg.Orchestrator.Model)
	assert.Equal(t, 5, cfg.Align.TopK)
	assert.Equal(t, "2024-06-01", cfg.Oracle.APIVersion)
	assert.Equal(t, 60*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, "semalign.db", cfg.Export.Path)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoader_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlBody := `
orchestrator:
  step_budget: 20
  model: gpt-4o-mini
align:
  top_k: 3
  taxonomy_filter: transport
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Orchestrator.StepBudget)
	assert.Equal(t, "gpt-4o-mini", cfg.Orchestrator.Model)
	assert.Equal(t, 3, cfg.Align.TopK)
	assert.Equal(t, "transport", cfg.Align.TaxonomyFilter)
	assert.Equal(t, "console", cfg.Log.Format)
	// untouched sections keep their defaults
	assert.Equal(t, "2024-07-01", cfg.Search.APIVersion)
}

func TestLoader_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("orchestrator:\n  step_budget: 20\n"), 0o600))

	t.Setenv("SEMALIGN_ORCHESTRATOR_STEP_BUDGET", "7")
	t.Setenv("SEMALIGN_ORACLE_TIMEOUT", "30s")
	t.Setenv("SEMALIGN_REDIS_ENABLED", "true")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Orchestrator.StepBudget)
	assert.Equal(t, 30*time.Second, cfg.Oracle.Timeout)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Orchestrator.StepBudget)
}

func TestLoader_InvalidConfigRejected(t *testing.T) {
	t.Setenv("SEMALIGN_ALIGN_TOP_K", "0")

	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "align.top_k")
}

func TestLoader_CustomValidator(t *testing.T) {
	_, err := NewLoader().WithValidator(func(c *Config) error {
		if c.Oracle.APIKey == "" {
			return assert.AnError
		}
		return nil
	}).Load()
	require.Error(t, err)
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Orchestrator.StepBudget = 0
	cfg.Align.Concurrency = -1
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step_budget")
	assert.Contains(t, err.Error(), "concurrency")
	assert.Contains(t, err.Error(), "log.format")
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = NewLogger(LogConfig{Level: "shouty", Format: "json"})
	assert.Error(t, err)
}
