// Package config provides unified configuration loading: defaults, then
// a YAML file, then environment-variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the complete semalign configuration.
type Config struct {
	Oracle       OracleConfig       `yaml:"oracle" env:"ORACLE"`
	Search       SearchConfig       `yaml:"search" env:"SEARCH"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator" env:"ORCHESTRATOR"`
	Align        AlignConfig        `yaml:"align" env:"ALIGN"`
	Redis        RedisConfig        `yaml:"redis" env:"REDIS"`
	Export       ExportConfig       `yaml:"export" env:"EXPORT"`
	Log          LogConfig          `yaml:"log" env:"LOG"`
	Telemetry    TelemetryConfig    `yaml:"telemetry" env:"TELEMETRY"`
}

// OracleConfig configures the Azure OpenAI reasoning oracle.
type OracleConfig struct {
	APIKey            string        `yaml:"api_key" env:"API_KEY"`
	Endpoint          string        `yaml:"endpoint" env:"ENDPOINT"`
	Deployment        string        `yaml:"deployment" env:"DEPLOYMENT"`
	APIVersion        string        `yaml:"api_version" env:"API_VERSION"`
	Timeout           time.Duration `yaml:"timeout" env:"TIMEOUT"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	Burst             int           `yaml:"burst" env:"BURST"`
}

// SearchConfig configures the Azure AI Search reference index.
type SearchConfig struct {
	Endpoint   string `yaml:"endpoint" env:"ENDPOINT"`
	APIKey     string `yaml:"api_key" env:"API_KEY"`
	IndexName  string `yaml:"index_name" env:"INDEX_NAME"`
	APIVersion string `yaml:"api_version" env:"API_VERSION"`
}

// OrchestratorConfig configures the supervisor loop.
type OrchestratorConfig struct {
	StepBudget       int     `yaml:"step_budget" env:"STEP_BUDGET"`
	Model            string  `yaml:"model" env:"MODEL"`
	Temperature      float64 `yaml:"temperature" env:"TEMPERATURE"`
	MaxHistoryTokens int     `yaml:"max_history_tokens" env:"MAX_HISTORY_TOKENS"`
	Language         string  `yaml:"language" env:"LANGUAGE"`
}

// AlignConfig configures the alignment pipeline.
type AlignConfig struct {
	TopK           int    `yaml:"top_k" env:"TOP_K"`
	Concurrency    int    `yaml:"concurrency" env:"CONCURRENCY"`
	TaxonomyFilter string `yaml:"taxonomy_filter" env:"TAXONOMY_FILTER"`
}

// RedisConfig configures the optional retrieval cache.
type RedisConfig struct {
	Enabled      bool   `yaml:"enabled" env:"ENABLED"`
	Addr         string `yaml:"addr" env:"ADDR"`
	Password     string `yaml:"password" env:"PASSWORD"`
	DB           int    `yaml:"db" env:"DB"`
	PoolSize     int    `yaml:"pool_size" env:"POOL_SIZE"`
	MinIdleConns int    `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
}

// ExportConfig configures the alignment record store.
type ExportConfig struct {
	// Path of the SQLite database file (":memory:" for ephemeral).
	Path string `yaml:"path" env:"PATH"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level        string `yaml:"level" env:"LEVEL"`
	Format       string `yaml:"format" env:"FORMAT"` // json, console
	EnableCaller bool   `yaml:"enable_caller" env:"ENABLE_CALLER"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	ServiceName  string  `yaml:"service_name" env:"SERVICE_NAME"`
	SampleRate   float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Oracle: OracleConfig{
			APIVersion:        "2024-06-01",
			Deployment:        "gpt-4o",
			Timeout:           60 * time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Search: SearchConfig{
			APIVersion: "2024-07-01",
		},
		Orchestrator: OrchestratorConfig{
			StepBudget:       100,
			Model:            "gpt-4o",
			Temperature:      0,
			MaxHistoryTokens: 8000,
			Language:         "en",
		},
		Align: AlignConfig{
			TopK:        5,
			Concurrency: 1,
		},
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			PoolSize:     10,
			MinIdleConns: 2,
		},
		Export: ExportConfig{
			Path: "semalign.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: "localhost:4317",
			ServiceName:  "semalign",
			SampleRate:   1.0,
		},
	}
}

// Validate checks consistency constraints.
func (c *Config) Validate() error {
	var errs []string

	if c.Orchestrator.StepBudget <= 0 {
		errs = append(errs, "orchestrator.step_budget must be positive")
	}
	if c.Orchestrator.Temperature < 0 || c.Orchestrator.Temperature > 2 {
		errs = append(errs, "orchestrator.temperature must be in [0, 2]")
	}
	if c.Align.TopK <= 0 {
		errs = append(errs, "align.top_k must be positive")
	}
	if c.Align.Concurrency <= 0 {
		errs = append(errs, "align.concurrency must be positive")
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		errs = append(errs, "telemetry.sample_rate must be in [0, 1]")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, "log.format must be json or console")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}
