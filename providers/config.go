// Package providers holds configuration for reasoning-oracle providers.
package providers

import "time"

// AzureOpenAIConfig configures the Azure OpenAI chat completion provider.
type AzureOpenAIConfig struct {
	APIKey     string        `json:"api_key" yaml:"api_key"`
	Endpoint   string        `json:"endpoint" yaml:"endpoint"`
	Deployment string        `json:"deployment,omitempty" yaml:"deployment,omitempty"`
	APIVersion string        `json:"api_version,omitempty" yaml:"api_version,omitempty"`
	Timeout    time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// RequestsPerSecond throttles outgoing completions. Zero disables
	// client-side rate limiting.
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty"`
	Burst             int     `json:"burst,omitempty" yaml:"burst,omitempty"`
}
