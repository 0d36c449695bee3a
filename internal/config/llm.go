package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Supported model backends.
const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3.1"
	DefaultGeminiModel = "gemini-2.5-flash"
)

// ValidProviders lists all supported LLM providers.
var ValidProviders = []string{ProviderOllama, ProviderGemini}

// LLMConfig configures the model backend.
type LLMConfig struct {
	Provider string `yaml:"provider"` // ollama, gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// GetTimeout returns the request timeout as a duration (default 120s).
func (c LLMConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// Validate checks the provider and its credentials.
func (c LLMConfig) Validate() error {
	validProvider := false
	for _, p := range ValidProviders {
		if c.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.Provider, ValidProviders)
	}
	if c.Model == "" {
		return fmt.Errorf("LLM model not configured")
	}
	if c.Provider == ProviderGemini && c.APIKey == "" {
		return fmt.Errorf("gemini provider requires an API key (set GEMINI_API_KEY)")
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("invalid LLM timeout %q: %w", c.Timeout, err)
		}
	}
	return nil
}

// normalizeOllamaHost accepts OLLAMA_HOST in the forms the ollama CLI does
// ("host:port" or a full URL).
func normalizeOllamaHost(host string) string {
	host = strings.TrimRight(host, "/")
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "http://" + host
}

// ApplyProviderDefaults swaps the other provider's defaults for the selected
// provider's when they were never changed.
func (c *LLMConfig) ApplyProviderDefaults() {
	switch c.Provider {
	case ProviderGemini:
		if c.Model == "" || c.Model == DefaultOllamaModel {
			c.Model = DefaultGeminiModel
		}
		if c.BaseURL == DefaultOllamaURL {
			c.BaseURL = ""
		}
	case ProviderOllama:
		if c.Model == "" || c.Model == DefaultGeminiModel {
			c.Model = DefaultOllamaModel
		}
		if c.BaseURL == "" {
			c.BaseURL = DefaultOllamaURL
			if host := os.Getenv("OLLAMA_HOST"); host != "" {
				c.BaseURL = normalizeOllamaHost(host)
			}
		}
	}
}
