package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"microagent/internal/types"
)

// Config holds all microagent configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Model backend
	LLM LLMConfig `yaml:"llm"`

	// Agent loop
	Agent AgentConfig `yaml:"agent"`

	// Console presentation
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// UIConfig configures operator-facing console output.
type UIConfig struct {
	// Markdown renders the final answer with glamour.
	Markdown bool `yaml:"markdown"`
	// WordWrap is the glamour wrap width.
	WordWrap int `yaml:"word_wrap"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "microagent",
		Version: "0.1.0",

		LLM: LLMConfig{
			Provider: ProviderOllama,
			Model:    DefaultOllamaModel,
			BaseURL:  DefaultOllamaURL,
			Timeout:  "120s",
		},

		Agent: AgentConfig{
			MaxSteps:     DefaultMaxSteps,
			ToolCallScan: string(types.ScanLenient),
		},

		UI: UIConfig{
			Markdown: false,
			WordWrap: 100,
		},

		Logging: LoggingConfig{
			Level:     "info",
			DebugMode: false,
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults; env overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
			// defaults
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.LLM.ApplyProviderDefaults()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" && c.LLM.Provider == ProviderOllama {
		c.LLM.BaseURL = normalizeOllamaHost(host)
	}
	if model := os.Getenv("MICROAGENT_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if provider := os.Getenv("MICROAGENT_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}
	if steps := os.Getenv("MICROAGENT_MAX_STEPS"); steps != "" {
		if n, err := strconv.Atoi(steps); err == nil {
			c.Agent.MaxSteps = n
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	return c.Agent.Validate()
}
