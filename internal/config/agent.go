package config

import (
	"fmt"

	"microagent/internal/types"
)

// DefaultMaxSteps bounds model round-trips per task.
const DefaultMaxSteps = 30

// AgentConfig configures the agent loop.
type AgentConfig struct {
	// MaxSteps is the step budget.
	MaxSteps int `yaml:"max_steps"`

	// SystemPrompt replaces the built-in system prompt when set.
	SystemPrompt string `yaml:"system_prompt"`

	// ToolCallScan selects how tool calls are located in replies.
	ToolCallScan string `yaml:"tool_call_scan"`
}

// Validate checks loop limits.
func (c AgentConfig) Validate() error {
	if c.MaxSteps <= 0 {
		return fmt.Errorf("agent.max_steps must be positive, got %d", c.MaxSteps)
	}
	if _, err := types.ParseScanMode(c.ToolCallScan); err != nil {
		return fmt.Errorf("invalid agent.tool_call_scan: %w", err)
	}
	return nil
}

// ScanMode returns the configured tool call scan mode, lenient when unset
// or invalid.
func (c AgentConfig) ScanMode() types.ScanMode {
	mode, _ := types.ParseScanMode(c.ToolCallScan)
	return mode
}
