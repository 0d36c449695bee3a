// Package types provides shared type definitions used across microagent packages.
// This package exists to break import cycles between perception, session, and agent.
// Types in this package should be foundational data structures with no complex dependencies.
package types

import (
	"fmt"
	"strings"
)

// =============================================================================
// CONVERSATION TYPES
// =============================================================================

// Role tags the speaker of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Message is one turn in the conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// String renders the message for debug logs.
func (m Message) String() string {
	return fmt.Sprintf("%s: %s", m.Role, m.Content)
}

// ToolCall represents a tool invocation requested by the model.
// It only lives for the duration of one loop step.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`

	// InvalidArguments holds the raw JSON of an arguments value that was not
	// an object. Arguments is empty when it is set.
	InvalidArguments string `json:"-"`
}

// ScanMode selects how the JSON payload is located in an assistant reply.
type ScanMode string

const (
	// ScanLenient decodes everything from the first '{' to the last '}'.
	// Prose between two separate objects makes the span invalid JSON, which
	// yields no calls.
	ScanLenient ScanMode = "lenient"

	// ScanBalanced walks top-level brace-balanced objects and honors the
	// first one that decodes and carries a tool_calls key.
	ScanBalanced ScanMode = "balanced"
)

// ParseScanMode maps a config value onto a ScanMode. An empty value selects
// ScanLenient; matching ignores case and surrounding space.
func ParseScanMode(s string) (ScanMode, error) {
	switch mode := ScanMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return ScanLenient, nil
	case ScanLenient, ScanBalanced:
		return mode, nil
	default:
		return ScanLenient, fmt.Errorf("unknown scan mode %q (valid: %s, %s)", s, ScanLenient, ScanBalanced)
	}
}
