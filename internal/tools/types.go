// Package tools provides the closed tool set the agent loop can invoke.
//
// Every tool decodes the model's raw argument map into a typed Invocation
// before anything runs, so malformed arguments surface as an
// "invalid arguments" result instead of a failure inside the tool body.
//
// Architecture:
//
//	ToolCall → Registry.Prepare() → Invocation → (Approval Gate) → Registry.Run() → Result
package tools

import (
	"context"
)

// Property describes a single parameter property for JSON schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

// ToolSchema defines the JSON schema for tool arguments.
type ToolSchema struct {
	// Required lists parameters that must be provided.
	Required []string `json:"required"`

	// Properties describes each parameter.
	Properties map[string]Property `json:"properties"`

	// Order lists property names in the order they are shown to the model.
	Order []string `json:"-"`
}

// Invocation is a decoded, typed tool call ready to run.
type Invocation interface {
	// Describe returns the lines shown to the operator before execution.
	Describe() []string

	// Run performs the action. Failures are reported through the Result,
	// never as a panic or error return.
	Run(ctx context.Context) Result
}

// DecodeFunc validates raw model arguments and builds the typed invocation.
type DecodeFunc func(args map[string]any) (Invocation, error)

// Approval marks a tool as state-mutating. The operator must confirm every
// invocation of such a tool.
type Approval struct {
	// Question is asked before execution, e.g. "Do you want to edit this file?".
	Question string

	// CancelMessage becomes the tool result when the operator refuses.
	CancelMessage string
}

// Tool defines one capability in the registry.
type Tool struct {
	// Name is the unique identifier the model uses.
	Name string

	// Description explains what the tool does; shown in the system prompt.
	Description string

	// Schema defines the expected arguments.
	Schema ToolSchema

	// Approval is non-nil for tools that mutate state or are externally visible.
	Approval *Approval

	// Decode turns raw arguments into an Invocation.
	Decode DecodeFunc
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Decode == nil {
		return ErrToolDecodeNil
	}
	return nil
}

// RequiresApproval reports whether the tool goes through the approval gate.
func (t *Tool) RequiresApproval() bool {
	return t.Approval != nil
}
