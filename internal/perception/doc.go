// Package perception turns model output into structured tool calls and
// provides the model backends the agent loop talks to.
package perception
