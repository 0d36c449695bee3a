// Package agent implements the control loop of the coding agent.
//
// One step sends the whole conversation to the model backend, appends the
// reply, parses tool calls from it, and runs each call in order through the
// registry (and the approval gate for mutating tools). Every tool outcome is
// appended as a user message so the model sees it on the next step. The loop
// ends when a reply carries no tool calls or the step budget is spent.
//
// Only transport failures escape as errors; everything else becomes text in
// the conversation.
package agent
