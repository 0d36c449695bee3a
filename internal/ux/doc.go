// Package ux renders the operator-facing console transcript of an agent run.
//
// Everything here is line based: progress lines, the description of each
// tool call before it runs, tool results, warnings and the final answer.
// Logs go to internal/logging, never to the console.
package ux
