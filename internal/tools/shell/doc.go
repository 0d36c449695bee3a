// Package shell provides the command execution tool of the closed tool set.
//
// Tools:
//   - run_command: Execute a shell command (requires approval)
package shell
