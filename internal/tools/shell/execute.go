package shell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"

	"microagent/internal/logging"
	"microagent/internal/tools"
)

// RunCommandTool returns a tool for executing shell commands.
func RunCommandTool() *tools.Tool {
	return &tools.Tool{
		Name:        "run_command",
		Description: "Execute shell commands",
		Schema: tools.ToolSchema{
			Required: []string{"command"},
			Properties: map[string]tools.Property{
				"command": {
					Type:        "string",
					Description: "The command line to execute",
				},
				"working_dir": {
					Type:        "string",
					Description: "Working directory for the command (default: current directory)",
				},
			},
			Order: []string{"command", "working_dir"},
		},
		Approval: &tools.Approval{
			Question:      "Do you want to execute this command?",
			CancelMessage: "Command execution cancelled by user.",
		},
		Decode: decodeRunCommand,
	}
}

// RunCommandArgs are the typed arguments of run_command.
type RunCommandArgs struct {
	Command    string
	WorkingDir string
}

func decodeRunCommand(args map[string]any) (tools.Invocation, error) {
	command, err := tools.StringArg(args, "command", true)
	if err != nil {
		return nil, err
	}
	workingDir, err := tools.StringArg(args, "working_dir", false)
	if err != nil {
		return nil, err
	}
	return RunCommandArgs{Command: command, WorkingDir: workingDir}, nil
}

// Describe shows the command line.
func (a RunCommandArgs) Describe() []string {
	line := "Executing command: " + a.Command
	if a.WorkingDir != "" {
		line += " (in " + a.WorkingDir + ")"
	}
	return []string{line}
}

// Run executes the command through the host shell with stdout and stderr
// merged into one stream. The child always runs to completion; no timeout is
// applied and ctx does not cancel it.
func (a RunCommandArgs) Run(ctx context.Context) tools.Result {
	logging.TactileDebug("run_command: cmd=%s, dir=%s", a.Command, a.WorkingDir)

	cmd := shellCommand(a.Command)
	if a.WorkingDir != "" {
		cmd.Dir = a.WorkingDir
	}

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			logging.Tactile("run_command could not start: %s (%v)", a.Command, err)
			return tools.CommandResult(err.Error(), 1)
		}
		exitCode = exitErr.ExitCode()
	}

	logging.Tactile("run_command completed: %s (exit=%d, %d bytes output)", a.Command, exitCode, output.Len())
	return tools.CommandResult(tools.Clip(output.String()), exitCode)
}

// shellCommand wraps a command line in the host shell.
func shellCommand(command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.Command("cmd", "/C", command)
	}
	return exec.Command("sh", "-c", command)
}
