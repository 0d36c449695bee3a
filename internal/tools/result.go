package tools

import "fmt"

// Status tags the outcome of a tool execution.
type Status int

const (
	StatusOK Status = iota
	StatusError
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the outcome of one tool execution. Only its Text re-enters the
// conversation.
type Result struct {
	Status Status
	Output string

	// ExitCode is meaningful only when HasExitCode is set (run_command).
	ExitCode    int
	HasExitCode bool
}

// OK builds a successful result.
func OK(output string) Result {
	return Result{Status: StatusOK, Output: output}
}

// Errorf builds an error result.
func Errorf(format string, args ...any) Result {
	return Result{Status: StatusError, Output: fmt.Sprintf(format, args...)}
}

// Cancelled builds the result used when the operator refuses an action.
func Cancelled(message string) Result {
	return Result{Status: StatusCancelled, Output: message}
}

// CommandResult builds a result carrying a process exit code.
// A non-zero exit code is tagged as an error.
func CommandResult(output string, exitCode int) Result {
	status := StatusOK
	if exitCode != 0 {
		status = StatusError
	}
	return Result{Status: status, Output: output, ExitCode: exitCode, HasExitCode: true}
}

// InvalidArgs builds the result for arguments that failed validation.
func InvalidArgs(err error) Result {
	return Errorf("Error: %v", err)
}

// IsSuccess returns true if the tool executed without error.
func (r Result) IsSuccess() bool {
	return r.Status == StatusOK
}

// Text renders the result as the model sees it.
func (r Result) Text() string {
	if r.HasExitCode {
		return fmt.Sprintf("Exit code: %d\nOutput:\n%s", r.ExitCode, r.Output)
	}
	return r.Output
}
