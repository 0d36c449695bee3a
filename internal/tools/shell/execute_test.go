package shell

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"microagent/internal/tools"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell required")
	}
}

func runCommand(t *testing.T, args map[string]any) tools.Result {
	t.Helper()
	inv, err := decodeRunCommand(args)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return inv.Run(context.Background())
}

func TestRunCommandTool_Definition(t *testing.T) {
	t.Parallel()

	tool := RunCommandTool()
	if tool.Name != "run_command" {
		t.Errorf("Name mismatch: got %q", tool.Name)
	}
	if !tool.RequiresApproval() {
		t.Fatal("run_command must go through the approval gate")
	}
	if tool.Approval.CancelMessage != "Command execution cancelled by user." {
		t.Errorf("unexpected cancel message %q", tool.Approval.CancelMessage)
	}
}

func TestRunCommandTool_Decode(t *testing.T) {
	t.Parallel()

	if _, err := decodeRunCommand(map[string]any{}); err == nil {
		t.Error("expected error for missing command")
	}
	if _, err := decodeRunCommand(map[string]any{"command": []any{"ls"}}); err == nil {
		t.Error("expected error for non-string command")
	}

	inv, err := decodeRunCommand(map[string]any{"command": "ls", "working_dir": "/tmp"})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := inv.(RunCommandArgs); got != (RunCommandArgs{Command: "ls", WorkingDir: "/tmp"}) {
		t.Errorf("decoded %+v", got)
	}
	if lines := inv.Describe(); lines[0] != "Executing command: ls (in /tmp)" {
		t.Errorf("Describe = %q", lines)
	}
}

func TestRunCommand_Success(t *testing.T) {
	skipOnWindows(t)
	t.Parallel()

	res := runCommand(t, map[string]any{"command": "echo hello"})
	if !res.IsSuccess() {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Text() != "Exit code: 0\nOutput:\nhello\n" {
		t.Errorf("unexpected text %q", res.Text())
	}
}

func TestRunCommand_MergesStderr(t *testing.T) {
	skipOnWindows(t)
	t.Parallel()

	res := runCommand(t, map[string]any{"command": "echo out; echo err 1>&2"})
	if res.Output != "out\nerr\n" {
		t.Errorf("stdout and stderr should share one stream, got %q", res.Output)
	}
}

func TestRunCommand_NonZeroExit(t *testing.T) {
	skipOnWindows(t)
	t.Parallel()

	res := runCommand(t, map[string]any{"command": "echo failing; exit 3"})
	if res.Status != tools.StatusError {
		t.Errorf("non-zero exit should be tagged as error, got %s", res.Status)
	}
	if !res.HasExitCode || res.ExitCode != 3 {
		t.Errorf("exit code = %d", res.ExitCode)
	}
	if !strings.HasPrefix(res.Text(), "Exit code: 3\nOutput:\nfailing") {
		t.Errorf("unexpected text %q", res.Text())
	}
}

func TestRunCommand_WorkingDir(t *testing.T) {
	skipOnWindows(t)
	t.Parallel()

	dir := t.TempDir()
	res := runCommand(t, map[string]any{"command": "pwd -P", "working_dir": dir})
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}
	if strings.TrimSpace(res.Output) != resolved {
		t.Errorf("pwd = %q, want %q", res.Output, resolved)
	}
}

func TestRunCommand_MissingWorkingDir(t *testing.T) {
	skipOnWindows(t)
	t.Parallel()

	res := runCommand(t, map[string]any{"command": "true", "working_dir": filepath.Join(t.TempDir(), "nope")})
	if res.ExitCode != 1 || res.Status != tools.StatusError {
		t.Errorf("expected start failure with exit code 1, got %+v", res)
	}
}

func TestRunCommand_ClipsLongOutput(t *testing.T) {
	skipOnWindows(t)
	t.Parallel()

	// 1500 'a' then 1500 'b', no trailing newline.
	res := runCommand(t, map[string]any{"command": "printf 'a%.0s' $(seq 1500); printf 'b%.0s' $(seq 1500)"})
	want := strings.Repeat("a", 1000) + tools.ClipMarker + strings.Repeat("b", 1000)
	if res.Output != want {
		t.Errorf("clipped output mismatch: len=%d", len(res.Output))
	}
}

func TestRunCommand_ShortOutputUnaltered(t *testing.T) {
	skipOnWindows(t)
	t.Parallel()

	res := runCommand(t, map[string]any{"command": "printf 'x%.0s' $(seq 2000)"})
	if res.Output != strings.Repeat("x", 2000) {
		t.Errorf("output at the threshold must not be clipped, len=%d", len(res.Output))
	}
}

func TestRegisterAll(t *testing.T) {
	t.Parallel()

	reg := tools.NewRegistry()
	if err := RegisterAll(reg); err != nil {
		t.Fatalf("RegisterAll failed: %v", err)
	}
	if !reg.Has("run_command") {
		t.Error("run_command not registered")
	}
}
