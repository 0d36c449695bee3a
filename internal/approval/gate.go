// Package approval asks the operator before a mutating tool runs.
//
// Gates carry no memory: every request is decided on its own.
package approval

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"microagent/internal/logging"
)

// Request describes one pending tool invocation.
type Request struct {
	// Tool is the registry name of the tool.
	Tool string
	// Question is shown to the operator, without the (y/n) suffix.
	Question string
}

// Gate decides whether a mutating tool may run.
type Gate interface {
	Approve(ctx context.Context, req Request) (bool, error)
}

// GateFunc adapts a function to the Gate interface.
type GateFunc func(ctx context.Context, req Request) (bool, error)

// Approve calls f.
func (f GateFunc) Approve(ctx context.Context, req Request) (bool, error) {
	return f(ctx, req)
}

// ConsoleGate prompts on a writer and reads one line per request.
type ConsoleGate struct {
	mu     sync.Mutex
	reader *bufio.Reader
	writer io.Writer
}

// NewConsoleGate creates a gate reading answers from r and prompting on w.
func NewConsoleGate(r io.Reader, w io.Writer) *ConsoleGate {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &ConsoleGate{reader: br, writer: w}
}

// Approve writes "<question> (y/n): " and approves only on a line that is
// exactly "y" or "Y". Any other answer, including end of input, refuses.
// Read errors other than EOF are returned alongside a refusal.
func (g *ConsoleGate) Approve(ctx context.Context, req Request) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	fmt.Fprintf(g.writer, "%s (y/n): ", req.Question)

	line, err := g.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		logging.Approval("approval read failed for %s: %v", req.Tool, err)
		return false, fmt.Errorf("failed to read approval: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		// Keep the transcript on separate lines when stdin closes.
		fmt.Fprintln(g.writer)
	}

	answer := strings.TrimRight(line, "\r\n")
	approved := strings.EqualFold(answer, "y")
	logging.Approval("approval for %s: answer=%q approved=%v", req.Tool, answer, approved)
	return approved, nil
}
