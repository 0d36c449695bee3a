package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"microagent/internal/approval"
	"microagent/internal/tools"
	"microagent/internal/types"
	"microagent/internal/ux"
)

// scriptedClient replays canned replies and records every request.
type scriptedClient struct {
	mu      sync.Mutex
	replies []string
	// repeat is returned once replies run out.
	repeat   string
	err      error
	requests [][]types.Message
}

func (c *scriptedClient) Chat(_ context.Context, messages []types.Message) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests = append(c.requests, messages)
	if c.err != nil {
		return "", c.err
	}
	if len(c.replies) == 0 {
		return c.repeat, nil
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

func (c *scriptedClient) Model() string { return "scripted" }

func (c *scriptedClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// spyInvocation counts executions instead of touching the system.
type spyInvocation struct {
	spy *spyTool
	arg string
}

func (s spyInvocation) Describe() []string { return []string{"Spying on: " + s.arg} }

func (s spyInvocation) Run(context.Context) tools.Result {
	s.spy.mu.Lock()
	defer s.spy.mu.Unlock()
	s.spy.runs = append(s.spy.runs, s.arg)
	if s.spy.panicWith != nil {
		panic(s.spy.panicWith)
	}
	return tools.OK("spied " + s.arg)
}

type spyTool struct {
	mu        sync.Mutex
	runs      []string
	panicWith any
}

func (s *spyTool) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}

func (s *spyTool) tool(name string, mutating bool) *tools.Tool {
	t := &tools.Tool{
		Name:        name,
		Description: "Test double",
		Schema: tools.ToolSchema{
			Required:   []string{"arg"},
			Properties: map[string]tools.Property{"arg": {Type: "string", Description: "anything"}},
		},
		Decode: func(args map[string]any) (tools.Invocation, error) {
			arg, err := tools.StringArg(args, "arg", true)
			if err != nil {
				return nil, err
			}
			return spyInvocation{spy: s, arg: arg}, nil
		},
	}
	if mutating {
		t.Approval = &tools.Approval{
			Question:      "Do you want to spy?",
			CancelMessage: name + " cancelled by user.",
		}
	}
	return t
}

// countingGate answers with a fixed decision and counts prompts.
type countingGate struct {
	mu       sync.Mutex
	approve  bool
	err      error
	requests []approval.Request
}

func (g *countingGate) Approve(_ context.Context, req approval.Request) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	return g.approve, g.err
}

type toolCallJSON struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// callsReply renders the JSON envelope a model would reply with.
func callsReply(t *testing.T, calls ...toolCallJSON) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{"tool_calls": calls})
	require.NoError(t, err)
	return "I'll use a tool.\n" + string(data)
}

func call(name string, args map[string]any) toolCallJSON {
	return toolCallJSON{Name: name, Arguments: args}
}

func newTestAgent(client types.ChatClient, reg *tools.Registry, gate approval.Gate) (*Agent, *bytes.Buffer) {
	var out bytes.Buffer
	return New(client, reg, gate, ux.NewConsole(&out, ux.Options{})), &out
}

// assertAlternation checks that no two assistant messages are adjacent.
func assertAlternation(t *testing.T, messages []types.Message) {
	t.Helper()
	for i := 1; i < len(messages); i++ {
		if messages[i].Role == types.RoleAssistant {
			require.Equal(t, types.RoleUser, messages[i-1].Role, "message %d follows %s", i, messages[i-1].Role)
		}
	}
}
