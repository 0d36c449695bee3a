package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"microagent/internal/approval"
	"microagent/internal/logging"
	"microagent/internal/perception"
	"microagent/internal/session"
	"microagent/internal/tools"
	"microagent/internal/types"
)

// ErrTransport wraps every model backend failure. It is fatal to a run.
var ErrTransport = errors.New("model backend request failed")

// Outcome is how a run ended.
type Outcome int

const (
	// OutcomeDone means the model replied without tool calls.
	OutcomeDone Outcome = iota
	// OutcomeBudgetExhausted means the step budget ran out first.
	OutcomeBudgetExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeBudgetExhausted:
		return "budget_exhausted"
	default:
		return "unknown"
	}
}

// RunResult summarizes a finished run.
type RunResult struct {
	Outcome Outcome
	// Steps is the number of model calls made by the session so far.
	Steps int
	// FinalAnswer is the closing assistant text; empty when the budget ran out.
	FinalAnswer string
}

// Presenter receives every operator-visible decision of the loop.
// *ux.Console implements it.
type Presenter interface {
	Thinking(step int)
	ToolCall(lines []string)
	ToolResult(res tools.Result)
	UnknownTool(name string)
	ToolError(msg string)
	FinalAnswer(text string)
	BudgetExhausted(maxSteps int)
}

// Agent runs the model/tool loop against one session at a time.
type Agent struct {
	client    types.ChatClient
	registry  *tools.Registry
	gate      approval.Gate
	presenter Presenter
	scanMode  types.ScanMode
}

// refuseAll is used when no gate is configured: mutating tools never run.
var refuseAll = approval.GateFunc(func(context.Context, approval.Request) (bool, error) {
	return false, nil
})

// New creates an agent. A nil gate refuses every mutating tool.
func New(client types.ChatClient, registry *tools.Registry, gate approval.Gate, presenter Presenter) *Agent {
	if gate == nil {
		gate = refuseAll
	}
	return &Agent{
		client:    client,
		registry:  registry,
		gate:      gate,
		presenter: presenter,
		scanMode:  types.ScanLenient,
	}
}

// WithScanMode selects how tool calls are located in replies.
func (a *Agent) WithScanMode(mode types.ScanMode) *Agent {
	a.scanMode = mode
	return a
}

// IsGoalAchieved reports whether the session is complete: the model has
// spoken at least once, and its latest message carries no tool calls.
func (a *Agent) IsGoalAchieved(sess *session.Session) bool {
	if sess.Len() <= 2 {
		return false
	}
	last := sess.Last()
	if last.Role != types.RoleAssistant {
		return false
	}
	return len(perception.ParseToolCallsWithMode(last.Content, a.scanMode)) == 0
}

// Run appends input as the user's request and loops until the model stops
// calling tools or the session's step budget is spent. The returned error is
// non-nil only for transport failures (wrapping ErrTransport), cancellation,
// or a broken session invariant.
func (a *Agent) Run(ctx context.Context, sess *session.Session, input string) (*RunResult, error) {
	audit := logging.AuditWithSession(sess.ID())
	audit.Log(logging.AuditEvent{
		EventType: logging.AuditSessionStart,
		Target:    a.client.Model(),
		Success:   true,
		Message:   "run started",
	})

	if err := sess.AppendUser(input); err != nil {
		return nil, fmt.Errorf("failed to record request: %w", err)
	}
	logging.Agent("Run started: session=%s, budget=%d, scan=%s", sess.ID(), sess.MaxSteps(), a.scanMode)

	for !a.IsGoalAchieved(sess) && !sess.BudgetExhausted() {
		step, err := sess.BeginStep()
		if err != nil {
			return nil, fmt.Errorf("failed to begin step: %w", err)
		}
		a.presenter.Thinking(step)

		reply, err := a.chat(ctx, sess, audit)
		if err != nil {
			a.endRun(audit, false, err.Error())
			return nil, err
		}
		if err := sess.AppendAssistant(reply); err != nil {
			return nil, fmt.Errorf("failed to record reply: %w", err)
		}

		calls := perception.ParseToolCallsWithMode(reply, a.scanMode)
		logging.AgentDebug("Step %d: %d tool call(s) parsed", step, len(calls))
		if len(calls) == 0 {
			a.presenter.FinalAnswer(reply)
			logging.Agent("Run finished after %d step(s)", step)
			a.endRun(audit, true, "")
			return &RunResult{Outcome: OutcomeDone, Steps: sess.Steps(), FinalAnswer: reply}, nil
		}

		if err := a.executeBatch(ctx, sess, calls, audit); err != nil {
			a.endRun(audit, false, err.Error())
			return nil, err
		}
	}

	logging.AgentWarn("Step budget exhausted after %d step(s)", sess.Steps())
	a.presenter.BudgetExhausted(sess.MaxSteps())
	a.endRun(audit, false, "step budget exhausted")
	return &RunResult{Outcome: OutcomeBudgetExhausted, Steps: sess.Steps()}, nil
}

func (a *Agent) endRun(audit *logging.AuditLogger, success bool, errMsg string) {
	audit.Log(logging.AuditEvent{
		EventType: logging.AuditSessionEnd,
		Success:   success,
		Error:     errMsg,
		Message:   "run finished",
	})
}

// chat sends the full conversation to the backend.
func (a *Agent) chat(ctx context.Context, sess *session.Session, audit *logging.AuditLogger) (string, error) {
	messages := sess.Messages()
	audit.Log(logging.AuditEvent{
		EventType: logging.AuditLLMRequest,
		Target:    a.client.Model(),
		Success:   true,
		Fields:    map[string]interface{}{"messages": len(messages)},
	})

	start := time.Now()
	reply, err := a.client.Chat(ctx, messages)
	durationMs := time.Since(start).Milliseconds()
	if err != nil {
		logging.APIError("Chat with %s failed after %dms: %v", a.client.Model(), durationMs, err)
		audit.Log(logging.AuditEvent{
			EventType:  logging.AuditLLMError,
			Target:     a.client.Model(),
			DurationMs: durationMs,
			Error:      err.Error(),
		})
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}

	audit.Log(logging.AuditEvent{
		EventType:  logging.AuditLLMResponse,
		Target:     a.client.Model(),
		Success:    true,
		DurationMs: durationMs,
		Fields:     map[string]interface{}{"chars": len(reply)},
	})
	return reply, nil
}

// executeBatch runs the parsed calls in order. When none of them names a
// registered tool, a notice is appended so the next model call still follows
// a user message.
func (a *Agent) executeBatch(ctx context.Context, sess *session.Session, calls []types.ToolCall, audit *logging.AuditLogger) error {
	var unknown []string
	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			return err
		}
		known, err := a.executeCall(ctx, sess, call, audit)
		if err != nil {
			return err
		}
		if !known {
			unknown = append(unknown, call.Name)
		}
	}

	if len(unknown) == len(calls) {
		notice := fmt.Sprintf("Unknown tool(s): %s. Available tools: %s.",
			strings.Join(unknown, ", "), strings.Join(a.registry.Names(), ", "))
		if err := sess.AppendUser(notice); err != nil {
			return fmt.Errorf("failed to record notice: %w", err)
		}
	}
	return nil
}

// executeCall handles one call. It reports false for unregistered tools,
// which leave no trace in the conversation. A panic anywhere in the call is
// converted into an error message for the model.
func (a *Agent) executeCall(ctx context.Context, sess *session.Session, call types.ToolCall, audit *logging.AuditLogger) (known bool, err error) {
	tool, inv, prepErr := a.registry.PrepareCall(call)
	if errors.Is(prepErr, tools.ErrToolNotFound) {
		logging.AgentWarn("Unknown tool requested: %s", call.Name)
		audit.ToolEvent(logging.AuditToolUnknown, call.Name, false, 0, prepErr.Error())
		a.presenter.UnknownTool(call.Name)
		return false, nil
	}

	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("Error executing tool %s: %v", call.Name, r)
			logging.Get(logging.CategoryAgent).Error("PANIC RECOVERED in tool %s: %v", call.Name, r)
			audit.ToolEvent(logging.AuditToolError, call.Name, false, 0, msg)
			a.presenter.ToolError(msg)
			known, err = true, sess.AppendUser(msg)
		}
	}()

	var result tools.Result
	if prepErr != nil {
		logging.AgentWarn("Rejected call to %s: %v", call.Name, prepErr)
		result = tools.InvalidArgs(prepErr)
	} else {
		a.presenter.ToolCall(inv.Describe())
		result, err = a.gateAndRun(ctx, tool, inv, audit)
		if err != nil {
			return true, err
		}
	}
	a.presenter.ToolResult(result)

	if err := sess.AppendUser(FormatToolResult(call.Name, result)); err != nil {
		return true, fmt.Errorf("failed to record result of %s: %w", call.Name, err)
	}
	return true, nil
}

// gateAndRun asks the gate for mutating tools and runs the invocation only
// on approval.
func (a *Agent) gateAndRun(ctx context.Context, tool *tools.Tool, inv tools.Invocation, audit *logging.AuditLogger) (tools.Result, error) {
	if tool.RequiresApproval() {
		approved, err := a.gate.Approve(ctx, approval.Request{Tool: tool.Name, Question: tool.Approval.Question})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return tools.Result{}, ctxErr
			}
			logging.AgentWarn("Approval for %s failed, treating as refusal: %v", tool.Name, err)
			approved = false
		}
		audit.ApprovalEvent(tool.Name, approved)
		if !approved {
			logging.Agent("Operator refused %s", tool.Name)
			return tools.Cancelled(tool.Approval.CancelMessage), nil
		}
	}

	audit.ToolEvent(logging.AuditToolInvoke, tool.Name, true, 0, "")
	start := time.Now()
	result := a.registry.Run(ctx, tool, inv)

	errMsg := ""
	if !result.IsSuccess() {
		errMsg = firstLine(result.Output)
	}
	audit.ToolEvent(logging.AuditToolComplete, tool.Name, result.IsSuccess(), time.Since(start).Milliseconds(), errMsg)
	return result, nil
}

// FormatToolResult renders a result as the user message the model sees.
func FormatToolResult(name string, result tools.Result) string {
	return fmt.Sprintf("Tool '%s' result:\n%s", name, result.Text())
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
