package ux

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"microagent/internal/logging"
	"microagent/internal/tools"
)

const ruleWidth = 50

// Options configures console rendering.
type Options struct {
	// Markdown renders the final answer through glamour.
	Markdown bool
	// WordWrap is the glamour wrap width (default 80).
	WordWrap int
}

// Console writes the run transcript for the operator.
// Styles are applied to single-line headers only; tool output and model text
// are written verbatim.
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	styles   styles
	renderer *glamour.TermRenderer
}

// NewConsole creates a console writing to w.
func NewConsole(w io.Writer, opts Options) *Console {
	c := &Console{
		out:    w,
		styles: newStyles(lipgloss.NewRenderer(w)),
	}

	if opts.Markdown {
		wrap := opts.WordWrap
		if wrap <= 0 {
			wrap = 80
		}
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			logging.Get(logging.CategoryBoot).Warn("markdown renderer unavailable: %v", err)
		} else {
			c.renderer = renderer
		}
	}
	return c
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}

// Banner prints the startup header.
func (c *Console) Banner(provider, model, hint string) {
	rule := c.styles.rule.Render(strings.Repeat("=", ruleWidth))
	lines := []string{
		c.styles.title.Render(fmt.Sprintf("Micro Coding Agent (%s)", provider)),
		rule,
		"Using model: " + model,
	}
	if hint != "" {
		lines = append(lines, hint)
	}
	lines = append(lines, rule)
	c.println(strings.Join(lines, "\n"))
}

// Prompt writes an input prompt without a trailing newline.
func (c *Console) Prompt(question string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "\n%s\n%s", question, c.styles.prompt.Render("> "))
}

// Thinking prints the per-step progress line.
func (c *Console) Thinking(step int) {
	c.println("\n" + c.styles.thinking.Render(fmt.Sprintf("[Thinking... step %d]", step)))
}

// ToolCall prints what a tool is about to do. The first line is the header.
func (c *Console) ToolCall(lines []string) {
	if len(lines) == 0 {
		return
	}
	out := append([]string{c.styles.action.Render(lines[0])}, lines[1:]...)
	c.println("\n" + strings.Join(out, "\n"))
}

// ToolResult prints the text of a tool result.
func (c *Console) ToolResult(res tools.Result) {
	text := res.Text()
	if res.Status == tools.StatusCancelled {
		text = c.styles.warning.Render(text)
	}
	c.println(text)
}

// UnknownTool warns about a call to a tool that is not registered.
func (c *Console) UnknownTool(name string) {
	c.println(c.styles.warning.Render("Unknown tool: " + name))
}

// ToolError prints a tool failure that escaped the tool body.
func (c *Console) ToolError(msg string) {
	c.println(c.styles.failure.Render(msg))
}

// FinalAnswer prints the model's closing message.
func (c *Console) FinalAnswer(text string) {
	if c.renderer != nil {
		if rendered, err := c.renderer.Render(text); err == nil {
			c.println(strings.TrimRight(rendered, "\n"))
			return
		}
	}
	c.println("\n" + text)
}

// BudgetExhausted warns that the step budget ran out before completion.
func (c *Console) BudgetExhausted(maxSteps int) {
	c.println("\n" + c.styles.warning.Render(fmt.Sprintf("Reached maximum steps (%d). Task may be incomplete.", maxSteps)))
}

// Error prints a fatal error.
func (c *Console) Error(err error) {
	c.println(c.styles.failure.Render("Error: " + err.Error()))
}
