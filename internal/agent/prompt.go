package agent

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"microagent/internal/tools"
)

const promptPreamble = `You are a helpful coding assistant. Your goal is to help the user with programming tasks.

You have access to the following tools:`

const promptGuidelines = `For each user request:
1. Understand what the user is trying to accomplish
2. Break down complex tasks into smaller steps
3. Use your tools to gather information about the codebase when needed
4. Implement solutions by writing or modifying code
5. Explain your reasoning and approach

When modifying code, be careful to maintain the existing style and structure. Test your changes when possible.
If you're unsure about something, ask clarifying questions before proceeding.

You must run and test your changes before reporting success.

IMPORTANT: When you want to use a tool, respond with a JSON object in this exact format:
{
  "tool_calls": [
    {
      "name": "tool_name",
      "arguments": {
        "param1": "value1",
        "param2": "value2"
      }
    }
  ]
}

When you're done with the task and don't need to call any more tools, just respond with your final message without the tool_calls JSON.`

// DefaultSystemPrompt renders the built-in system prompt with the tools of
// reg listed in registration order.
func DefaultSystemPrompt(reg *tools.Registry) string {
	var sb strings.Builder
	sb.WriteString(promptPreamble)
	sb.WriteString("\n")

	for i, tool := range reg.All() {
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, tool.Name, tool.Description)
		for _, name := range argumentOrder(tool.Schema) {
			prop := tool.Schema.Properties[name]
			required := ""
			if slices.Contains(tool.Schema.Required, name) {
				required = ", required"
			}
			fmt.Fprintf(&sb, "   - %s (%s%s): %s\n", name, prop.Type, required, prop.Description)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(promptGuidelines)
	return sb.String()
}

// argumentOrder returns the declared order, then any undeclared properties
// sorted by name.
func argumentOrder(schema tools.ToolSchema) []string {
	order := make([]string, 0, len(schema.Properties))
	for _, name := range schema.Order {
		if _, ok := schema.Properties[name]; ok {
			order = append(order, name)
		}
	}

	var rest []string
	for name := range schema.Properties {
		if !slices.Contains(order, name) {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}
