package perception

import (
	"encoding/json"
	"strings"

	"microagent/internal/logging"
	"microagent/internal/types"
)

// ParseToolCalls extracts tool calls from raw assistant text using the
// lenient scan. It never fails: anything that does not decode to a
// tool_calls list yields an empty slice.
func ParseToolCalls(text string) []types.ToolCall {
	return ParseToolCallsWithMode(text, types.ScanLenient)
}

// ParseToolCallsWithMode extracts tool calls using the given scan mode.
func ParseToolCallsWithMode(text string, mode types.ScanMode) []types.ToolCall {
	if mode == types.ScanBalanced {
		for _, candidate := range findJSONCandidates(text) {
			if calls, ok := decodeToolCalls(candidate); ok {
				return calls
			}
		}
		return []types.ToolCall{}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return []types.ToolCall{}
	}
	calls, _ := decodeToolCalls(text[start : end+1])
	return calls
}

// decodeToolCalls decodes one JSON object. The bool reports whether the
// object decoded and held a tool_calls key, regardless of how many usable
// entries it had.
func decodeToolCalls(payload string) ([]types.ToolCall, bool) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &root); err != nil {
		logging.PerceptionDebug("tool call payload did not decode: %v", err)
		return []types.ToolCall{}, false
	}

	raw, ok := root["tool_calls"]
	if !ok {
		return []types.ToolCall{}, false
	}

	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		logging.PerceptionDebug("tool_calls is not a list of objects: %v", err)
		return []types.ToolCall{}, true
	}

	calls := make([]types.ToolCall, 0, len(entries))
	for i, entry := range entries {
		var name string
		if err := json.Unmarshal(entry["name"], &name); err != nil || name == "" {
			logging.PerceptionDebug("dropping tool call %d: missing or non-string name", i)
			continue
		}

		call := types.ToolCall{Name: name, Arguments: map[string]any{}}
		if rawArgs, ok := entry["arguments"]; ok && string(rawArgs) != "null" {
			var args map[string]any
			if err := json.Unmarshal(rawArgs, &args); err != nil {
				logging.PerceptionDebug("tool call %d (%s): arguments is not an object", i, name)
				call.InvalidArguments = string(rawArgs)
			} else if args != nil {
				call.Arguments = args
			}
		}

		calls = append(calls, call)
	}
	return calls, true
}

// findJSONCandidates scans the input string for top-level JSON object
// candidates. It tracks nesting depth and skips braces inside string
// literals. Iterating bytes is safe because the ASCII delimiters never occur
// inside a multi-byte UTF-8 sequence.
func findJSONCandidates(s string) []string {
	var candidates []string
	var depth int
	var start = -1
	var inString bool
	var escape bool

	for i := 0; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}

		if inString {
			if b == '\\' {
				escape = true
			} else if b == '"' {
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			// Quotes outside an object are prose, not JSON strings.
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					candidates = append(candidates, s[start:i+1])
					start = -1
				}
			}
		}
	}

	return candidates
}
