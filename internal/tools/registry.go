package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"microagent/internal/logging"
	"microagent/internal/types"
)

// Registry holds the fixed tool set and dispatches calls by name.
// It is safe for concurrent use, though the agent loop uses it from one goroutine.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool

	// order preserves registration order for prompt rendering.
	order []string
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Tool),
	}
}

// Register adds a tool to the registry.
// Returns an error if a tool with the same name already exists.
func (r *Registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, tool.Name)
	}

	r.tools[tool.Name] = tool
	r.order = append(r.order, tool.Name)

	logging.ToolsDebug("Registered tool: %s (approval=%v)", tool.Name, tool.RequiresApproval())
	return nil
}

// MustRegister registers a tool and panics on error.
// Use this for static tool registration at startup.
func (r *Registry) MustRegister(tool *Tool) {
	if err := r.Register(tool); err != nil {
		panic(fmt.Sprintf("failed to register tool %s: %v", tool.Name, err))
	}
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Has returns true if a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// All returns all registered tools in registration order.
func (r *Registry) All() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.tools[name])
	}
	return result
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Prepare looks up a tool and decodes the raw arguments into an Invocation.
// Returns ErrToolNotFound for unregistered names and an error wrapping
// ErrInvalidArgs when the arguments do not fit the tool's shape.
func (r *Registry) Prepare(name string, args map[string]any) (*Tool, Invocation, error) {
	tool := r.Get(name)
	if tool == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	if args == nil {
		args = map[string]any{}
	}

	if err := r.validateArgs(tool, args); err != nil {
		return tool, nil, fmt.Errorf("%w for %s: %w", ErrInvalidArgs, name, err)
	}

	inv, err := tool.Decode(args)
	if err != nil {
		return tool, nil, fmt.Errorf("%w for %s: %w", ErrInvalidArgs, name, err)
	}
	return tool, inv, nil
}

// Run executes a prepared invocation and logs its timing.
func (r *Registry) Run(ctx context.Context, tool *Tool, inv Invocation) Result {
	start := time.Now()
	logging.ToolsDebug("Executing tool: %s", tool.Name)

	result := inv.Run(ctx)

	duration := time.Since(start)
	logging.ToolsDebug("Tool %s completed in %v (status=%s)", tool.Name, duration, result.Status)
	return result
}

// PrepareCall is Prepare for a parsed tool call. A call whose arguments
// were not a JSON object is rejected with ErrInvalidArgType once the tool
// is found.
func (r *Registry) PrepareCall(call types.ToolCall) (*Tool, Invocation, error) {
	if call.InvalidArguments == "" {
		return r.Prepare(call.Name, call.Arguments)
	}
	tool := r.Get(call.Name)
	if tool == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrToolNotFound, call.Name)
	}
	return tool, nil, fmt.Errorf("%w for %s: %w: arguments must be an object, got %s",
		ErrInvalidArgs, call.Name, ErrInvalidArgType, call.InvalidArguments)
}

// validateArgs checks that all required arguments are present.
func (r *Registry) validateArgs(tool *Tool, args map[string]any) error {
	for _, required := range tool.Schema.Required {
		if v, ok := args[required]; !ok || v == nil {
			return fmt.Errorf("%w: %s", ErrMissingRequiredArg, required)
		}
	}
	return nil
}
