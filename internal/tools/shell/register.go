package shell

import (
	"microagent/internal/tools"
)

// RegisterAll registers all shell tools with the given registry.
func RegisterAll(registry *tools.Registry) error {
	return registry.Register(RunCommandTool())
}
