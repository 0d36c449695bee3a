package tools

import "fmt"

// StringArg reads a string argument. A nil value counts as absent.
// Missing required arguments and non-string values are reported as errors
// wrapping ErrMissingRequiredArg or ErrInvalidArgType.
func StringArg(args map[string]any, key string, required bool) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		if required {
			return "", fmt.Errorf("%w: %s", ErrMissingRequiredArg, key)
		}
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidArgType, key, raw)
	}
	return s, nil
}
