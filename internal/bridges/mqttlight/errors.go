package mqttlight

import "errors"

// Sentinel errors for bridge operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidCommand is returned when a command payload cannot be
	// decoded or carries no applicable fields.
	ErrInvalidCommand = errors.New("mqttlight: invalid command")

	// ErrNotStarted is returned when stopping a bridge that never started.
	ErrNotStarted = errors.New("mqttlight: bridge not started")
)
