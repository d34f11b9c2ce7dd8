package esp

import "errors"

// Sentinel errors for ESP strip operations.
var (
	// ErrNotConnected indicates no socket to the strip is open.
	ErrNotConnected = errors.New("esp: not connected")

	// ErrWriteFailed indicates a frame could not be delivered.
	ErrWriteFailed = errors.New("esp: write failed")
)
