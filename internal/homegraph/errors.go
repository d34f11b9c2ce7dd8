package homegraph

import "errors"

// Sentinel errors for homegraph operations.
var (
	// ErrRequestFailed indicates the requestSync call could not be
	// delivered or was rejected by the platform.
	ErrRequestFailed = errors.New("homegraph: request failed")
)
