package sengled

import "errors"

// Sentinel errors for Sengled operations.
var (
	// ErrAuthFailed indicates the cloud rejected the account credentials.
	ErrAuthFailed = errors.New("sengled: auth failed")

	// ErrRequestFailed indicates a cloud call could not be completed.
	ErrRequestFailed = errors.New("sengled: request failed")
)
