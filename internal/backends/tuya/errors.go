package tuya

import "errors"

// Sentinel errors for Tuya operations.
var (
	// ErrAuthFailed indicates the cloud rejected the account credentials.
	ErrAuthFailed = errors.New("tuya: auth failed")

	// ErrRequestFailed indicates a cloud call could not be completed.
	ErrRequestFailed = errors.New("tuya: request failed")
)
