package broadlink

import "errors"

// Sentinel errors for Broadlink operations.
var (
	// ErrNotConnected indicates no session to the device is open.
	ErrNotConnected = errors.New("broadlink: not connected")

	// ErrCommandFailed indicates a packet could not be delivered or was
	// rejected by the device.
	ErrCommandFailed = errors.New("broadlink: command failed")
)
