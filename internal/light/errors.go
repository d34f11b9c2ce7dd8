package light

import "errors"

// Domain errors for the light package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, light.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when an identifier is not registered.
	ErrNotFound = errors.New("light: not found")

	// ErrBackendFailed is returned when the underlying capability call
	// fails. The backend's own error is wrapped alongside it.
	ErrBackendFailed = errors.New("light: backend call failed")

	// ErrUnsupported is returned by backends for operations their
	// hardware cannot honour (e.g. brightness on an on/off-only light).
	ErrUnsupported = errors.New("light: operation not supported")

	// ErrInvalidInput is returned when a malformed external payload or
	// parameter reaches a registry operation.
	ErrInvalidInput = errors.New("light: invalid input")

	// ErrGroupMember is returned when a group membership change names an
	// unusable member (absent from the registry, or the group itself).
	ErrGroupMember = errors.New("light: invalid group member")
)
