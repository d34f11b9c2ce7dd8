package light

import "context"

// Capability is the contract every device backend must satisfy to be
// admitted to the registry. Vendor clients and composite groups implement
// the same five methods.
//
// Name must not block. UniqueID may block on the network and is called
// exactly once, at registration time; the returned identifier must be
// stable across process restarts so the external platforms keep
// addressing the same light.
//
// The three command methods may fail with a backend-specific error.
// Backends for hardware that cannot honour an operation should return an
// error wrapping ErrUnsupported rather than silently ignoring the call.
// Retry policy belongs to the backend; the registry never retries.
type Capability interface {
	Name() string
	UniqueID(ctx context.Context) (string, error)
	SetPower(ctx context.Context, state PowerState) error
	SetBrightness(ctx context.Context, level uint8) error
	SetColor(ctx context.Context, color Color) error
}
