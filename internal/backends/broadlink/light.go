package broadlink

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/lumen-home/lumen-core/internal/light"
)

// nameCounter numbers devices in connection order for display names.
var nameCounter atomic.Uint64

// Light adapts one power-only device to light.Capability.
type Light struct {
	switcher Switcher
	name     string
}

// NewLight wraps a connected device with a counter-based display name.
func NewLight(switcher Switcher) *Light {
	return &Light{
		switcher: switcher,
		name:     fmt.Sprintf("Aliexpress Light %d", nameCounter.Add(1)),
	}
}

// Name returns the display name.
func (l *Light) Name() string { return l.name }

// UniqueID returns a stable identifier derived from the device MAC.
func (l *Light) UniqueID(_ context.Context) (string, error) {
	mac, err := l.switcher.MAC()
	if err != nil {
		return "", err
	}
	return "broadlink-" + mac, nil
}

// SetPower dispatches an on/off packet.
func (l *Light) SetPower(ctx context.Context, state light.PowerState) error {
	return l.switcher.SetPower(ctx, state.IsOn())
}

// SetBrightness is not supported by these devices.
func (l *Light) SetBrightness(_ context.Context, _ uint8) error {
	return fmt.Errorf("%w: %s has no brightness channel", light.ErrUnsupported, l.name)
}

// SetColor is not supported by these devices.
func (l *Light) SetColor(_ context.Context, _ light.Color) error {
	return fmt.Errorf("%w: %s has no colour channel", light.ErrUnsupported, l.name)
}
