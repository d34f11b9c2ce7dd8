package sengled

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/lumen-home/lumen-core/internal/light"
)

// nameCounter numbers lights in discovery order for display names.
var nameCounter atomic.Uint64

// Light adapts one cloud bulb to light.Capability.
type Light struct {
	api    API
	device Device
	name   string
}

// NewLight wraps a discovered device with a counter-based display name.
func NewLight(api API, device Device) *Light {
	return &Light{
		api:    api,
		device: device,
		name:   fmt.Sprintf("Sengled Light %d", nameCounter.Add(1)),
	}
}

// Name returns the display name.
func (l *Light) Name() string { return l.name }

// UniqueID returns a stable identifier derived from the vendor device
// uuid.
func (l *Light) UniqueID(_ context.Context) (string, error) {
	if l.device.UUID == "" {
		return "", fmt.Errorf("%w: device without uuid", ErrRequestFailed)
	}
	return "sengled-" + l.device.UUID, nil
}

// SetPower dispatches an on/off command to the cloud.
func (l *Light) SetPower(ctx context.Context, state light.PowerState) error {
	return l.api.SetPower(ctx, l.device.UUID, state.IsOn())
}

// SetBrightness dispatches a raw 0-255 brightness to the cloud.
func (l *Light) SetBrightness(ctx context.Context, level uint8) error {
	return l.api.SetBrightness(ctx, l.device.UUID, level)
}

// SetColor passes both colour variants straight through; the bulbs take
// RGB triples and Kelvin temperatures natively.
func (l *Light) SetColor(ctx context.Context, color light.Color) error {
	if color.Mode == light.ColorModeWhite {
		return l.api.SetColorTemperature(ctx, l.device.UUID, color.Kelvin)
	}
	return l.api.SetColorRGB(ctx, l.device.UUID, color.R, color.G, color.B)
}

// Discover logs in and returns a capability adapter for every bulb on
// the account.
func Discover(ctx context.Context, client *Client, username, password string) ([]*Light, error) {
	if err := client.Login(ctx, username, password); err != nil {
		return nil, err
	}
	devices, err := client.Scan(ctx)
	if err != nil {
		return nil, err
	}

	lights := make([]*Light, 0, len(devices))
	for _, d := range devices {
		lights = append(lights, NewLight(client, d))
	}
	return lights, nil
}
