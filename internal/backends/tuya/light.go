package tuya

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

// NewLight wraps a discovered device. The display name is counter-based
// ("Tuya Light 1", "Tuya Light 2", ...) matching the installer's habit of
// renaming lights at the voice-platform layer, not here.
func NewLight(api API, device Device) *Light {
	return &Light{
		api:    api,
		device: device,
		name:   fmt.Sprintf("Tuya Light %d", nameCounter.Add(1)),
	}
}

// Name returns the display name.
func (l *Light) Name() string { return l.name }

// UniqueID returns a stable identifier derived from the cloud device id.
func (l *Light) UniqueID(_ context.Context) (string, error) {
	if l.device.ID == "" {
		return "", fmt.Errorf("%w: device without id", ErrRequestFailed)
	}
	return "tuya-" + l.device.ID, nil
}

// SetPower dispatches an on/off command to the cloud.
func (l *Light) SetPower(ctx context.Context, state light.PowerState) error {
	return l.api.SetPower(ctx, l.device.ID, state.IsOn())
}

// SetBrightness dispatches a raw 0-255 brightness to the cloud.
func (l *Light) SetBrightness(ctx context.Context, level uint8) error {
	return l.api.SetBrightness(ctx, l.device.ID, level)
}

// SetColor converts the colour to the cloud's HSB model and dispatches
// it. White temperatures pass through the RGB approximation first; these
// bulbs have no native white channel.
func (l *Light) SetColor(ctx context.Context, color light.Color) error {
	r, g, b := color.R, color.G, color.B
	if color.Mode == light.ColorModeWhite {
		r, g, b = light.KelvinToRGB(color.Kelvin)
	}
	hue, sat, val := light.RGBToHSB(r, g, b)
	return l.api.SetColor(ctx, l.device.ID, hue, sat, val)
}

// Discover returns a capability adapter for every bulb on the account,
// reusing the cached session and device list when present.
//
// Call order: cached token (else Login + cache), cached device list (else
// Scan + cache), wrap each device.
func Discover(ctx context.Context, client *Client, store *Store, username, password string) ([]*Light, error) {
	token, err := store.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	if token != "" {
		client.SetAccessToken(token)
	} else {
		if err := client.Login(ctx, username, password); err != nil {
			return nil, err
		}
		if err := store.SaveAccessToken(ctx, client.AccessToken()); err != nil {
			return nil, err
		}
	}

	devices, err := store.Devices(ctx)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		devices, err = client.Scan(ctx)
		if err != nil {
			return nil, err
		}
		if err := store.SaveDevices(ctx, devices); err != nil {
			return nil, err
		}
	}

	lights := make([]*Light, 0, len(devices))
	for _, d := range devices {
		lights = append(lights, NewLight(client, d))
	}
	return lights, nil
}
