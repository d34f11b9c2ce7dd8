package esp

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/lumen-home/lumen-core/internal/light"
)

// nameCounter numbers strips in connection order for display names.
var nameCounter atomic.Uint64

// Light adapts one strip to light.Capability, synthesising brightness on
// top of the strip's raw RGB channel.
type Light struct {
	strip Strip
	name  string

	mu         sync.Mutex
	brightness uint8
	r, g, b    uint8
}

// NewLight wraps a connected strip. The local state starts at full
// white so the first brightness or power command behaves predictably.
func NewLight(strip Strip) *Light {
	return &Light{
		strip:      strip,
		name:       fmt.Sprintf("ESP Light %d", nameCounter.Add(1)),
		brightness: 255,
		r:          255,
		g:          255,
		b:          255,
	}
}

// Name returns the display name.
func (l *Light) Name() string { return l.name }

// UniqueID returns a stable identifier derived from the strip address.
func (l *Light) UniqueID(_ context.Context) (string, error) {
	addr, err := l.strip.Addr()
	if err != nil {
		return "", err
	}
	return "esp-" + addr, nil
}

// SetPower dispatches an on/off frame.
func (l *Light) SetPower(ctx context.Context, state light.PowerState) error {
	return l.strip.SetPower(ctx, state.IsOn())
}

// SetBrightness stores the level and rewrites the colour scaled by it.
func (l *Light) SetBrightness(ctx context.Context, level uint8) error {
	l.mu.Lock()
	l.brightness = level
	r, g, b := l.scaled()
	l.mu.Unlock()
	return l.strip.SetRGB(ctx, r, g, b)
}

// SetColor stores the colour (white temperatures go through the RGB
// approximation) and rewrites it scaled by the stored brightness.
func (l *Light) SetColor(ctx context.Context, color light.Color) error {
	r, g, b := color.R, color.G, color.B
	if color.Mode == light.ColorModeWhite {
		r, g, b = light.KelvinToRGB(color.Kelvin)
	}

	l.mu.Lock()
	l.r, l.g, l.b = r, g, b
	r, g, b = l.scaled()
	l.mu.Unlock()
	return l.strip.SetRGB(ctx, r, g, b)
}

// scaled returns the stored colour multiplied by brightness/255.
// Callers hold l.mu.
func (l *Light) scaled() (uint8, uint8, uint8) {
	ratio := float64(l.brightness) / 255
	return uint8(float64(l.r) * ratio),
		uint8(float64(l.g) * ratio),
		uint8(float64(l.b) * ratio)
}
