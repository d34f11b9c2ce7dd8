package esp

import (
	"context"
	"testing"

	"github.com/lumen-home/lumen-core/internal/light"
)

// fakeStrip records frames.
type fakeStrip struct {
	addr       string
	powerCalls []bool
	rgbCalls   [][3]uint8
}

func (f *fakeStrip) SetPower(_ context.Context, on bool) error {
	f.powerCalls = append(f.powerCalls, on)
	return nil
}

func (f *fakeStrip) SetRGB(_ context.Context, r, g, b uint8) error {
	f.rgbCalls = append(f.rgbCalls, [3]uint8{r, g, b})
	return nil
}

func (f *fakeStrip) Addr() (string, error) {
	if f.addr == "" {
		return "", ErrNotConnected
	}
	return f.addr, nil
}

func lastRGB(t *testing.T, f *fakeStrip) [3]uint8 {
	t.Helper()
	if len(f.rgbCalls) == 0 {
		t.Fatal("no RGB frames written")
	}
	return f.rgbCalls[len(f.rgbCalls)-1]
}

func TestLightUniqueID(t *testing.T) {
	l := NewLight(&fakeStrip{addr: "10.0.0.7:7777"})

	id, err := l.UniqueID(context.Background())
	if err != nil {
		t.Fatalf("UniqueID() error = %v", err)
	}
	if id != "esp-10.0.0.7:7777" {
		t.Errorf("UniqueID() = %q, want esp-10.0.0.7:7777", id)
	}
}

func TestLightUniqueIDUnreachable(t *testing.T) {
	l := NewLight(&fakeStrip{})
	if _, err := l.UniqueID(context.Background()); err == nil {
		t.Error("UniqueID() expected error without address")
	}
}

func TestLightPower(t *testing.T) {
	strip := &fakeStrip{addr: "a"}
	l := NewLight(strip)

	if err := l.SetPower(context.Background(), light.PowerOn); err != nil {
		t.Fatalf("SetPower() error = %v", err)
	}
	if len(strip.powerCalls) != 1 || !strip.powerCalls[0] {
		t.Errorf("power calls = %v, want [true]", strip.powerCalls)
	}
}

func TestLightBrightnessScalesColor(t *testing.T) {
	strip := &fakeStrip{addr: "a"}
	l := NewLight(strip)
	ctx := context.Background()

	if err := l.SetColor(ctx, light.RGB(200, 100, 50)); err != nil {
		t.Fatalf("SetColor() error = %v", err)
	}
	if got := lastRGB(t, strip); got != [3]uint8{200, 100, 50} {
		t.Errorf("full brightness frame = %v, want [200 100 50]", got)
	}

	// Half brightness rewrites the stored colour scaled down.
	if err := l.SetBrightness(ctx, 128); err != nil {
		t.Fatalf("SetBrightness() error = %v", err)
	}
	if got := lastRGB(t, strip); got != [3]uint8{100, 50, 25} {
		t.Errorf("half brightness frame = %v, want [100 50 25]", got)
	}

	// A new colour is scaled by the remembered brightness.
	if err := l.SetColor(ctx, light.RGB(255, 255, 255)); err != nil {
		t.Fatalf("SetColor() error = %v", err)
	}
	if got := lastRGB(t, strip); got != [3]uint8{128, 128, 128} {
		t.Errorf("scaled colour frame = %v, want [128 128 128]", got)
	}
}

func TestLightWhiteGoesThroughKelvinApproximation(t *testing.T) {
	strip := &fakeStrip{addr: "a"}
	l := NewLight(strip)

	if err := l.SetColor(context.Background(), light.White(6600)); err != nil {
		t.Fatalf("SetColor() error = %v", err)
	}
	got := lastRGB(t, strip)
	if got[0] != 255 {
		t.Errorf("red = %d, want 255 at 6600K", got[0])
	}
	if got[1] < 240 || got[2] < 240 {
		t.Errorf("green/blue = %d/%d, want near 255 at 6600K", got[1], got[2])
	}
}
