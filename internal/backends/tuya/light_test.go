package tuya

import (
	"context"
	"strings"
	"testing"

	"github.com/lumen-home/lumen-core/internal/light"
)

// fakeAPI records control calls.
type fakeAPI struct {
	powerCalls      []bool
	brightnessCalls []uint8

	hue float64
	sat float64
	val uint8
}

func (f *fakeAPI) SetPower(_ context.Context, _ string, on bool) error {
	f.powerCalls = append(f.powerCalls, on)
	return nil
}

func (f *fakeAPI) SetBrightness(_ context.Context, _ string, level uint8) error {
	f.brightnessCalls = append(f.brightnessCalls, level)
	return nil
}

func (f *fakeAPI) SetColor(_ context.Context, _ string, hue, sat float64, val uint8) error {
	f.hue, f.sat, f.val = hue, sat, val
	return nil
}

func TestLightUniqueID(t *testing.T) {
	l := NewLight(&fakeAPI{}, Device{ID: "dev-1", Name: "Bulb"})

	id, err := l.UniqueID(context.Background())
	if err != nil {
		t.Fatalf("UniqueID() error = %v", err)
	}
	if id != "tuya-dev-1" {
		t.Errorf("UniqueID() = %q, want tuya-dev-1", id)
	}
}

func TestLightUniqueIDMissing(t *testing.T) {
	l := NewLight(&fakeAPI{}, Device{})
	if _, err := l.UniqueID(context.Background()); err == nil {
		t.Error("UniqueID() expected error for device without id")
	}
}

func TestLightCounterNames(t *testing.T) {
	a := NewLight(&fakeAPI{}, Device{ID: "a"})
	b := NewLight(&fakeAPI{}, Device{ID: "b"})

	if !strings.HasPrefix(a.Name(), "Tuya Light ") {
		t.Errorf("name = %q, want Tuya Light prefix", a.Name())
	}
	if a.Name() == b.Name() {
		t.Errorf("names collide: %q", a.Name())
	}
}

func TestLightPowerAndBrightness(t *testing.T) {
	api := &fakeAPI{}
	l := NewLight(api, Device{ID: "dev-1"})
	ctx := context.Background()

	if err := l.SetPower(ctx, light.PowerOn); err != nil {
		t.Fatalf("SetPower() error = %v", err)
	}
	if err := l.SetPower(ctx, light.PowerOff); err != nil {
		t.Fatalf("SetPower() error = %v", err)
	}
	if len(api.powerCalls) != 2 || !api.powerCalls[0] || api.powerCalls[1] {
		t.Errorf("power calls = %v, want [true false]", api.powerCalls)
	}

	if err := l.SetBrightness(ctx, 200); err != nil {
		t.Fatalf("SetBrightness() error = %v", err)
	}
	if len(api.brightnessCalls) != 1 || api.brightnessCalls[0] != 200 {
		t.Errorf("brightness calls = %v, want [200]", api.brightnessCalls)
	}
}

func TestLightColorConvertsToHSB(t *testing.T) {
	api := &fakeAPI{}
	l := NewLight(api, Device{ID: "dev-1"})

	// Pure green: hue 120, full saturation, full value.
	if err := l.SetColor(context.Background(), light.RGB(0, 255, 0)); err != nil {
		t.Fatalf("SetColor() error = %v", err)
	}
	if api.hue != 120 {
		t.Errorf("hue = %v, want 120", api.hue)
	}
	if api.sat != 1 {
		t.Errorf("saturation = %v, want 1", api.sat)
	}
	if api.val != 255 {
		t.Errorf("value = %d, want 255", api.val)
	}
}

func TestLightWhiteGoesThroughKelvinApproximation(t *testing.T) {
	api := &fakeAPI{}
	l := NewLight(api, Device{ID: "dev-1"})

	// Warm white: red-dominant, so low saturation but non-zero, hue in the
	// warm band.
	if err := l.SetColor(context.Background(), light.White(2700)); err != nil {
		t.Fatalf("SetColor() error = %v", err)
	}
	if api.val != 255 {
		t.Errorf("value = %d, want 255 (red saturates below 6600K)", api.val)
	}
	if api.sat <= 0 || api.sat >= 1 {
		t.Errorf("saturation = %v, want within (0,1)", api.sat)
	}
}
