package broadlink

import (
	"context"
	"errors"
	"testing"

	"github.com/lumen-home/lumen-core/internal/light"
)

// fakeSwitcher records power packets.
type fakeSwitcher struct {
	mac        string
	powerCalls []bool
}

func (f *fakeSwitcher) SetPower(_ context.Context, on bool) error {
	f.powerCalls = append(f.powerCalls, on)
	return nil
}

func (f *fakeSwitcher) MAC() (string, error) {
	if f.mac == "" {
		return "", ErrNotConnected
	}
	return f.mac, nil
}

func TestLightUniqueID(t *testing.T) {
	l := NewLight(&fakeSwitcher{mac: "aa:bb:cc"})

	id, err := l.UniqueID(context.Background())
	if err != nil {
		t.Fatalf("UniqueID() error = %v", err)
	}
	if id != "broadlink-aa:bb:cc" {
		t.Errorf("UniqueID() = %q, want broadlink-aa:bb:cc", id)
	}
}

func TestLightPower(t *testing.T) {
	sw := &fakeSwitcher{mac: "aa:bb:cc"}
	l := NewLight(sw)

	if err := l.SetPower(context.Background(), light.PowerOff); err != nil {
		t.Fatalf("SetPower() error = %v", err)
	}
	if len(sw.powerCalls) != 1 || sw.powerCalls[0] {
		t.Errorf("power calls = %v, want [false]", sw.powerCalls)
	}
}

func TestLightUnsupportedOperations(t *testing.T) {
	l := NewLight(&fakeSwitcher{mac: "aa:bb:cc"})
	ctx := context.Background()

	if err := l.SetBrightness(ctx, 100); !errors.Is(err, light.ErrUnsupported) {
		t.Errorf("SetBrightness() error = %v, want ErrUnsupported", err)
	}
	if err := l.SetColor(ctx, light.RGB(1, 2, 3)); !errors.Is(err, light.ErrUnsupported) {
		t.Errorf("SetColor() error = %v, want ErrUnsupported", err)
	}
}

// The registry wraps unsupported errors with backend failure; both must
// remain visible to callers.
func TestUnsupportedSurvivesRegistryDispatch(t *testing.T) {
	ctx := context.Background()
	r := light.NewRegistry()
	if _, err := r.Register(ctx, NewLight(&fakeSwitcher{mac: "aa:bb:cc"})); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	var id string
	for _, snap := range r.Enumerate() {
		id = snap.ID
	}

	err := r.SetBrightness(ctx, id, 100)
	if !errors.Is(err, light.ErrUnsupported) {
		t.Errorf("error = %v, want ErrUnsupported in chain", err)
	}
	if !errors.Is(err, light.ErrBackendFailed) {
		t.Errorf("error = %v, want ErrBackendFailed in chain", err)
	}
}
