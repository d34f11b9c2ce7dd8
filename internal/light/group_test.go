package light

import (
	"context"
	"errors"
	"testing"
)

// registerGroup builds a registry with two fake member lights and a group
// over both.
func registerGroup(t *testing.T) (*Registry, *Group, *fakeLight, *fakeLight) {
	t.Helper()
	ctx := context.Background()
	r := NewRegistry()

	a := newFakeLight("a", "Lamp A")
	b := newFakeLight("b", "Lamp B")
	if _, err := r.Register(ctx, a); err != nil {
		t.Fatalf("Register(a) error = %v", err)
	}
	if _, err := r.Register(ctx, b); err != nil {
		t.Fatalf("Register(b) error = %v", err)
	}

	g := NewGroup("g1", "Living Room", r, []string{"a", "b"})
	if _, err := r.Register(ctx, g); err != nil {
		t.Fatalf("Register(group) error = %v", err)
	}
	return r, g, a, b
}

func TestGroupUniqueIDIsSupplied(t *testing.T) {
	r := NewRegistry()
	g := NewGroup("g1", "Living Room", r, nil)

	id, err := g.UniqueID(context.Background())
	if err != nil {
		t.Fatalf("UniqueID() error = %v", err)
	}
	if id != "g1" {
		t.Errorf("UniqueID() = %q, want %q", id, "g1")
	}
}

func TestGroupFanOut(t *testing.T) {
	r, _, a, b := registerGroup(t)

	if err := r.SetPower(context.Background(), "g1", PowerOff); err != nil {
		t.Fatalf("SetPower(group) error = %v", err)
	}

	// Both members received the command on their backends.
	if got := a.powerCallCount(); got != 1 {
		t.Errorf("member a backend calls = %d, want 1", got)
	}
	if got := b.powerCallCount(); got != 1 {
		t.Errorf("member b backend calls = %d, want 1", got)
	}

	// And both member caches were updated through the registry.
	for _, id := range []string{"a", "b"} {
		snap, err := r.Get(id)
		if err != nil {
			t.Fatalf("Get(%s) error = %v", id, err)
		}
		if snap.State.Power != PowerOff {
			t.Errorf("member %s power = %v, want %v", id, snap.State.Power, PowerOff)
		}
	}
}

func TestGroupPartialFailureNoRollback(t *testing.T) {
	r, _, a, b := registerGroup(t)
	b.powerErr = errors.New("bulb unreachable")

	err := r.SetPower(context.Background(), "g1", PowerOn)
	if !errors.Is(err, ErrBackendFailed) {
		t.Fatalf("SetPower(group) error = %v, want ErrBackendFailed", err)
	}

	// The member that succeeded keeps its new state.
	if got := a.powerCallCount(); got != 1 {
		t.Errorf("member a backend calls = %d, want 1", got)
	}
	snapA, _ := r.Get("a")
	if snapA.State.Power != PowerOn {
		t.Errorf("member a power = %v, want %v", snapA.State.Power, PowerOn)
	}

	// The failed member's cache was still updated (cache-then-call).
	snapB, _ := r.Get("b")
	if snapB.State.Power != PowerOn {
		t.Errorf("member b power = %v, want %v", snapB.State.Power, PowerOn)
	}
}

func TestGroupBrightnessAndColorFanOut(t *testing.T) {
	r, _, a, b := registerGroup(t)
	ctx := context.Background()

	if err := r.SetBrightness(ctx, "g1", 200); err != nil {
		t.Fatalf("SetBrightness(group) error = %v", err)
	}
	if err := r.SetColor(ctx, "g1", White(2700)); err != nil {
		t.Fatalf("SetColor(group) error = %v", err)
	}

	for _, fl := range []*fakeLight{a, b} {
		fl.mu.Lock()
		if len(fl.brightnessCalls) != 1 || fl.brightnessCalls[0] != 200 {
			t.Errorf("%s brightness calls = %v, want [200]", fl.name, fl.brightnessCalls)
		}
		if len(fl.colorCalls) != 1 || fl.colorCalls[0] != White(2700) {
			t.Errorf("%s colour calls = %v, want [White 2700]", fl.name, fl.colorCalls)
		}
		fl.mu.Unlock()
	}
}

func TestGroupEmptyIsNoOp(t *testing.T) {
	r := NewRegistry()
	g := NewGroup("g1", "Empty", r, nil)
	if _, err := r.Register(context.Background(), g); err != nil {
		t.Fatalf("Register(group) error = %v", err)
	}

	if err := r.SetPower(context.Background(), "g1", PowerOn); err != nil {
		t.Errorf("SetPower(empty group) error = %v", err)
	}
}

func TestGroupMembership(t *testing.T) {
	r, g, _, _ := registerGroup(t)
	ctx := context.Background()

	c := newFakeLight("c", "Lamp C")
	if _, err := r.Register(ctx, c); err != nil {
		t.Fatalf("Register(c) error = %v", err)
	}

	if err := g.AddMember("c"); err != nil {
		t.Fatalf("AddMember(c) error = %v", err)
	}
	// Duplicate add is a no-op.
	if err := g.AddMember("c"); err != nil {
		t.Fatalf("AddMember(c) again error = %v", err)
	}
	if got := len(g.Members()); got != 3 {
		t.Errorf("member count = %d, want 3", got)
	}

	if err := g.AddMember("ghost"); !errors.Is(err, ErrGroupMember) {
		t.Errorf("AddMember(ghost) error = %v, want ErrGroupMember", err)
	}
	if err := g.AddMember("g1"); !errors.Is(err, ErrGroupMember) {
		t.Errorf("AddMember(self) error = %v, want ErrGroupMember", err)
	}

	if err := g.RemoveMember("c"); err != nil {
		t.Fatalf("RemoveMember(c) error = %v", err)
	}
	if err := g.RemoveMember("c"); !errors.Is(err, ErrGroupMember) {
		t.Errorf("RemoveMember(c) again error = %v, want ErrGroupMember", err)
	}
	if got := len(g.Members()); got != 2 {
		t.Errorf("member count = %d, want 2", got)
	}
}

func TestGroupMissingMemberReportsNotFound(t *testing.T) {
	r, g, _, _ := registerGroup(t)

	// Force an absent member without registry validation.
	g.mu.Lock()
	g.members = append(g.members, "ghost")
	g.mu.Unlock()

	err := r.SetPower(context.Background(), "g1", PowerOn)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("SetPower(group) error = %v, want ErrNotFound in chain", err)
	}
}
