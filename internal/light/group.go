package light

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Group is a composite Capability: a virtual light that fans each command
// out to a fixed list of member identifiers resolved through the
// Registry. A Group is registered as an ordinary entry, so external
// protocols address it exactly like a physical light.
//
// The identifier and display name are immutable after construction; the
// member list may be mutated through AddMember and RemoveMember. Members
// are held as identifiers only — the registry keeps entry ownership, so a
// member disappearing needs no group bookkeeping.
type Group struct {
	id       string
	name     string
	registry *Registry

	mu      sync.RWMutex
	members []string
}

// NewGroup creates a group over the given registry. The identifier is
// supplied rather than discovered because a group is virtual; UniqueID
// returns it verbatim.
func NewGroup(id, name string, registry *Registry, members []string) *Group {
	g := &Group{
		id:       id,
		name:     name,
		registry: registry,
	}
	g.members = append(g.members, members...)
	return g
}

// Name returns the group's display name.
func (g *Group) Name() string {
	return g.name
}

// ID returns the group's identifier.
func (g *Group) ID() string {
	return g.id
}

// UniqueID returns the registration-time identifier. Never fails.
func (g *Group) UniqueID(_ context.Context) (string, error) {
	return g.id, nil
}

// Members returns a copy of the member identifier list.
func (g *Group) Members() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.members))
	copy(out, g.members)
	return out
}

// AddMember appends a light to the group. The member must be registered
// and must not be the group itself. Adding an existing member is a no-op.
func (g *Group) AddMember(id string) error {
	if id == g.id {
		return fmt.Errorf("%w: group cannot contain itself", ErrGroupMember)
	}
	if !g.registry.Has(id) {
		return fmt.Errorf("%w: %s is not registered", ErrGroupMember, id)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, m := range g.members {
		if m == id {
			return nil
		}
	}
	g.members = append(g.members, id)
	return nil
}

// RemoveMember removes a light from the group.
func (g *Group) RemoveMember(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, m := range g.members {
		if m == id {
			g.members = append(g.members[:i], g.members[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s is not a member", ErrGroupMember, id)
}

// SetPower fans the command out to every member concurrently. The result
// is nil only if every member call succeeded; on partial failure the
// members that succeeded keep their new state (no rollback) and the
// failures are aggregated into a single error.
func (g *Group) SetPower(ctx context.Context, state PowerState) error {
	return g.fanOut(ctx, func(ctx context.Context, memberID string) error {
		return g.registry.SetPower(ctx, memberID, state)
	})
}

// SetBrightness fans the command out to every member. Same aggregation
// semantics as SetPower.
func (g *Group) SetBrightness(ctx context.Context, level uint8) error {
	return g.fanOut(ctx, func(ctx context.Context, memberID string) error {
		return g.registry.SetBrightness(ctx, memberID, level)
	})
}

// SetColor fans the command out to every member. Same aggregation
// semantics as SetPower.
func (g *Group) SetColor(ctx context.Context, color Color) error {
	return g.fanOut(ctx, func(ctx context.Context, memberID string) error {
		return g.registry.SetColor(ctx, memberID, color)
	})
}

// fanOut runs op against every member in parallel and joins the errors.
// Each member's cache update is independent; a sibling failure never
// rolls another member back.
func (g *Group) fanOut(ctx context.Context, op func(ctx context.Context, memberID string) error) error {
	members := g.Members()
	if len(members) == 0 {
		return nil
	}

	errs := make([]error, len(members))
	var wg sync.WaitGroup
	for i, memberID := range members {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = op(ctx, memberID)
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}
