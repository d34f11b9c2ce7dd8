// Package light provides the Light Registry for Lumen Core.
//
// The registry is the central catalogue of every addressable light in an
// installation, physical or virtual. Each entry pairs a backend Capability
// with a cached snapshot of the last commanded state (power, brightness,
// colour), so reads never require a round trip to hardware.
//
// # Key Types
//
//   - Capability: the contract every backend (vendor client or Group) satisfies
//   - Registry: identifier → entry map plus command dispatch
//   - Group: a composite Capability fanning commands out to member lights
//   - Color: tagged RGB / white-temperature union with conversion helpers
//
// # Dispatch Ordering
//
// Commands update the cached state first and call the backend second. A
// backend failure therefore leaves the cache describing the requested
// state rather than the confirmed one; callers that need a consistent
// QUERY view immediately after EXECUTE depend on this. The error is still
// returned so callers can log or surface it.
//
// # Thread Safety
//
// The Registry is safe for concurrent use. The entry map is guarded by a
// read-write mutex; each entry's cache has its own mutex, so commands to
// different lights never block one another.
package light
