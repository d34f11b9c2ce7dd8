// Package intent translates the voice platform's Smart Home fulfillment
// contract (SYNC / QUERY / EXECUTE) into Light Registry operations.
//
// The translator is stateless: every request is decoded, dispatched
// against the registry, and rendered back into the platform's exact JSON
// field names. SYNC renders the registry contents as a device list,
// QUERY renders cached state for a requested id set, and EXECUTE parses
// command batches and dispatches them.
//
// EXECUTE reports a blanket SUCCESS per command batch regardless of
// individual backend failures; per-device outcomes are only logged. This
// mirrors the platform-facing behaviour the service has always had —
// see DESIGN.md for the discussion.
package intent
