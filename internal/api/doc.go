// Package api implements the HTTP REST API and WebSocket server for Lumen Core.
//
// This package provides:
//   - REST endpoints for light enumeration, commands, and group management
//   - The /fulfill endpoint bridging the voice platform's SYNC/QUERY/EXECUTE
//     intents into the light registry
//   - OAuth authorisation and token endpoints for the voice platform link
//   - WebSocket hub for real-time state change broadcasts
//   - Middleware stack (request ID, logging, recovery, body limits)
//
// # Architecture
//
// The API server sits between external clients (voice platform, dashboards,
// scripts) and the light registry. REST commands dispatch directly into the
// registry; registry state mutations flow back out through the WebSocket hub.
//
// # Security
//
// The /api/v1 surface is guarded by a single shared-secret token. A token
// mismatch returns HTTP 200 with the JSON string "bad auth" rather than an
// error status; clients check the body, not the code. The /auth and /fulfill
// endpoints sit outside the token middleware: the voice platform
// authenticates through the OAuth flow, and fulfillment carries a signed
// bearer token which is verified permissively (failures logged, request
// still served — the platform retries aggressively on 401 and the intended
// deployment model is a single trusted user).
package api
