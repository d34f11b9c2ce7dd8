// Package tuya adapts Tuya cloud bulbs to the light.Capability interface.
//
// The vendor cloud is slow to authenticate and rate-limits discovery, so
// both the access token and the scanned device list are cached in SQLite
// and reused across restarts. Colour commands are translated to the
// hue/saturation/brightness model the cloud expects.
package tuya
