// Package broadlink adapts Broadlink-controlled smart plugs and
// no-name bulbs to the light.Capability interface. These devices only
// switch power; brightness and colour report ErrUnsupported and the
// registry surfaces that to callers.
package broadlink
