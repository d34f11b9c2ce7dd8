// Package sengled adapts Sengled cloud bulbs to the light.Capability
// interface. These bulbs take power, brightness and both colour variants
// natively, so the adapter is a straight passthrough.
package sengled
