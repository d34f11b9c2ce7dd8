package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the Lumen MQTT surface.
//
// Light topics use the flat scheme: lumen/light/{id}/{state|set}
const (
	// TopicPrefix is the base for all Lumen topics.
	TopicPrefix = "lumen"

	// TopicPrefixLight is the base for per-light topics.
	TopicPrefixLight = "lumen/light"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "lumen/system"
)

// Topics provides builders for Lumen MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.LightState("tuya-abc123")
//	// Returns: "lumen/light/tuya-abc123/state"
type Topics struct{}

// LightState returns the topic where a light's cached state is published
// after every mutation. Retained, so late subscribers see current state.
//
// Example: lumen/light/tuya-abc123/state
func (Topics) LightState(id string) string {
	return fmt.Sprintf("%s/%s/state", TopicPrefixLight, id)
}

// LightCommand returns the topic the bridge listens on for inbound
// commands to one light.
//
// Example: lumen/light/tuya-abc123/set
func (Topics) LightCommand(id string) string {
	return fmt.Sprintf("%s/%s/set", TopicPrefixLight, id)
}

// AllLightCommands returns a pattern matching every light's command topic.
//
// Pattern: lumen/light/+/set
func (Topics) AllLightCommands() string {
	return fmt.Sprintf("%s/+/set", TopicPrefixLight)
}

// AllLightStates returns a pattern matching every light's state topic.
//
// Pattern: lumen/light/+/state
func (Topics) AllLightStates() string {
	return fmt.Sprintf("%s/+/state", TopicPrefixLight)
}

// SystemStatus returns the system status topic carrying online/offline
// payloads and the LWT.
//
// Example: lumen/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllTopics returns a pattern matching all Lumen topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: lumen/#
func (Topics) AllTopics() string {
	return "lumen/#"
}

// LightIDFromCommandTopic extracts the light id from a command topic.
// Returns "" when the topic is not a light command topic.
func (Topics) LightIDFromCommandTopic(topic string) string {
	rest, ok := strings.CutPrefix(topic, TopicPrefixLight+"/")
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, "/set")
	if !ok || id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}
