package mqttlight

import (
	"time"

	"github.com/lumen-home/lumen-core/internal/light"
)

// StateMessage is published, retained, to a light's state topic after
// every cache mutation and once per light at bridge startup.
// Topic: lumen/light/{id}/state
type StateMessage struct {
	// ID is the registry identifier (e.g., "tuya-abc123").
	ID string `json:"id"`

	// Name is the human-readable light name.
	Name string `json:"name"`

	// Power is the cached power state ("on" or "off").
	Power light.PowerState `json:"power"`

	// Brightness is the cached brightness (0-255).
	Brightness uint8 `json:"brightness"`

	// Color is the cached colour (RGB triple or white temperature).
	Color light.Color `json:"color"`

	// Timestamp is when the state was published (UTC).
	Timestamp time.Time `json:"timestamp"`
}

// CommandMessage is received on a light's command topic. Any combination
// of fields may be present; they are applied in declaration order.
// Topic: lumen/light/{id}/set
type CommandMessage struct {
	// Power sets the power state ("on" or "off").
	Power *light.PowerState `json:"power,omitempty"`

	// Brightness sets the brightness (0-255).
	Brightness *uint8 `json:"brightness,omitempty"`

	// Color sets the colour. Mode selects the active variant.
	Color *light.Color `json:"color,omitempty"`
}

// isEmpty reports whether the command carries no fields at all.
func (m CommandMessage) isEmpty() bool {
	return m.Power == nil && m.Brightness == nil && m.Color == nil
}

// stateMessage renders a snapshot into the wire form.
func stateMessage(id, name string, st light.State) StateMessage {
	return StateMessage{
		ID:         id,
		Name:       name,
		Power:      st.Power,
		Brightness: st.Brightness,
		Color:      st.Color,
		Timestamp:  time.Now().UTC(),
	}
}
