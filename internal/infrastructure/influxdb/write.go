package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/lumen-home/lumen-core/internal/light"
)

// WriteLightState records a light's state after a mutation.
//
// This is the primary method for building state history. The write is
// non-blocking; data is batched and sent asynchronously.
//
// One point per mutation in the "light_state" measurement:
//   - tags: light_id, name, power, colour_mode (low cardinality)
//   - fields: on (0/1 for graphing), brightness, and the active colour
//     channels (r/g/b or kelvin)
//
// Example:
//
//	client.WriteLightState("tuya-abc123", "Tuya Light 1", st)
func (c *Client) WriteLightState(id, name string, st light.State) {
	if !c.IsConnected() {
		return
	}

	on := 0
	if st.Power.IsOn() {
		on = 1
	}

	fields := map[string]interface{}{
		"on":         on,
		"brightness": int(st.Brightness),
	}
	switch st.Color.Mode {
	case light.ColorModeRGB:
		fields["r"] = int(st.Color.R)
		fields["g"] = int(st.Color.G)
		fields["b"] = int(st.Color.B)
	case light.ColorModeWhite:
		fields["kelvin"] = int(st.Color.Kelvin)
	}

	point := write.NewPoint(
		"light_state",
		map[string]string{
			"light_id":    id,
			"name":        name,
			"power":       string(st.Power),
			"colour_mode": string(st.Color.Mode),
		},
		fields,
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom measurement, for data that does not fit
// WriteLightState. Tags index, so keep their cardinality low.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
