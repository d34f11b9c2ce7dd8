package light

// PowerState is an explicit on/off enumeration. A dedicated type avoids
// conflating "off" with colour or brightness zero values.
type PowerState string

// PowerState constants.
const (
	PowerOn  PowerState = "on"
	PowerOff PowerState = "off"
)

// PowerStateFromBool converts a wire-level boolean into a PowerState.
func PowerStateFromBool(on bool) PowerState {
	if on {
		return PowerOn
	}
	return PowerOff
}

// IsOn reports whether the state is PowerOn.
func (p PowerState) IsOn() bool {
	return p == PowerOn
}

// ColorMode discriminates the active variant of a Color.
type ColorMode string

// ColorMode constants.
const (
	ColorModeRGB   ColorMode = "rgb"
	ColorModeWhite ColorMode = "white"
)

// DefaultKelvin is the white temperature assigned to new entries.
// 6500K is the common "daylight" point.
const DefaultKelvin = 6500

// Color is a tagged union: either an RGB triple or a white colour
// temperature in Kelvin. Exactly one variant is active, selected by Mode.
type Color struct {
	Mode ColorMode `json:"mode"`

	// RGB components, valid when Mode is ColorModeRGB.
	R uint8 `json:"r,omitempty"`
	G uint8 `json:"g,omitempty"`
	B uint8 `json:"b,omitempty"`

	// Kelvin is the white temperature, valid when Mode is ColorModeWhite.
	Kelvin uint32 `json:"kelvin,omitempty"`
}

// RGB constructs an RGB colour.
func RGB(r, g, b uint8) Color {
	return Color{Mode: ColorModeRGB, R: r, G: g, B: b}
}

// White constructs a white colour with the given temperature in Kelvin.
func White(kelvin uint32) Color {
	return Color{Mode: ColorModeWhite, Kelvin: kelvin}
}

// DefaultColor returns the colour assigned to entries at creation.
func DefaultColor() Color {
	return White(DefaultKelvin)
}

// State is a point-in-time snapshot of an entry's cached state.
type State struct {
	Power      PowerState `json:"power"`
	Brightness uint8      `json:"brightness"`
	Color      Color      `json:"color"`
}

// Snapshot pairs an entry's identity with its cached state for enumeration.
type Snapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State State  `json:"state"`
}
