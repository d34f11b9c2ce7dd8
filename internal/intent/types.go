package intent

import "encoding/json"

// Intent kinds understood by the translator.
const (
	IntentSync    = "action.devices.SYNC"
	IntentQuery   = "action.devices.QUERY"
	IntentExecute = "action.devices.EXECUTE"
)

// Device command names within an EXECUTE batch.
const (
	CommandOnOff      = "action.devices.commands.OnOff"
	CommandBrightness = "action.devices.commands.BrightnessAbsolute"
	CommandColor      = "action.devices.commands.ColorAbsolute"
)

// Fixed descriptor values reported for every light.
const (
	deviceTypeLight      = "action.devices.types.LIGHT"
	traitOnOff           = "action.devices.traits.OnOff"
	traitColorSetting    = "action.devices.traits.ColorSetting"
	traitBrightness      = "action.devices.traits.Brightness"
	colorModelRGB        = "rgb"
	temperatureMinKelvin = 2000
	temperatureMaxKelvin = 7500
)

// statusSuccess is the aggregate status reported for command batches and
// per-device QUERY entries.
const statusSuccess = "SUCCESS"

// Request is the fulfillment request envelope.
type Request struct {
	RequestID string  `json:"requestId"`
	Inputs    []Input `json:"inputs"`
}

// Input is one intent within a request. The payload shape depends on the
// intent, so it is decoded lazily.
type Input struct {
	Intent  string          `json:"intent"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// QueryPayload is the payload of a QUERY input.
type QueryPayload struct {
	Devices []DeviceRef `json:"devices"`
}

// ExecutePayload is the payload of an EXECUTE input.
type ExecutePayload struct {
	Commands []Command `json:"commands"`
}

// DeviceRef names a device by id.
type DeviceRef struct {
	ID string `json:"id"`
}

// Command pairs a set of target devices with a set of operations.
type Command struct {
	Devices   []DeviceRef `json:"devices"`
	Execution []Execution `json:"execution"`
}

// Execution is a single parameterised operation.
type Execution struct {
	Command string          `json:"command"`
	Params  json.RawMessage `json:"params"`
}

// OnOffParams are the parameters of an OnOff execution.
type OnOffParams struct {
	On bool `json:"on"`
}

// BrightnessParams are the parameters of a BrightnessAbsolute execution.
// Brightness is an external 0-100 percentage.
type BrightnessParams struct {
	Brightness int `json:"brightness"`
}

// ColorParams are the parameters of a ColorAbsolute execution.
type ColorParams struct {
	Color ColorValue `json:"color"`
}

// ColorValue carries either a 24-bit spectrum integer or a Kelvin
// temperature. Pointers distinguish "absent" from a legitimate zero.
type ColorValue struct {
	Name        string  `json:"name,omitempty"`
	SpectrumRGB *uint32 `json:"spectrumRGB,omitempty"`
	Temperature *uint32 `json:"temperature,omitempty"`
}

// Response is the fulfillment response envelope. The payload shape
// depends on the intent.
type Response struct {
	RequestID string `json:"requestId"`
	Payload   any    `json:"payload"`
}

// SyncPayload is the payload of a SYNC response.
type SyncPayload struct {
	AgentUserID string       `json:"agentUserId"`
	Devices     []SyncDevice `json:"devices"`
}

// SyncDevice is one device descriptor in a SYNC response.
type SyncDevice struct {
	ID              string           `json:"id"`
	Type            string           `json:"type"`
	Traits          []string         `json:"traits"`
	Name            DeviceName       `json:"name"`
	WillReportState bool             `json:"willReportState"`
	Attributes      DeviceAttributes `json:"attributes"`
}

// DeviceName wraps the display name, matching the platform's nesting.
type DeviceName struct {
	Name string `json:"name"`
}

// DeviceAttributes reports the colour capabilities of a light.
type DeviceAttributes struct {
	ColorModel            string           `json:"colorModel"`
	ColorTemperatureRange TemperatureRange `json:"colorTemperatureRange"`
}

// TemperatureRange is the supported white temperature span in Kelvin.
type TemperatureRange struct {
	TemperatureMinK uint32 `json:"temperatureMinK"`
	TemperatureMaxK uint32 `json:"temperatureMaxK"`
}

// QueryResponsePayload is the payload of a QUERY response. Devices maps
// id to state; ids unknown to the registry are omitted.
type QueryResponsePayload struct {
	AgentUserID string                      `json:"agentUserId"`
	Devices     map[string]QueryDeviceState `json:"devices"`
}

// QueryDeviceState is the reported state of one device.
type QueryDeviceState struct {
	Status     string      `json:"status"`
	Online     bool        `json:"online"`
	Brightness int         `json:"brightness"`
	On         bool        `json:"on"`
	Color      ColorReport `json:"color"`
}

// ColorReport is the external colour representation: a packed spectrum
// integer for RGB state, a Kelvin temperature for white state.
type ColorReport struct {
	SpectrumRGB  *uint32 `json:"spectrumRGB,omitempty"`
	TemperatureK *uint32 `json:"temperatureK,omitempty"`
}

// ExecuteResponsePayload is the payload of an EXECUTE response.
type ExecuteResponsePayload struct {
	Commands []CommandResult `json:"commands"`
}

// CommandResult is the aggregate outcome of one command batch.
type CommandResult struct {
	IDs    []string      `json:"ids"`
	Status string        `json:"status"`
	States CommandStates `json:"states"`
}

// CommandStates is the fixed state block attached to a command result.
type CommandStates struct {
	Online bool `json:"online"`
}
