package intent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lumen-home/lumen-core/internal/light"
)

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Translator renders Light Registry contents and dispatches commands in
// the voice platform's SYNC/QUERY/EXECUTE contract.
//
// Thread Safety: the translator holds no per-request state; a single
// instance serves concurrent requests.
type Translator struct {
	registry    *light.Registry
	agentUserID string
	logger      Logger
}

// New creates a translator over the given registry. agentUserID is the
// fixed user identifier the platform associates with this installation.
func New(registry *light.Registry, agentUserID string) *Translator {
	return &Translator{
		registry:    registry,
		agentUserID: agentUserID,
		logger:      noopLogger{},
	}
}

// SetLogger sets the logger for the translator.
func (t *Translator) SetLogger(logger Logger) {
	t.logger = logger
}

// Handle processes a fulfillment request and produces the response for
// its first recognised input. A request without a recognised intent
// fails with light.ErrInvalidInput.
func (t *Translator) Handle(ctx context.Context, req Request) (Response, error) {
	for _, input := range req.Inputs {
		switch input.Intent {
		case IntentSync:
			return Response{RequestID: req.RequestID, Payload: t.sync()}, nil
		case IntentQuery:
			payload, err := t.query(input.Payload)
			if err != nil {
				return Response{}, err
			}
			return Response{RequestID: req.RequestID, Payload: payload}, nil
		case IntentExecute:
			payload, err := t.execute(ctx, input.Payload)
			if err != nil {
				return Response{}, err
			}
			return Response{RequestID: req.RequestID, Payload: payload}, nil
		}
	}
	return Response{}, fmt.Errorf("%w: no recognised intent", light.ErrInvalidInput)
}

// sync renders every registered light as a device descriptor. No side
// effects.
func (t *Translator) sync() SyncPayload {
	snaps := t.registry.Enumerate()
	devices := make([]SyncDevice, 0, len(snaps))
	for _, snap := range snaps {
		devices = append(devices, SyncDevice{
			ID:     snap.ID,
			Type:   deviceTypeLight,
			Traits: []string{traitOnOff, traitColorSetting, traitBrightness},
			Name:   DeviceName{Name: snap.Name},
			// State is pulled, never pushed.
			WillReportState: false,
			Attributes: DeviceAttributes{
				ColorModel: colorModelRGB,
				ColorTemperatureRange: TemperatureRange{
					TemperatureMinK: temperatureMinKelvin,
					TemperatureMaxK: temperatureMaxKelvin,
				},
			},
		})
	}
	return SyncPayload{AgentUserID: t.agentUserID, Devices: devices}
}

// query reports cached state for the requested id set. Unknown ids are
// silently omitted; liveness is not probed, so online is always true.
func (t *Translator) query(raw json.RawMessage) (QueryResponsePayload, error) {
	var payload QueryPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return QueryResponsePayload{}, fmt.Errorf("%w: query payload: %w", light.ErrInvalidInput, err)
	}

	devices := make(map[string]QueryDeviceState, len(payload.Devices))
	for _, ref := range payload.Devices {
		snap, err := t.registry.Get(ref.ID)
		if err != nil {
			t.logger.Debug("query for unknown id", "id", ref.ID)
			continue
		}
		devices[ref.ID] = QueryDeviceState{
			Status:     statusSuccess,
			Online:     true,
			Brightness: light.BrightnessToPercent(snap.State.Brightness),
			On:         snap.State.Power.IsOn(),
			Color:      reportColor(snap.State.Color),
		}
	}
	return QueryResponsePayload{AgentUserID: t.agentUserID, Devices: devices}, nil
}

// execute dispatches every (device, operation) pair in the batch. Each
// pair is independent: a failure is logged and does not stop the rest,
// and the batch still reports SUCCESS for all named ids.
func (t *Translator) execute(ctx context.Context, raw json.RawMessage) (ExecuteResponsePayload, error) {
	var payload ExecutePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ExecuteResponsePayload{}, fmt.Errorf("%w: execute payload: %w", light.ErrInvalidInput, err)
	}

	results := make([]CommandResult, 0, len(payload.Commands))
	for _, cmd := range payload.Commands {
		ids := make([]string, 0, len(cmd.Devices))
		for _, ref := range cmd.Devices {
			ids = append(ids, ref.ID)
			for _, exec := range cmd.Execution {
				if err := t.dispatch(ctx, ref.ID, exec); err != nil {
					t.logger.Warn("execute dispatch failed",
						"id", ref.ID,
						"command", exec.Command,
						"error", err,
					)
				}
			}
		}
		results = append(results, CommandResult{
			IDs:    ids,
			Status: statusSuccess,
			States: CommandStates{Online: true},
		})
	}
	return ExecuteResponsePayload{Commands: results}, nil
}

// dispatch converts one execution's parameters to internal units and
// invokes the corresponding registry operation.
func (t *Translator) dispatch(ctx context.Context, id string, exec Execution) error {
	switch exec.Command {
	case CommandOnOff:
		var params OnOffParams
		if err := json.Unmarshal(exec.Params, &params); err != nil {
			return fmt.Errorf("%w: OnOff params: %w", light.ErrInvalidInput, err)
		}
		return t.registry.SetPower(ctx, id, light.PowerStateFromBool(params.On))

	case CommandBrightness:
		var params BrightnessParams
		if err := json.Unmarshal(exec.Params, &params); err != nil {
			return fmt.Errorf("%w: brightness params: %w", light.ErrInvalidInput, err)
		}
		return t.registry.SetBrightness(ctx, id, light.PercentToBrightness(params.Brightness))

	case CommandColor:
		var params ColorParams
		if err := json.Unmarshal(exec.Params, &params); err != nil {
			return fmt.Errorf("%w: color params: %w", light.ErrInvalidInput, err)
		}
		switch {
		case params.Color.SpectrumRGB != nil:
			r, g, b := light.SpectrumToRGB(*params.Color.SpectrumRGB)
			return t.registry.SetColor(ctx, id, light.RGB(r, g, b))
		case params.Color.Temperature != nil:
			return t.registry.SetColor(ctx, id, light.White(*params.Color.Temperature))
		default:
			return fmt.Errorf("%w: color params carry neither spectrum nor temperature", light.ErrInvalidInput)
		}

	default:
		return fmt.Errorf("%w: unknown command %q", light.ErrInvalidInput, exec.Command)
	}
}

// reportColor converts the internal colour to the external descriptor.
func reportColor(c light.Color) ColorReport {
	if c.Mode == light.ColorModeWhite {
		kelvin := c.Kelvin
		return ColorReport{TemperatureK: &kelvin}
	}
	spectrum := light.SpectrumFromRGB(c.R, c.G, c.B)
	return ColorReport{SpectrumRGB: &spectrum}
}
