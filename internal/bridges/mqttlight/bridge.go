package mqttlight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lumen-home/lumen-core/internal/infrastructure/mqtt"
	"github.com/lumen-home/lumen-core/internal/light"
)

// commandTimeout bounds each inbound command dispatch so a hung backend
// cannot stall the MQTT handler goroutine.
const commandTimeout = 5 * time.Second

// MQTTClient is the interface for MQTT operations.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error

	// Unsubscribe removes a subscription.
	Unsubscribe(topic string) error
}

// Dispatcher is the registry surface the bridge drives.
// Satisfied by *light.Registry.
type Dispatcher interface {
	Enumerate() []light.Snapshot
	Has(id string) bool
	SetPower(ctx context.Context, id string, state light.PowerState) error
	SetBrightness(ctx context.Context, id string, level uint8) error
	SetColor(ctx context.Context, id string, color light.Color) error
}

// Logger is the optional structured logging interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// BridgeOptions holds configuration for creating a bridge.
type BridgeOptions struct {
	// MQTTClient is the MQTT client implementation.
	MQTTClient MQTTClient

	// Lights is the registry the bridge publishes from and dispatches to.
	Lights Dispatcher

	// QoS is the quality of service for published state (default 1).
	QoS byte

	// Logger is optional structured logger.
	Logger Logger
}

// Bridge mirrors registry state to retained MQTT topics and translates
// inbound command messages into registry dispatches.
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	mqtt   MQTTClient
	lights Dispatcher
	topics mqtt.Topics
	qos    byte
	logger Logger

	mu        sync.Mutex
	started   bool
	ctx       context.Context
	ctxCancel context.CancelFunc
}

// NewBridge creates a new bridge instance.
// Call Start() to begin operation.
func NewBridge(opts BridgeOptions) (*Bridge, error) {
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}
	if opts.Lights == nil {
		return nil, fmt.Errorf("light dispatcher is required")
	}

	qos := opts.QoS
	if qos == 0 {
		qos = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	return &Bridge{
		mqtt:   opts.MQTTClient,
		lights: opts.Lights,
		qos:    qos,
		logger: logger,
	}, nil
}

// Start begins bridge operation.
// It subscribes to the command topic pattern and publishes a retained
// state message for every currently registered light, so subscribers
// see a complete picture immediately.
//
// Register OnStateChange with the registry before calling Start so
// mutations between the initial publish and the first dispatch are not
// lost.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return nil
	}
	b.ctx, b.ctxCancel = context.WithCancel(context.Background())
	b.started = true
	b.mu.Unlock()

	if err := b.mqtt.Subscribe(b.topics.AllLightCommands(), b.qos, b.handleCommand); err != nil {
		return fmt.Errorf("subscribing to command topics: %w", err)
	}

	for _, snap := range b.lights.Enumerate() {
		b.publishState(snap.ID, snap.Name, snap.State)
	}

	b.logger.Info("mqtt light bridge started", "commands", b.topics.AllLightCommands())
	return nil
}

// Stop halts bridge operation. Retained state messages are left on the
// broker so dashboards keep showing the last known state.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return ErrNotStarted
	}
	b.started = false
	b.ctxCancel()

	if err := b.mqtt.Unsubscribe(b.topics.AllLightCommands()); err != nil {
		return fmt.Errorf("unsubscribing from command topics: %w", err)
	}
	return nil
}

// OnStateChange publishes a retained state message for a mutated light.
// It matches light.StateListener; wire it via AddStateListener.
func (b *Bridge) OnStateChange(id, name string, st light.State) {
	b.publishState(id, name, st)
}

// publishState marshals and publishes one retained state message.
// Publish failures are logged, not returned: state mirroring is
// best-effort and the next mutation republishes anyway.
func (b *Bridge) publishState(id, name string, st light.State) {
	payload, err := json.Marshal(stateMessage(id, name, st))
	if err != nil {
		b.logger.Error("marshalling state message", "id", id, "error", err)
		return
	}
	if err := b.mqtt.Publish(b.topics.LightState(id), payload, b.qos, true); err != nil {
		b.logger.Warn("publishing state message", "id", id, "error", err)
	}
}

// handleCommand decodes and dispatches one inbound command message.
func (b *Bridge) handleCommand(topic string, payload []byte) error {
	id := b.topics.LightIDFromCommandTopic(topic)
	if id == "" {
		b.logger.Debug("ignoring message on non-command topic", "topic", topic)
		return nil
	}
	if !b.lights.Has(id) {
		b.logger.Debug("command for unknown light", "id", id)
		return nil
	}

	var cmd CommandMessage
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	if cmd.isEmpty() {
		return fmt.Errorf("%w: no fields set", ErrInvalidCommand)
	}
	if cmd.Power != nil && *cmd.Power != light.PowerOn && *cmd.Power != light.PowerOff {
		return fmt.Errorf("%w: power must be %q or %q", ErrInvalidCommand, light.PowerOn, light.PowerOff)
	}

	b.mu.Lock()
	ctx := b.ctx
	b.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	cctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	var errs []error
	if cmd.Power != nil {
		if err := b.lights.SetPower(cctx, id, *cmd.Power); err != nil {
			b.logger.Warn("power dispatch failed", "id", id, "error", err)
			errs = append(errs, err)
		}
	}
	if cmd.Brightness != nil {
		if err := b.lights.SetBrightness(cctx, id, *cmd.Brightness); err != nil {
			b.logger.Warn("brightness dispatch failed", "id", id, "error", err)
			errs = append(errs, err)
		}
	}
	if cmd.Color != nil {
		if err := b.lights.SetColor(cctx, id, *cmd.Color); err != nil {
			b.logger.Warn("colour dispatch failed", "id", id, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
