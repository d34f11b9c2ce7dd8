package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/lumen-home/lumen-core/internal/infrastructure/config"
)

// Client is the hub's broker connection. One instance is shared by the
// light bridge and the composition root; all methods are safe for
// concurrent use. Subscriptions made through Subscribe survive a broker
// reconnect.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig

	// mu guards connection state and the optional callbacks/logger.
	mu           sync.RWMutex
	connected    bool
	onConnect    func()
	onDisconnect func(err error)
	logger       Logger

	// subMu guards the resubscribe map.
	subMu sync.RWMutex
	subs  map[string]subEntry
}

// Logger is the slice of logging.Logger the client needs: handler
// failures only, never the happy path.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// MessageHandler receives inbound messages. Paho invokes handlers on
// its own goroutines, so they must not block on the calling client.
// A returned error is logged and the message is still acknowledged.
type MessageHandler func(topic string, payload []byte) error

// subEntry is what resubscribeAll needs to replay a subscription.
type subEntry struct {
	qos     byte
	handler MessageHandler
}

// Connect dials the broker, arms the LWT on lumen/system/status, and
// retains an online announcement there. Auto-reconnect stays on for the
// life of the client.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := &Client{
		cfg:  cfg,
		subs: make(map[string]subEntry),
	}

	opts := clientOptions(cfg)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.brokerUp() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.brokerDown(err) })

	c.client = pahomqtt.NewClient(opts)
	if err := await(c.client.Connect(), connectTimeout, ErrConnectionFailed); err != nil {
		return nil, err
	}

	// The OnConnect handler runs async and may not have fired yet;
	// mark connected here so callers can use the client immediately.
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()

	return c, nil
}

// brokerUp runs on every (re)connect: replay subscriptions, retain the
// online announcement, then tell the owner.
func (c *Client) brokerUp() {
	c.mu.Lock()
	c.connected = true
	notify := c.onConnect
	c.mu.Unlock()

	c.resubscribeAll()
	c.announce(statusOnline, "")

	if notify != nil {
		notify()
	}
}

func (c *Client) brokerDown(err error) {
	c.mu.Lock()
	c.connected = false
	notify := c.onDisconnect
	c.mu.Unlock()

	if notify != nil {
		notify(err)
	}
}

// resubscribeAll replays tracked subscriptions after a reconnect.
// Failures here are paho's to retry; the entries stay tracked.
func (c *Client) resubscribeAll() {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	for topic, sub := range c.subs {
		c.client.Subscribe(topic, sub.qos, c.wrapHandler(sub.handler))
	}
}

// Close retains a graceful offline announcement, distinguishable from
// the LWT's unexpected_disconnect, then drains and disconnects.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	if c.IsConnected() {
		c.announce(statusOffline, reasonShutdown)
	}
	c.client.Disconnect(disconnectQuiesceMS)

	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	return nil
}

// HealthCheck reports whether the broker connection is up.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports the last known connection state.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected && c.client.IsConnected()
}

// SetOnConnect registers a callback for initial connect and every
// reconnect.
func (c *Client) SetOnConnect(fn func()) {
	c.mu.Lock()
	c.onConnect = fn
	c.mu.Unlock()
}

// SetOnDisconnect registers a callback for connection loss.
func (c *Client) SetOnDisconnect(fn func(err error)) {
	c.mu.Lock()
	c.onDisconnect = fn
	c.mu.Unlock()
}

// SetLogger routes handler failures somewhere visible. Without it they
// are dropped.
func (c *Client) SetLogger(logger Logger) {
	c.mu.Lock()
	c.logger = logger
	c.mu.Unlock()
}

func (c *Client) getLogger() Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logger
}

// wrapHandler adapts a MessageHandler to paho's signature. A panicking
// handler must not take down the paho router goroutine, so recover and
// log instead.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("mqtt handler panic", "topic", msg.Topic(), "panic", r)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("mqtt handler error", "topic", msg.Topic(), "error", err)
			}
		}
	}
}
