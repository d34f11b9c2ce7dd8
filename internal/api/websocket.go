package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lumen-home/lumen-core/internal/infrastructure/logging"
	"github.com/lumen-home/lumen-core/internal/light"
)

// Message types on the WebSocket wire.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"

	// ChannelLightState carries registry cache mutations.
	ChannelLightState = "light.state"

	// sendBuffer is the per-client outbound queue. A client that falls
	// this far behind starts losing events, not holding up the hub.
	sendBuffer = 256
)

// WSMessage is the wire envelope in both directions.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// wsInbound mirrors WSMessage for decoding, with the payload left raw
// until the type is known.
type wsInbound struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

// WSSubscribePayload selects channels for subscribe and unsubscribe.
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
}

// lightStateEvent is the payload broadcast on ChannelLightState.
type lightStateEvent struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	State light.State `json:"state"`
}

// Hub fans registry events out to connected WebSocket clients. Clients
// pick channels with subscribe messages; an unsubscribed client gets
// nothing.
type Hub struct {
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

// wsClient is one connection. The read pump owns inbound traffic, the
// write pump owns the conn for writes; everything outbound goes through
// the send queue.
type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// pingEvery and idleAfter derive from the websocket config: ping
	// cadence and how long a silent peer is allowed to live.
	pingEvery time.Duration
	idleAfter time.Duration

	mu       sync.RWMutex
	channels map[string]struct{}
	closed   bool
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The shared-secret token middleware already gates this endpoint.
	CheckOrigin: func(*http.Request) bool { return true },
}

// NewHub creates an empty hub.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*wsClient]struct{}),
	}
}

// Run blocks until the context is cancelled, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.shutdown()
		delete(h.clients, client)
	}
}

func (h *Hub) attach(client *wsClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", h.ClientCount())
}

func (h *Hub) detach(client *wsClient) {
	h.mu.Lock()
	_, existed := h.clients[client]
	delete(h.clients, client)
	h.mu.Unlock()

	if existed {
		client.shutdown()
	}
	h.logger.Debug("websocket client disconnected", "clients", h.ClientCount())
}

// Broadcast delivers a payload to every client subscribed to the
// channel. The client list is snapshotted first so a slow client's
// queue never blocks the hub lock.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      WSTypeEvent,
		EventType: channel,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		h.logger.Error("marshalling broadcast", "channel", channel, "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if client.subscribed(channel) {
			client.enqueue(data)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcastState relays one registry cache mutation to the hub.
// It matches light.StateListener and is registered in Start().
func (s *Server) broadcastState(id, name string, st light.State) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(ChannelLightState, lightStateEvent{ID: id, Name: name, State: st})
}

// handleWebSocket upgrades the connection and starts the pumps.
// Authentication happened in the token middleware (?token= for
// browsers).
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{
		hub:       s.hub,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		pingEvery: time.Duration(s.wsCfg.PingInterval) * time.Second,
		idleAfter: time.Duration(s.wsCfg.PingInterval+s.wsCfg.PongTimeout) * time.Second,
		channels:  make(map[string]struct{}),
	}
	client.conn.SetReadLimit(int64(s.wsCfg.MaxMessageSize))

	s.hub.attach(client)

	go client.writePump()
	go client.readPump()
}

// shutdown marks the client closed under its lock, so no enqueue can
// race the channel close, then closes the queue to stop the write pump.
func (c *wsClient) shutdown() {
	c.mu.Lock()
	alreadyClosed := c.closed
	c.closed = true
	c.mu.Unlock()

	if !alreadyClosed {
		close(c.send)
	}
}

// enqueue queues data for the write pump, dropping it when the client
// is gone or its buffer is full.
func (c *wsClient) enqueue(data []byte) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
	}
}

func (c *wsClient) subscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.channels[channel]
	return ok
}

// readPump drains inbound messages until the peer disappears. Any
// traffic, pong or otherwise, extends the read deadline: browser
// clients do not always answer protocol-level pings.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.detach(c)
		c.conn.Close()
	}()

	extend := func() {
		//nolint:errcheck // best-effort deadline
		c.conn.SetReadDeadline(time.Now().Add(c.idleAfter))
	}
	extend()
	c.conn.SetPongHandler(func(string) error {
		extend()
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			} else {
				c.hub.logger.Debug("websocket closed", "error", err)
			}
			return
		}
		extend()
		c.dispatch(data)
	}
}

// writePump is the only writer on the conn: queued messages plus
// periodic pings. It exits when shutdown closes the queue or a write
// fails.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(c.pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				//nolint:errcheck // best-effort close frame
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(c.idleAfter))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(c.idleAfter))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch routes one inbound message.
func (c *wsClient) dispatch(data []byte) {
	var msg wsInbound
	if err := json.Unmarshal(data, &msg); err != nil {
		c.replyError("", "invalid JSON message")
		return
	}

	switch msg.Type {
	case WSTypeSubscribe:
		c.setChannels(msg, true)
	case WSTypeUnsubscribe:
		c.setChannels(msg, false)
	case WSTypePing:
		c.reply(msg.ID, WSTypePong, nil)
	default:
		c.replyError(msg.ID, "unknown message type: "+msg.Type)
	}
}

// setChannels applies a subscribe or unsubscribe request and acks with
// the channel list that changed.
func (c *wsClient) setChannels(msg wsInbound, subscribe bool) {
	var sub WSSubscribePayload
	if err := json.Unmarshal(msg.Payload, &sub); err != nil {
		c.replyError(msg.ID, "invalid channels payload")
		return
	}

	c.mu.Lock()
	for _, ch := range sub.Channels {
		if subscribe {
			c.channels[ch] = struct{}{}
		} else {
			delete(c.channels, ch)
		}
	}
	c.mu.Unlock()

	key := "unsubscribed"
	if subscribe {
		key = "subscribed"
		c.hub.logger.Debug("websocket client subscribed", "channels", sub.Channels)
	}
	c.reply(msg.ID, WSTypeResponse, map[string]any{key: sub.Channels})
}

func (c *wsClient) reply(id, msgType string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		return
	}
	c.enqueue(data)
}

func (c *wsClient) replyError(id, message string) {
	c.reply(id, WSTypeError, map[string]string{"message": message})
}
