package broadlink

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

// Packet opcodes understood by the device firmware.
const (
	opSetPower = 0x6a
)

// defaultWriteTimeout bounds a single packet when the caller supplies no
// deadline.
const defaultWriteTimeout = 5 * time.Second

// Switcher is the wire-level interface to one device. Declared as an
// interface so the capability adapter is testable without hardware.
type Switcher interface {
	SetPower(ctx context.Context, on bool) error
	MAC() (string, error)
}

// Connection is a UDP session with one device on the local network.
//
// Thread Safety: all methods are safe for concurrent use; packets are
// serialised on the socket.
type Connection struct {
	mac string

	mu   sync.Mutex
	conn net.Conn
}

// Dial opens a session with the device at addr, identified by its MAC.
func Dial(ctx context.Context, addr, mac string) (*Connection, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotConnected, err)
	}
	return &Connection{mac: mac, conn: conn}, nil
}

// MAC returns the device's MAC address, used as its unique identifier.
func (c *Connection) MAC() (string, error) {
	if c.mac == "" {
		return "", ErrNotConnected
	}
	return c.mac, nil
}

// SetPower sends a power packet.
func (c *Connection) SetPower(ctx context.Context, on bool) error {
	var value byte
	if on {
		value = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}

	deadline := time.Now().Add(defaultWriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}
	if _, err := c.conn.Write([]byte{opSetPower, value}); err != nil {
		return fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}
	return nil
}

// Close shuts the session.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
