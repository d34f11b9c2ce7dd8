package esp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

// Frame opcodes understood by the strip firmware.
const (
	opPower = 0x01 // payload: 1 = on, 0 = off
	opColor = 0x02 // payload: r, g, b
)

// defaultWriteTimeout bounds a single frame write when the caller
// supplies no deadline.
const defaultWriteTimeout = 5 * time.Second

// Strip is the wire-level interface to one LED strip. Declared as an
// interface so the capability adapter is testable without hardware.
type Strip interface {
	SetPower(ctx context.Context, on bool) error
	SetRGB(ctx context.Context, r, g, b uint8) error
	Addr() (string, error)
}

// Conn is a TCP connection to a strip. Frames are four bytes: opcode
// plus three payload bytes.
//
// Thread Safety: all methods are safe for concurrent use; writes are
// serialised on the socket.
type Conn struct {
	addr string

	mu   sync.Mutex
	conn net.Conn
}

// Dial connects to a strip at host:port.
func Dial(ctx context.Context, addr string) (*Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotConnected, err)
	}
	return &Conn{addr: addr, conn: conn}, nil
}

// Addr returns the strip's address, used as its unique identifier.
func (c *Conn) Addr() (string, error) {
	if c.addr == "" {
		return "", ErrNotConnected
	}
	return c.addr, nil
}

// SetPower writes a power frame.
func (c *Conn) SetPower(ctx context.Context, on bool) error {
	var value byte
	if on {
		value = 1
	}
	return c.write(ctx, [4]byte{opPower, value, 0, 0})
}

// SetRGB writes a colour frame.
func (c *Conn) SetRGB(ctx context.Context, r, g, b uint8) error {
	return c.write(ctx, [4]byte{opColor, r, g, b})
}

// Close shuts the socket.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// write sends one frame under the context's deadline.
func (c *Conn) write(ctx context.Context, frame [4]byte) error {
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
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if _, err := c.conn.Write(frame[:]); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}
