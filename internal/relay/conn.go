package relay

import (
	"errors"
	"sync"
	"time"
)

// WebSocket message type codes, shared by the gorilla and fasthttp
// implementations both peers use.
const (
	TextMessage   = 1
	BinaryMessage = 2
)

var ErrConnClosed = errors.New("relay: connection closed")

// Conn is the duplex socket surface the relay needs from either peer. The
// downstream fiber websocket connection and the upstream gorilla connection
// both satisfy it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type deadlineWriter interface {
	SetWriteDeadline(t time.Time) error
}

const writeWait = 10 * time.Second

// safeConn serializes writes and makes Close idempotent. Reads stay on the
// owning pump goroutine and are not guarded.
type safeConn struct {
	conn Conn

	mu     sync.Mutex
	closed bool
}

func newSafeConn(conn Conn) *safeConn {
	return &safeConn{conn: conn}
}

func (c *safeConn) ReadMessage() (int, []byte, error) {
	return c.conn.ReadMessage()
}

func (c *safeConn) WriteText(data []byte) error {
	return c.write(TextMessage, data)
}

func (c *safeConn) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	if dw, ok := c.conn.(deadlineWriter); ok {
		_ = dw.SetWriteDeadline(time.Now().Add(writeWait))
	}
	return c.conn.WriteMessage(messageType, data)
}

func (c *safeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
