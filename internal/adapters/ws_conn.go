package adapters

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/verock/streamcast/internal/core"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

const writeTimeout = 5 * time.Second

// WSConn is an indirection over *websocket.Conn to ease testing.
type WSConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	Close() error
}

// WSConnection is a transport endpoint (WebSocket).
// It implements core.Conn.
type WSConnection struct {
	conn       WSConn
	send       chan core.Frame
	pingPeriod time.Duration
	mu         sync.Mutex
	closed     bool
	once       sync.Once
}

func NewWSConnection(conn WSConn, sendBuffer int, pingPeriod time.Duration) *WSConnection {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	return &WSConnection{
		conn:       conn,
		send:       make(chan core.Frame, sendBuffer),
		pingPeriod: pingPeriod,
	}
}

// TrySend queues a frame without blocking. Outbound delivery is
// best-effort: a full buffer drops the frame for this recipient.
// The mutex orders sends against Close; a late VOD emit after
// disconnect gets ErrClosed instead of a send on a closed channel.
func (c *WSConnection) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- f:
		return nil
	default:
		return ErrBackpressure
	}
}

func (c *WSConnection) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		_ = c.conn.Close()
	})
}

// StartWriteLoop pumps frames to the network.
// Adapter owns transport resources and closes them on exit.
func (c *WSConnection) StartWriteLoop(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.pingPeriod)
		defer func() {
			ticker.Stop()
			c.Close()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case data, ok := <-c.send:
				if !ok {
					return
				}
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
					return
				}
			case <-ticker.C:
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()
}
