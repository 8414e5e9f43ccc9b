package websocket

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

var (
	// ErrClientClosed is returned by Send once the client has been closed.
	ErrClientClosed = errors.New("websocket client closed")
	// ErrSendBufferFull is returned by Send when the outbound queue is full.
	ErrSendBufferFull = errors.New("websocket send buffer full")
)

// Client is one accepted WebSocket connection. It satisfies pairing.Conn: Send only
// queues the payload, and a write pump goroutine drains the queue onto the wire, so
// the pairing engine never blocks on network I/O.
type Client struct {
	conn         *websocket.Conn
	send         chan []byte
	writeTimeout time.Duration
	logger       *slog.Logger
	mu           sync.RWMutex
}

func newClient(conn *websocket.Conn, buffer int, writeTimeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		conn:         conn,
		send:         make(chan []byte, buffer),
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// Send queues a payload for delivery. It never blocks.
func (c *Client) Send(payload []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// A nil channel means the client is closed.
	if c.send == nil {
		return ErrClientClosed
	}

	select {
	case c.send <- payload:
		return nil
	default:
		c.logger.Warn("Client send channel full, dropping message")
		return ErrSendBufferFull
	}
}

// Close stops accepting payloads. Already queued payloads are still written before
// the write pump closes the connection. Close is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.send != nil {
		close(c.send)
		c.send = nil
	}
	return nil
}

// queue returns the channel the write pump drains. It is captured once, before Close
// can nil the field.
func (c *Client) queue() <-chan []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.send
}

// writePump writes queued payloads until the queue is closed or a write fails. On a
// write failure the connection is torn down so the read side unblocks too.
func (c *Client) writePump(queue <-chan []byte) {
	for message := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
		err := c.conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			c.logger.Debug("WebSocket write error", "error", err)
			c.conn.CloseNow()
			return
		}
	}
	c.conn.Close(websocket.StatusNormalClosure, "")
}
