package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	readLimit    = 4096
	pongWait     = 60 * time.Second
	sendBuffered = 16
)

// Conn is the subset of *websocket.Conn used by a viewer connection.
type Conn interface {
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Connection is one live viewer. Only the write pump writes to the socket.
type Connection struct {
	id           string
	ws           Conn
	send         chan []byte
	logger       *zap.Logger
	pingInterval time.Duration
	writeTimeout time.Duration
	onClose      func(id string)

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewConnection builds connection wrapper.
func NewConnection(id string, ws Conn, pingInterval, writeTimeout time.Duration, logger *zap.Logger, onClose func(string)) *Connection {
	return &Connection{
		id:           id,
		ws:           ws,
		send:         make(chan []byte, sendBuffered),
		logger:       logger,
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
		onClose:      onClose,
		done:         make(chan struct{}),
	}
}

// ID returns the viewer identifier.
func (c *Connection) ID() string {
	return c.id
}

// Start launches the write pump and blocks in the read pump until the viewer leaves.
func (c *Connection) Start(ctx context.Context) {
	go c.writePump(ctx)
	c.readPump(ctx)
}

// Viewers never send data; reading drains control frames and detects disconnects.
func (c *Connection) readPump(ctx context.Context) {
	defer c.Close()
	c.ws.SetReadLimit(readLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		if _, _, err := c.ws.ReadMessage(); err != nil {
			c.logger.Debug("viewer read closed", zap.String("viewer_id", c.id), zap.Error(err))
			return
		}
	}
}

func (c *Connection) writePump(ctx context.Context) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	defer c.ws.Close()

	for {
		select {
		case <-ctx.Done():
			_ = c.write(websocket.CloseMessage, []byte{})
			return
		case <-c.done:
			_ = c.write(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.logger.Debug("viewer write failed", zap.String("viewer_id", c.id), zap.Error(err))
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

// Send enqueues a message. It reports false when the viewer is gone or its buffer is full.
func (c *Connection) Send(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		c.logger.Warn("dropping live update, viewer buffer full", zap.String("viewer_id", c.id))
		return false
	}
}

// Close stops the connection once and notifies the owner.
func (c *Connection) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	if c.onClose != nil {
		c.onClose(c.id)
	}
}

func (c *Connection) write(messageType int, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(messageType, data)
}
