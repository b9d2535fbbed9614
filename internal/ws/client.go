package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"auctionhouse/internal/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrSendTimeout reports that a client's outbound buffer stayed full past
// the send deadline. The hub converts it into a queued notification.
var ErrSendTimeout = errors.New("send timed out")

// ErrClientClosed reports a send to a connection whose write pump has
// stopped. Like ErrSendTimeout, the hub queues the frame instead.
var ErrClientClosed = errors.New("client connection closed")

const (
	// sendTimeout bounds how long one slow client can hold up a broadcast.
	sendTimeout  = time.Second
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
)

// Client represents a WebSocket client connection.
type Client struct {
	ID     string
	UserID uuid.UUID
	Conn   *websocket.Conn

	send      chan []byte
	items     map[uuid.UUID]bool
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex // protects conn writes
}

func NewClient(conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Conn:   conn,
		send:   make(chan []byte, 256),
		items:  map[uuid.UUID]bool{},
		done:   make(chan struct{}),
	}
}

// Send enqueues a frame for the write loop. It fails rather than blocking
// indefinitely when the client cannot keep up, and fails immediately once
// the write pump has stopped so a dead connection's buffer cannot swallow
// frames that should be queued.
func (c *Client) Send(payload []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}
	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return ErrClientClosed
	case <-time.After(sendTimeout):
		return ErrSendTimeout
	}
}

// WriteLoop drains the send channel onto the socket and keeps the
// connection alive with pings. Any write error stops the pump: the
// connection is closed, the read side unregisters the client, and later
// frames for the user go to the notification queue.
func (c *Client) WriteLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.close()
			return
		case msg, ok := <-c.send:
			if !ok {
				c.close()
				return
			}
			c.mu.Lock()
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.Conn.WriteMessage(websocket.TextMessage, msg)
			c.mu.Unlock()
			if err != nil {
				c.close()
				return
			}
			metrics.BroadcastsDeliveredTotal.Inc()
		case <-ticker.C:
			c.mu.Lock()
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.Conn.WriteMessage(websocket.PingMessage, []byte("ping"))
			c.mu.Unlock()
			if err != nil {
				c.close()
				return
			}
		}
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.Conn != nil {
			_ = c.Conn.Close()
		}
		c.mu.Unlock()
	})
}
