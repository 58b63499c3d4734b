// File: internal/infra/ws/channel.go
package ws

import (
	"errors"
	"sync"
	"sync/atomic"

	"docustream/internal/domain/model"

	"github.com/gorilla/websocket"
)

var errChannelClosed = errors.New("status channel closed")

// Handle is what the registry needs from a live connection. Tests
// substitute fakes; production uses *Channel.
type Handle interface {
	Send(model.StatusFrame) error
	Open() bool
	Close() error
}

var _ Handle = (*Channel)(nil)

// Channel is the per-connection push primitive: one JSON frame per
// Send, serialized by a write mutex. The read pump flips the closed
// flag when the transport dies.
type Channel struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed atomic.Bool
}

func NewChannel(conn *websocket.Conn) *Channel {
	return &Channel{conn: conn}
}

func (c *Channel) Send(f model.StatusFrame) error {
	if c.closed.Load() {
		return errChannelClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(f)
}

func (c *Channel) Open() bool { return !c.closed.Load() }

func (c *Channel) Close() error {
	c.closed.Store(true)
	return c.conn.Close()
}

// markClosed records a transport death observed by the read pump
// without issuing another Close on the socket.
func (c *Channel) markClosed() { c.closed.Store(true) }
