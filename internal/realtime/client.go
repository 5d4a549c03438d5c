package realtime

import (
	"time"

	"github.com/mcoot/bingogame-go/internal/model"
)

// Buffer size for outgoing messages
const sendBufferSize = 256

// Format selects how a client's frames are written
type Format int

const (
	// FormatJSON writes the bare JSON envelope (WebSocket)
	FormatJSON Format = iota
	// FormatSSE wraps the envelope in an event-stream frame
	FormatSSE
)

// Client is one subscriber to a room hub. The send channel belongs to the
// connection that created the client; the hub never closes it.
type Client struct {
	connID      model.ConnID
	spectator   bool
	format      Format
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a new hub client
func NewClient(connID model.ConnID, format Format, spectator bool) *Client {
	return &Client{
		connID:      connID,
		spectator:   spectator,
		format:      format,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ConnID returns the connection ID the client was registered under
func (c *Client) ConnID() model.ConnID {
	return c.connID
}

// Send returns the channel frames are delivered on
func (c *Client) Send() <-chan []byte {
	return c.send
}

// wants reports whether the event should reach this client
func (c *Client) wants(e model.Event) bool {
	if e.Except != "" && e.Except == c.connID {
		return false
	}
	if e.IsPrivate() {
		return !c.spectator && e.To != "" && e.To == c.connID
	}
	return true
}

// frame renders the encoded envelope in the client's format
func (c *Client) frame(e model.Event, payload []byte) []byte {
	if c.format == FormatSSE {
		return formatSSEMessage(string(e.Type), string(payload))
	}
	return payload
}

// offer queues a frame without blocking. Returns false if the buffer is full.
func (c *Client) offer(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}
