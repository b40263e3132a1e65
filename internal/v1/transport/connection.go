// Package transport adapts a gorilla/websocket connection to the duplex
// channel a room.Room needs (room.ChannelHandle), and drives a session's
// read loop against the room's exported Dispatch entry point. Nothing in
// internal/v1/room imports this package — the dependency runs one way, so
// the two never form a cycle.
package transport

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/protocol"
)

const writeWait = 10 * time.Second

// wsConnection is the slice of *websocket.Conn this package actually uses,
// narrowed so tests can substitute a fake. Grounded on the teacher's own
// wsConnection interface in transport/client.go.
type wsConnection interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
	SetReadLimit(limit int64)
}

// Connection adapts a wsConnection to room.ChannelHandle: JSON-encode and
// send a text frame, or close with a websocket close code. Every exported
// method is safe to call from the room's goroutine while RunSession drives
// the same conn's read side on whatever goroutine called it.
type Connection struct {
	conn wsConnection
}

// NewConnection wraps conn, setting the read-size limit to MAX_MESSAGE_BYTES
// (§4.7) so an oversize frame fails at the transport layer before ever
// reaching the validator.
func NewConnection(conn wsConnection) *Connection {
	conn.SetReadLimit(protocol.MaxMessageBytes)
	return &Connection{conn: conn}
}

// Send JSON-encodes v and writes it as a single text frame.
func (c *Connection) Send(v interface{}) error {
	data, err := protocol.Marshal(v)
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close sends a close control frame carrying code/reason, then closes the
// underlying connection. Best-effort: a failed control-frame write doesn't
// stop the connection from closing.
func (c *Connection) Close(code int, reason string) error {
	deadline := time.Now().Add(writeWait)
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	return c.conn.Close()
}
