// Package transport is the thin collaborator spec.md §6 describes: it
// frames protocol.ClientMessage/ServerMessage values over a
// gorilla/websocket connection and does nothing else — no auth, no
// retry, no reconnect logic, those stay external per spec.md's
// Non-goals. Grounded on the teacher's pkg/server HTTP handler style
// (one goroutine per connection, explicit Close on exit).
package transport

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/orneryd/deve-ledger/pkg/protocol"
)

// Conn wraps a single gorilla/websocket connection and frames the
// protocol envelope types over it as JSON text messages.
type Conn struct {
	ws *websocket.Conn
}

// NewConn wraps an already-established websocket connection.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// SendClientMessage writes msg as a single JSON text frame.
func (c *Conn) SendClientMessage(msg protocol.ClientMessage) error {
	return c.send(msg)
}

// SendServerMessage writes msg as a single JSON text frame.
func (c *Conn) SendServerMessage(msg protocol.ServerMessage) error {
	return c.send(msg)
}

func (c *Conn) send(msg any) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("transport: encode message: %w", err)
	}
	return c.ws.WriteMessage(websocket.TextMessage, raw)
}

// RecvClientMessage blocks for the next client-originated message.
func (c *Conn) RecvClientMessage() (protocol.ClientMessage, error) {
	_, raw, err := c.ws.ReadMessage()
	if err != nil {
		return protocol.ClientMessage{}, fmt.Errorf("transport: read message: %w", err)
	}
	return protocol.DecodeClientMessage(raw)
}

// RecvServerMessage blocks for the next server-originated message.
func (c *Conn) RecvServerMessage() (protocol.ServerMessage, error) {
	_, raw, err := c.ws.ReadMessage()
	if err != nil {
		return protocol.ServerMessage{}, fmt.Errorf("transport: read message: %w", err)
	}
	return protocol.DecodeServerMessage(raw)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}
