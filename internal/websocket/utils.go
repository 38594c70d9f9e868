package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds how long a single frame write may block before the
// connection is considered dead.
const writeWait = 10 * time.Second

// WriteTyped sends a typed event payload as one JSON frame.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// WriteError sends an ErrorResponse frame. The connection stays open;
// closing on protocol errors is the caller's decision.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}
