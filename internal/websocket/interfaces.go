package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// Connection is the part of *websocket.Conn a client uses. Tests replace
// it with an in-memory connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

// wsConn adapts *websocket.Conn to Connection.
type wsConn struct {
	*websocket.Conn
}

func (c wsConn) RemoteAddr() string {
	return c.Conn.RemoteAddr().String()
}
