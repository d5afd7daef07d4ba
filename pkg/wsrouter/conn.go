package wsrouter

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Conn serializes writes to a websocket connection. gorilla/websocket
// allows only one concurrent writer; every path that writes to a
// connection (message handlers, event fanout, close frames) must go
// through this wrapper.
type Conn struct {
	*websocket.Conn

	writeMu sync.Mutex
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{Conn: ws}
}

func (c *Conn) WriteJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.Conn.WriteJSON(v)
}

func (c *Conn) WriteMessage(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.Conn.WriteMessage(messageType, data)
}

// WriteClose sends a close frame with the given code.
func (c *Conn) WriteClose(code int, text string) error {
	return c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, text))
}
