package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs handles websocket requests from the peer. sourceFilter may be
// empty to receive progress for every source.
func ServeWs(hub *Hub, c *websocket.Conn, sourceFilter string) {
	client := &Client{Hub: hub, Conn: c, SourceFilter: sourceFilter, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
