package ws

import (
	"net/http"

	"todo_app/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleWS upgrades the request and attaches the connection to hub.
// An empty allowedOrigin accepts any origin.
func HandleWS(hub *Hub, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "error", err)
			return
		}

		client := NewClient(conn, hub)
		go client.Run()
	}
}
