package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-tables/live"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Sesuaikan dengan kebutuhan keamanan
	},
}

// LiveHandler -> endpoint WebSocket, ?scope=all|form|browser
func LiveHandler(hub *live.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := c.DefaultQuery("scope", live.ScopeAll)
		if !live.ValidScope(scope) {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		hub.Register(ws, scope)

		// Baca pesan sampai client putus
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.Unregister(ws)
	}
}
