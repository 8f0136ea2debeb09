package routes

import (
	"github.com/gin-gonic/gin"
)

func WebSocketRoutes(r *gin.Engine, c Controllers) {
	ws := r.Group("/ws")
	{
		ws.GET("/events", c.WebSocket.HandleEventWebSocket)
	}
}
