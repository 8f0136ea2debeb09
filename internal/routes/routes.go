package routes

import (
	"github.com/gin-gonic/gin"

	"geo_tracker/internal/controllers"
	"geo_tracker/internal/middleware"
)

// Controllers bundles the handlers the router wires up.
type Controllers struct {
	Events    *controllers.EventController
	Trackers  *controllers.TrackerController
	WebSocket *controllers.WebSocketController
	JWT       *middleware.JWTAuth
}

// SetupRouter builds the engine. Middleware passed in (recovery, request
// logging) is registered before any route so it applies to all of them.
func SetupRouter(c Controllers, middlewares ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middlewares...)

	AuthRoutes(r, c)
	EventRoutes(r, c)
	TrackerRoutes(r, c)
	WebSocketRoutes(r, c)

	return r
}
