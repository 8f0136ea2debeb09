package routes

import (
	"github.com/gin-gonic/gin"
)

func TrackerRoutes(r *gin.Engine, c Controllers) {
	tracker := r.Group("/api/trackers")
	tracker.Use(c.JWT.RequireAuth())
	{
		tracker.POST("/", c.Trackers.CreateTracker)
	}
}
