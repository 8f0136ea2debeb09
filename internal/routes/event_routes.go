package routes

import (
	"github.com/gin-gonic/gin"
)

func EventRoutes(r *gin.Engine, c Controllers) {
	// Ingestion: trackers authenticate with a MAC inside the payload, so no
	// bearer middleware here. GET is kept for constrained devices.
	r.POST("/api/events", c.Events.Ingest)
	r.GET("/api/events/push", c.Events.Ingest)

	query := r.Group("/api/events")
	query.Use(c.JWT.RequireAuth())
	{
		query.GET("/search", c.Events.Search)
		query.GET("/all", c.Events.ListEvents)
		query.GET("/get/:ids", c.Events.GetByIDs)
	}
}
