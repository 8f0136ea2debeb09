package routes

import (
	"github.com/gin-gonic/gin"
)

func AuthRoutes(r *gin.Engine, c Controllers) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", c.Trackers.Login)
	}
}
