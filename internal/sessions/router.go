package sessions

import (
	"github.com/gin-gonic/gin"
)

func SetupSessionRoutes(router *gin.RouterGroup, controller Controller, auth, requireStaff gin.HandlerFunc) {
	sessions := router.Group("/sessions")
	sessions.Use(auth, requireStaff)
	{
		sessions.POST("", controller.OpenSession)            // POST /api/v1/sessions
		sessions.GET("", controller.ListSessions)            // GET /api/v1/sessions
		sessions.POST("/:id/close", controller.CloseSession) // POST /api/v1/sessions/:id/close
	}
}
