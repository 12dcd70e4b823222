package events

import (
	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller, auth gin.HandlerFunc, requireAdmin gin.HandlerFunc) {
	// Public routes - anyone can browse events
	publicEvents := router.Group("/events")
	{
		publicEvents.GET("", controller.GetAllEvents) // GET /api/v1/events
		publicEvents.GET("/:id", controller.GetEvent) // GET /api/v1/events/:id
	}

	// Admin routes - only admins manage the catalog
	adminEvents := router.Group("/admin/events")
	adminEvents.Use(auth, requireAdmin)
	{
		adminEvents.POST("", controller.CreateEvent)    // POST /api/v1/admin/events
		adminEvents.PUT("/:id", controller.UpdateEvent) // PUT /api/v1/admin/events/:id
	}
}
