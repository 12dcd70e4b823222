package closures

import (
	"github.com/gin-gonic/gin"
)

func SetupClosureRoutes(router *gin.RouterGroup, controller Controller, auth, requireStaff, requireAdmin gin.HandlerFunc) {
	closures := router.Group("/closures")
	closures.Use(auth, requireStaff)
	{
		closures.GET("", controller.ListClosures)                  // GET /api/v1/closures
		closures.GET("/summary", controller.GetSummary)            // GET /api/v1/closures/summary?date=
		closures.GET("/:date", controller.GetClosure)              // GET /api/v1/closures/:date
		closures.POST("/start", controller.StartDay)               // POST /api/v1/closures/start
		closures.POST("/close", requireAdmin, controller.CloseDay) // POST /api/v1/closures/close
	}
}
