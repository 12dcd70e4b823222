package fnb

import (
	"github.com/gin-gonic/gin"
)

func SetupFnbRoutes(router *gin.RouterGroup, controller Controller, auth, requireStaff gin.HandlerFunc) {
	orders := router.Group("/fnb/orders")
	orders.Use(auth, requireStaff)
	{
		orders.POST("", controller.CreateOrder)              // POST /api/v1/fnb/orders
		orders.GET("", controller.ListOrders)                // GET /api/v1/fnb/orders
		orders.PATCH("/:id/status", controller.UpdateStatus) // PATCH /api/v1/fnb/orders/:id/status
	}
}
