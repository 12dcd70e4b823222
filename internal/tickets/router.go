package tickets

import (
	"github.com/gin-gonic/gin"
)

func SetupTicketRoutes(router *gin.RouterGroup, controller Controller, auth gin.HandlerFunc, requireStaff gin.HandlerFunc) {
	orders := router.Group("/tickets/orders")
	orders.Use(auth)
	{
		orders.POST("", controller.CreateOrder) // POST /api/v1/tickets/orders
		orders.GET("", controller.ListOrders)   // GET /api/v1/tickets/orders
		orders.GET("/:id", controller.GetOrder) // GET /api/v1/tickets/orders/:id
	}

	// door and box office operations
	staff := orders.Group("")
	staff.Use(requireStaff)
	{
		staff.POST("/:id/checkin", controller.ConfirmCode)    // POST /api/v1/tickets/orders/:id/checkin
		staff.POST("/:id/confirm-all", controller.ConfirmAll) // POST /api/v1/tickets/orders/:id/confirm-all
		staff.PATCH("/:id/status", controller.UpdateStatus)   // PATCH /api/v1/tickets/orders/:id/status
	}
}
