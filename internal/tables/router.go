package tables

import (
	"github.com/gin-gonic/gin"
)

func SetupTableRoutes(router *gin.RouterGroup, controller Controller, auth, requireStaff, requireAdmin gin.HandlerFunc) {
	// Floor staff view of the room
	tables := router.Group("/tables")
	tables.Use(auth, requireStaff)
	{
		tables.GET("", controller.ListTables)                           // GET /api/v1/tables
		tables.GET("/:id/occupancy", controller.GetOccupancy)           // GET /api/v1/tables/:id/occupancy
		tables.GET("/available/:eventId", controller.AvailableForEvent) // GET /api/v1/tables/available/:eventId
	}

	// Admin routes - table catalog
	adminTables := router.Group("/admin/tables")
	adminTables.Use(auth, requireAdmin)
	{
		adminTables.POST("", controller.CreateTable)                // POST /api/v1/admin/tables
		adminTables.PATCH("/:id/active", controller.SetTableActive) // PATCH /api/v1/admin/tables/:id/active
	}

	reservations := router.Group("/reservations")
	reservations.Use(auth)
	{
		reservations.POST("", controller.CreateReservation) // POST /api/v1/reservations
		reservations.GET("/:id", controller.GetReservation) // GET /api/v1/reservations/:id
	}

	staffReservations := reservations.Group("")
	staffReservations.Use(requireStaff)
	{
		staffReservations.GET("", controller.ListReservations)          // GET /api/v1/reservations
		staffReservations.POST("/:id/assign", controller.AssignTable)   // POST /api/v1/reservations/:id/assign
		staffReservations.PATCH("/:id/status", controller.UpdateStatus) // PATCH /api/v1/reservations/:id/status
	}
}
