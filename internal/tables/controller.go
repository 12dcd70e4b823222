package tables

import (
	"net/http"

	"venueledger/internal/shared/middleware"
	"venueledger/internal/shared/utils/response"
	"venueledger/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	CreateTable(c *gin.Context)
	SetTableActive(c *gin.Context)
	ListTables(c *gin.Context)
	GetOccupancy(c *gin.Context)
	AvailableForEvent(c *gin.Context)

	CreateReservation(c *gin.Context)
	GetReservation(c *gin.Context)
	ListReservations(c *gin.Context)
	AssignTable(c *gin.Context)
	UpdateStatus(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateTable(c *gin.Context) {
	var req CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}

	table, err := ctrl.service.CreateTable(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Table created successfully", table, nil)
}

func (ctrl *controller) SetTableActive(c *gin.Context) {
	tableID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req SetTableActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}

	table, err := ctrl.service.SetTableActive(c.Request.Context(), tableID, *req.IsActive)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Table updated successfully", table, nil)
}

func (ctrl *controller) ListTables(c *gin.Context) {
	tables, err := ctrl.service.ListTables(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Tables retrieved successfully", tables, nil)
}

func (ctrl *controller) GetOccupancy(c *gin.Context) {
	tableID, ok := idParam(c, "id")
	if !ok {
		return
	}

	occupancy, err := ctrl.service.Occupancy(c.Request.Context(), tableID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Table occupancy retrieved successfully", occupancy, nil)
}

func (ctrl *controller) AvailableForEvent(c *gin.Context) {
	eventID, ok := idParam(c, "eventId")
	if !ok {
		return
	}

	tables, err := ctrl.service.AvailableForEvent(c.Request.Context(), eventID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Available tables retrieved successfully", tables, nil)
}

func (ctrl *controller) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	buyerID := actor.ID
	if req.BuyerID != nil && users.Role(actor.Role).IsStaff() {
		buyerID = *req.BuyerID
	}

	reservation, err := ctrl.service.CreateReservation(c.Request.Context(), buyerID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Reservation created successfully", reservation, nil)
}

func (ctrl *controller) GetReservation(c *gin.Context) {
	reservationID, ok := idParam(c, "id")
	if !ok {
		return
	}

	reservation, err := ctrl.service.GetReservation(c.Request.Context(), reservationID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	actor, _ := middleware.ActorFromContext(c)
	if !users.Role(actor.Role).IsStaff() && reservation.BuyerID != actor.ID.String() {
		response.RespondError(c, ErrReservationNotFound)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservation retrieved successfully", reservation, nil)
}

func (ctrl *controller) ListReservations(c *gin.Context) {
	var query ReservationListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondBindError(c, err)
		return
	}

	reservations, err := ctrl.service.ListReservations(c.Request.Context(), query)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservations retrieved successfully", reservations, nil)
}

func (ctrl *controller) AssignTable(c *gin.Context) {
	reservationID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req AssignTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}

	reservation, err := ctrl.service.AssignTable(c.Request.Context(), reservationID, req.TableID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Table assigned successfully", reservation, nil)
}

func (ctrl *controller) UpdateStatus(c *gin.Context) {
	reservationID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateReservationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}

	reservation, err := ctrl.service.UpdateStatus(c.Request.Context(), reservationID, req.Status)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservation status updated", reservation, nil)
}

func idParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
