package fnb

import (
	"net/http"

	"venueledger/internal/shared/middleware"
	"venueledger/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	CreateOrder(c *gin.Context)
	UpdateStatus(c *gin.Context)
	ListOrders(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}

	order, err := ctrl.service.Create(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "F&B order created successfully", order, nil)
}

func (ctrl *controller) UpdateStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, ErrInvalidOrderID)
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}

	order, err := ctrl.service.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "F&B order status updated", order, nil)
}

func (ctrl *controller) ListOrders(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondBindError(c, err)
		return
	}

	orders, err := ctrl.service.List(c.Request.Context(), query)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "F&B orders retrieved successfully", orders, nil)
}
