package tickets

import (
	"net/http"

	"venueledger/internal/shared/middleware"
	"venueledger/internal/shared/utils/response"
	"venueledger/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	CreateOrder(c *gin.Context)
	GetOrder(c *gin.Context)
	ListOrders(c *gin.Context)
	ConfirmCode(c *gin.Context)
	ConfirmAll(c *gin.Context)
	UpdateStatus(c *gin.Context)
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

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	// only staff may sell on behalf of someone else
	buyerID := actor.ID
	if req.BuyerID != nil && users.Role(actor.Role).IsStaff() {
		buyerID = *req.BuyerID
	}

	order, err := ctrl.service.CreateOrder(c.Request.Context(), buyerID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Ticket order created successfully", order, nil)
}

func (ctrl *controller) GetOrder(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := ctrl.service.Get(c.Request.Context(), orderID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	actor, _ := middleware.ActorFromContext(c)
	if !users.Role(actor.Role).IsStaff() && order.BuyerID != actor.ID.String() {
		response.RespondError(c, ErrOrderNotFound)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket order retrieved successfully", order, nil)
}

func (ctrl *controller) ListOrders(c *gin.Context) {
	var query ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondBindError(c, err)
		return
	}

	// customers only ever see their own orders
	actor, _ := middleware.ActorFromContext(c)
	if !users.Role(actor.Role).IsStaff() {
		query.BuyerID = actor.ID.String()
	}

	orders, err := ctrl.service.List(c.Request.Context(), query)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket orders retrieved successfully", orders, nil)
}

func (ctrl *controller) ConfirmCode(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req ConfirmCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}

	result, err := ctrl.service.ConfirmSingle(c.Request.Context(), orderID, req.Code, Scan{
		StaffID: middleware.ActorID(c),
		Note:    req.Note,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket checked in", result, nil)
}

func (ctrl *controller) ConfirmAll(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req ConfirmAllRequest
	// body is optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondBindError(c, err)
			return
		}
	}

	order, err := ctrl.service.ConfirmAll(c.Request.Context(), orderID, Scan{
		StaffID: middleware.ActorID(c),
		Note:    req.Note,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "All tickets checked in", order, nil)
}

func (ctrl *controller) UpdateStatus(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
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

	response.RespondJSON(c, "success", http.StatusOK, "Ticket order status updated", order, nil)
}

func orderIDParam(c *gin.Context) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, ErrInvalidOrderID)
		return uuid.Nil, false
	}
	return orderID, true
}
