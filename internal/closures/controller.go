package closures

import (
	"net/http"

	"venueledger/internal/shared/middleware"
	"venueledger/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	GetSummary(c *gin.Context)
	StartDay(c *gin.Context)
	CloseDay(c *gin.Context)
	GetClosure(c *gin.Context)
	ListClosures(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) GetSummary(c *gin.Context) {
	summary, err := ctrl.service.Summary(c.Request.Context(), c.Query("date"))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Day summary retrieved successfully", summary, nil)
}

func (ctrl *controller) StartDay(c *gin.Context) {
	var req StartDayRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondBindError(c, err)
			return
		}
	}

	closure, err := ctrl.service.StartDay(c.Request.Context(), req.Date)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Business day started", closure, nil)
}

func (ctrl *controller) CloseDay(c *gin.Context) {
	var req CloseDayRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondBindError(c, err)
			return
		}
	}

	result, err := ctrl.service.CloseDay(c.Request.Context(), req.Date, req.Note, middleware.ActorID(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Business day closed", result, nil)
}

func (ctrl *controller) GetClosure(c *gin.Context) {
	closure, err := ctrl.service.GetClosure(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Day closure retrieved successfully", closure, nil)
}

func (ctrl *controller) ListClosures(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondBindError(c, err)
		return
	}

	closures, err := ctrl.service.ListClosures(c.Request.Context(), query)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Day closures retrieved successfully", closures, nil)
}
