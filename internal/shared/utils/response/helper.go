package response

import (
	"errors"
	"net/http"
	"strings"

	"venueledger/internal/shared/apperror"
	"venueledger/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError maps a ledger error to its HTTP status. Internal errors are
// logged and never echoed to the client.
func RespondError(c *gin.Context, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		logger.GetDefault().LogHTTPError(c, err, http.StatusInternalServerError)
		RespondJSON(c, "error", http.StatusInternalServerError, "Internal server error", nil, nil)
		return
	}

	code := StatusCodeFor(appErr.Kind)
	if code == http.StatusInternalServerError {
		logger.GetDefault().LogHTTPError(c, err, code)
		RespondJSON(c, "error", code, "Internal server error", nil, nil)
		return
	}
	RespondJSON(c, "error", code, appErr.Message, nil, nil)
}

// RespondBindError reports request binding and validation failures field by field.
func RespondBindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[strings.ToLower(fe.Field())] = describeFieldError(fe)
		}
		RespondJSON(c, "error", http.StatusBadRequest, "Validation failed", nil, details)
		return
	}
	RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
}

func StatusCodeFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "len":
		return "must have length " + fe.Param()
	case "email":
		return "must be a valid email"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
