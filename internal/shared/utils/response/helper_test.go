package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"venueledger/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondErrorMapsKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"not found", apperror.NotFound("order not found"), http.StatusNotFound, "order not found"},
		{"validation", fmt.Errorf("create: %w", apperror.Validation("quantity must be positive")), http.StatusBadRequest, "quantity must be positive"},
		{"conflict", apperror.Conflict("day already closed"), http.StatusConflict, "day already closed"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			RespondError(c, tt.err)

			if w.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", w.Code, tt.wantCode)
			}
			var body StandardApiResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Message != tt.wantMsg || body.Status != "error" {
				t.Fatalf("body = %+v", body)
			}
		})
	}
}

func TestRespondBindErrorListsFields(t *testing.T) {
	type payload struct {
		Quantity int `json:"quantity" binding:"required,min=1"`
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/x", nil)

	err := binding.Validator.ValidateStruct(&payload{})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	RespondBindError(c, err)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d", w.Code)
	}
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Errors["quantity"] != "is required" {
		t.Fatalf("errors = %v", body.Errors)
	}
}
