package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"venueledger/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newEngine(cfg *config.Config, roles ...string) (*gin.Engine, *Actor) {
	var seen Actor
	engine := gin.New()
	engine.Use(RequestID(), JWTAuthWithConfig(cfg), RequireRoles(roles...))
	engine.GET("/ledger", func(c *gin.Context) {
		seen, _ = ActorFromContext(c)
		c.Status(http.StatusNoContent)
	})
	return engine, &seen
}

func TestJWTAuthAndRoles(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret"}}
	staffID := uuid.New()
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token abc", http.StatusUnauthorized},
		{"bad signature", "Bearer " + signToken(t, "other", jwt.MapClaims{"type": "access", "role": "STAFF", "user_id": staffID.String(), "exp": exp}), http.StatusUnauthorized},
		{"refresh token", "Bearer " + signToken(t, "test-secret", jwt.MapClaims{"type": "refresh", "role": "STAFF", "user_id": staffID.String(), "exp": exp}), http.StatusUnauthorized},
		{"customer forbidden", "Bearer " + signToken(t, "test-secret", jwt.MapClaims{"type": "access", "role": "CUSTOMER", "user_id": staffID.String(), "exp": exp}), http.StatusForbidden},
		{"staff allowed", "Bearer " + signToken(t, "test-secret", jwt.MapClaims{"type": "access", "role": "STAFF", "user_id": staffID.String(), "exp": exp}), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, seen := newEngine(cfg, "ADMIN", "STAFF")
			req := httptest.NewRequest(http.MethodGet, "/ledger", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", w.Code, tt.wantCode)
			}
			if w.Header().Get(HeaderRequestID) == "" {
				t.Fatalf("request id header missing")
			}
			if tt.wantCode == http.StatusNoContent && seen.ID != staffID {
				t.Fatalf("actor = %+v, want %s", seen, staffID)
			}
		})
	}
}
