package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func newLimiter(t *testing.T, cfg *Config) (*RateLimiter, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(client, cfg)
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func TestIsAllowedSlidingWindow(t *testing.T) {
	rl, clock := newLimiter(t, &Config{
		Enabled:         true,
		WindowDuration:  time.Minute,
		ClosureRequests: 2,
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeClosure)
		if err != nil {
			t.Fatalf("IsAllowed: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should pass", i+1)
		}
		*clock = clock.Add(time.Second)
	}

	res, err := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeClosure)
	if err != nil {
		t.Fatalf("IsAllowed: %v", err)
	}
	if res.Allowed || res.Remaining != 0 {
		t.Fatalf("third request should be limited, got %+v", res)
	}

	// another client has its own window
	res, _ = rl.IsAllowed(ctx, "10.0.0.2", RateLimitTypeClosure)
	if !res.Allowed {
		t.Fatalf("other ip must not be limited")
	}

	*clock = clock.Add(2 * time.Minute)
	res, _ = rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeClosure)
	if !res.Allowed {
		t.Fatalf("window should have slid")
	}
}

func TestIsAllowedDisabledAndWhitelisted(t *testing.T) {
	rl, _ := newLimiter(t, &Config{Enabled: false, WindowDuration: time.Minute, DefaultRequests: 0})
	res, err := rl.IsAllowed(context.Background(), "1.1.1.1", RateLimitTypeDefault)
	if err != nil || !res.Allowed {
		t.Fatalf("disabled limiter must allow, got %+v %v", res, err)
	}

	rl, _ = newLimiter(t, &Config{Enabled: true, WindowDuration: time.Minute, WhitelistedIPs: []string{"1.1.1.1"}})
	res, err = rl.IsAllowed(context.Background(), "1.1.1.1", RateLimitTypeDefault)
	if err != nil || !res.Allowed {
		t.Fatalf("whitelisted ip must pass, got %+v %v", res, err)
	}
}

func TestGetRateLimitType(t *testing.T) {
	cases := map[string]RateLimitType{
		"/health":                                RateLimitTypeHealth,
		"/api/v1/closures/close":                 RateLimitTypeClosure,
		"/api/v1/tickets/orders/:id/checkin":     RateLimitTypeCheckIn,
		"/api/v1/tickets/orders/:id/confirm-all": RateLimitTypeCheckIn,
		"/api/v1/admin/tables":                   RateLimitTypeAdmin,
		"/api/v1/auth/login":                     RateLimitTypeAuth,
		"/api/v1/events/:id":                     RateLimitTypePublic,
		"/api/v1/reservations/:id/status":        RateLimitTypeDefault,
	}
	for path, want := range cases {
		if got := getRateLimitType(path); got != want {
			t.Fatalf("getRateLimitType(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, _ := newLimiter(t, &Config{Enabled: true, WindowDuration: time.Minute, HealthRequests: 1})

	engine := gin.New()
	engine.Use(Middleware(rl))
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "192.0.2.10:5555"
		engine.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}
