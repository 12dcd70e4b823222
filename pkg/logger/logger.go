package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	return NewWithLevel(os.Getenv("LOG_LEVEL"), os.Stdout)
}

// NewWithLevel creates a logger writing to w at the given level name
func NewWithLevel(levelStr string, w io.Writer) *Logger {
	level := getLogLevel(levelStr)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text for development, JSON everywhere else
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// HTTP logging methods

// requestIDKey is the gin context key the request ID middleware sets
const requestIDKey = "request_id"

// Middleware logs one line per request through a logger scoped to the
// request ID, so every field of the line carries it
func (l *Logger) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.WithRequestID(c.GetString(requestIDKey)).LogHTTPRequest(c, time.Since(start))
	}
}

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.WithRequestID(c.GetString(requestIDKey)).WithError(err).ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("ip", c.ClientIP()),
	)
}

// Ledger logging methods

// LogOrderCreated logs when a ticket order is issued
func (l *Logger) LogOrderCreated(ctx context.Context, orderID, eventID string, quantity int) {
	l.Logger.InfoContext(ctx,
		"Ticket Order Created",
		slog.String("order_id", orderID),
		slog.String("event_id", eventID),
		slog.Int("quantity", quantity),
	)
}

// LogCheckIn logs ticket codes admitted at the door
func (l *Logger) LogCheckIn(ctx context.Context, orderID string, codes []string) {
	l.Logger.InfoContext(ctx,
		"Ticket Check-In",
		slog.String("order_id", orderID),
		slog.Any("codes", codes),
	)
}

// LogTableAssigned logs a table assignment
func (l *Logger) LogTableAssigned(ctx context.Context, reservationID, tableID string) {
	l.Logger.InfoContext(ctx,
		"Table Assigned",
		slog.String("reservation_id", reservationID),
		slog.String("table_id", tableID),
	)
}

// LogDayClosed logs a completed day closure and its cascade counts
func (l *Logger) LogDayClosed(ctx context.Context, date string, cascade map[string]int64) {
	fields := make(map[string]interface{}, len(cascade))
	for k, v := range cascade {
		fields[k] = v
	}
	l.WithFields(fields).InfoContext(ctx, "Day Closed", slog.String("business_date", date))
}

// LogPublishFailure logs a domain event that could not be delivered to the broker
func (l *Logger) LogPublishFailure(ctx context.Context, eventType string, err error) {
	l.Logger.WarnContext(ctx,
		"Ledger Event Publish Failed",
		slog.String("type", eventType),
		slog.String("error", err.Error()),
	)
}

// Security logging methods

// LogAuthSuccess logs successful authentication
func (l *Logger) LogAuthSuccess(ctx context.Context, userID, method string) {
	l.Logger.InfoContext(ctx,
		"Authentication Success",
		slog.String("user_id", userID),
		slog.String("method", method),
	)
}

// LogAuthFailure logs failed authentication
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
