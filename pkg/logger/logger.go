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

// Logger is a slog.Logger with helpers for the events the box office reports on
type Logger struct {
	*slog.Logger
}

type Options struct {
	// Level is one of debug, info, warn or error; anything else means info
	Level string
	// JSON selects the JSON handler; the text handler is easier to read in a terminal
	JSON   bool
	Output io.Writer
}

// New builds a logger from opts. Source locations are attached at debug level.
func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	level := ParseLevel(opts.Level)
	handlerOpts := &slog.HandlerOptions{Level: level, AddSource: level == slog.LevelDebug}

	var handler slog.Handler = slog.NewTextHandler(out, handlerOpts)
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	}
	return &Logger{Logger: slog.New(handler)}
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.Logger.With("request_id", requestID)}
}

func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	level := slog.LevelInfo
	switch status := c.Writer.Status(); {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}
	l.Logger.Log(c.Request.Context(), level, "HTTP Request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"query", c.Request.URL.RawQuery,
		"status", c.Writer.Status(),
		"duration", duration,
		"ip", c.ClientIP(),
		"user_agent", c.Request.UserAgent(),
		"size", c.Writer.Size(),
	)
}

// Seat inventory

func (l *Logger) LogSeatMapSaved(ctx context.Context, eventID string, sectors, rows, specialSeats int) {
	l.Logger.InfoContext(ctx, "Seat Map Saved",
		"event_id", eventID,
		"sectors", sectors,
		"rows", rows,
		"special_seats", specialSeats,
	)
}

func (l *Logger) LogSeatReserved(ctx context.Context, eventID, seatID, userID string) {
	l.Logger.InfoContext(ctx, "Seat Reserved", "event_id", eventID, "seat_id", seatID, "user_id", userID)
}

func (l *Logger) LogReservationRejected(ctx context.Context, eventID, seatID, userID string, err error) {
	l.Logger.WarnContext(ctx, "Reservation Rejected",
		"event_id", eventID,
		"seat_id", seatID,
		"user_id", userID,
		"error", err,
	)
}

// LogDemoFallback records a switch to synthesized inventory or simulated updates.
// source names what failed: "inventory" or "realtime".
func (l *Logger) LogDemoFallback(ctx context.Context, eventID, sectorID, source string, cause error) {
	attrs := []any{"event_id", eventID, "sector_id", sectorID, "source", source}
	if cause != nil {
		attrs = append(attrs, "cause", cause)
	}
	l.Logger.WarnContext(ctx, "Demo Mode Fallback", attrs...)
}

func (l *Logger) LogHandOff(ctx context.Context, handOffID, eventID, sectorID, userID string, seats int) {
	l.Logger.InfoContext(ctx, "Selection Handed Off",
		"handoff_id", handOffID,
		"event_id", eventID,
		"sector_id", sectorID,
		"user_id", userID,
		"seats", seats,
	)
}

// Security

func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx, "Authentication Failure", "reason", reason, "ip", ip)
}

func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx, "Rate Limit Exceeded", "ip", ip, "endpoint", endpoint)
}

var defaultLogger = New(Options{Level: os.Getenv("LOG_LEVEL"), JSON: gin.Mode() == gin.ReleaseMode})

// GetDefault returns the process-wide logger. Until SetDefault is called it follows
// LOG_LEVEL and logs JSON only in gin release mode.
func GetDefault() *Logger {
	return defaultLogger
}

func SetDefault(l *Logger) {
	defaultLogger = l
}
