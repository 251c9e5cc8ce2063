// Package logger wraps slog with the request-scoped fields and event helpers
// the service logs consistently. Keys are snake_case throughout.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	AgentIDKey   contextKey = "agent_id"
)

type Logger struct {
	*slog.Logger
}

func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter uses the text handler at debug level in development and JSON
// at info level everywhere else.
func NewWithWriter(env string, w io.Writer) *Logger {
	if strings.EqualFold(env, "development") {
		return &Logger{slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	}
	return &Logger{slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))}
}

func Discard() *Logger {
	return &Logger{slog.New(slog.DiscardHandler)}
}

// Named tags every line with the emitting component, e.g. "scheduler".
func (l *Logger) Named(component string) *Logger {
	return &Logger{l.With(slog.String("component", component))}
}

// WithContext adds request_id and agent_id when the HTTP middleware put them
// on ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	var attrs []any
	if v, ok := ctx.Value(RequestIDKey).(string); ok && v != "" {
		attrs = append(attrs, slog.String("request_id", v))
	}
	if v, ok := ctx.Value(AgentIDKey).(string); ok && v != "" {
		attrs = append(attrs, slog.String("agent_id", v))
	}
	if len(attrs) == 0 {
		return l
	}
	return &Logger{l.With(attrs...)}
}

func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

func (l *Logger) HTTPError(method, path string, status int, err error, clientIP string) {
	l.Error("http_error",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("client_ip", clientIP),
	)
}

func (l *Logger) LeadScored(leadID, eventID string, score int, bucket string, redHot bool) {
	l.Info("lead_scored",
		slog.String("lead_id", leadID),
		slog.String("event_id", eventID),
		slog.Int("heat_score", score),
		slog.String("bucket", bucket),
		slog.Bool("red_hot", redHot),
	)
}

// RedHotLead is logged at warn so log-based alerting can page the agent's
// team when a visitor comes back the same day.
func (l *Logger) RedHotLead(leadID, eventID, agentID string, visitNumber int) {
	l.Warn("red_hot_lead",
		slog.String("lead_id", leadID),
		slog.String("event_id", eventID),
		slog.String("agent_id", agentID),
		slog.Int("visit_number", visitNumber),
	)
}

// FollowUp records what happened to a visitor follow-up: "scheduled",
// "sent", or a "skipped_*" reason.
func (l *Logger) FollowUp(outcome, leadID string, attrs ...any) {
	args := append([]any{slog.String("outcome", outcome), slog.String("lead_id", leadID)}, attrs...)
	l.Info("follow_up", args...)
}

func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
