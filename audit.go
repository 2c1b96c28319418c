package sessionkit

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/rs/zerolog"
)

// Audit event types.
const (
	AuditEventSignIn         = "sign_in"
	AuditEventSessionRestore = "session_restore"
	AuditEventLogout         = "logout"
	AuditEventForceLogout    = "force_logout"
)

// AuditEvent is one session lifecycle record. Error carries an AuditErrorCode,
// never the underlying error text. Logout events carry "attempts" and
// "fallback_used" metadata.
type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	ClientID  string            `json:"client_id"`
	UserID    string            `json:"user_id,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	IP        string            `json:"ip,omitempty"`
	UserAgent string            `json:"user_agent,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// AuditSinkFunc adapts a function to [AuditSink].
type AuditSinkFunc func(ctx context.Context, event AuditEvent)

func (f AuditSinkFunc) Emit(ctx context.Context, event AuditEvent) { f(ctx, event) }

var discardAudit = AuditSinkFunc(func(context.Context, AuditEvent) {})

// ChannelSink hands events to a consumer goroutine. Emit waits for buffer
// space, so a stalled consumer backs up the dispatcher queue.
type ChannelSink struct {
	events chan AuditEvent
}

// NewChannelSink returns a sink buffering up to buffer events.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{events: make(chan AuditEvent, max(buffer, 1))}
}

func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events is the receive side of the sink.
func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// LogSink writes events to a zerolog logger, at warn level for failed
// operations.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink tags every line with stream=audit.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("stream", "audit").Logger()}
}

func (s *LogSink) Emit(_ context.Context, event AuditEvent) {
	entry := s.log.Info()
	if !event.Success {
		entry = s.log.Warn()
	}
	entry = entry.
		Time("at", event.Timestamp).
		Str("event", event.EventType).
		Str("client_id", event.ClientID).
		Bool("success", event.Success)

	optional := [...]struct{ key, value string }{
		{"user_id", event.UserID},
		{"session_id", event.SessionID},
		{"ip", event.IP},
		{"user_agent", event.UserAgent},
		{"error", event.Error},
	}
	for _, f := range optional {
		if f.value != "" {
			entry = entry.Str(f.key, f.value)
		}
	}

	if len(event.Metadata) > 0 {
		meta := zerolog.Dict()
		for _, k := range slices.Sorted(maps.Keys(event.Metadata)) {
			meta = meta.Str(k, event.Metadata[k])
		}
		entry = entry.Dict("metadata", meta)
	}
	entry.Msg("session audit")
}
