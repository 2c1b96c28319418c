package sessionkit

import (
	"context"
	"errors"
	"time"

	"github.com/parentsmadrasa/sessionkit/jwt"
)

// AuditErrorCode is the stable error label carried by audit events.
type AuditErrorCode string

const (
	auditErrStorage       AuditErrorCode = "storage_error"
	auditErrClearFailed   AuditErrorCode = "session_clear_failed"
	auditErrInvalidRecord AuditErrorCode = "invalid_record"
	auditErrInvalidMarker AuditErrorCode = "invalid_marker"
	auditErrInternal      AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	clientID string,
	userID string,
	sessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		ClientID:  clientID,
		UserID:    userID,
		SessionID: sessionID,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrSessionClearFailed), errors.Is(err, ErrForceClearFailed):
		return auditErrClearFailed
	case errors.Is(err, ErrInvalidRecord):
		return auditErrInvalidRecord
	case errors.Is(err, jwt.ErrMarkerInvalid):
		return auditErrInvalidMarker
	case errors.Is(err, ErrStorage):
		return auditErrStorage
	default:
		return auditErrInternal
	}
}
