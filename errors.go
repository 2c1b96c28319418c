package sessionkit

import (
	"errors"

	"github.com/parentsmadrasa/sessionkit/storage"
)

// ClearFailedMessage is the user-facing guidance attached to a failed logout.
const ClearFailedMessage = "Unable to clear session data. Please try refreshing the page."

var (
	// ErrStorage matches any persisted-session storage failure.
	ErrStorage = storage.ErrStorage
	// ErrInvalidRecord is returned for session records that fail validation.
	ErrInvalidRecord = storage.ErrInvalidRecord
	// ErrSessionClearFailed is returned when logout could not remove persisted
	// session data even after retries and the fallback clear. The in-memory
	// session is already reset when it is returned.
	ErrSessionClearFailed = errors.New(ClearFailedMessage)
	// ErrForceClearFailed is returned when a force logout could not clear
	// storage. The in-memory session is already reset.
	ErrForceClearFailed = errors.New("forced session clear failed")
	// ErrSessionPersistFailed is returned when sign-in could not persist the session.
	ErrSessionPersistFailed = errors.New("session persist failed")
	// ErrInvalidClientID is returned for empty or malformed client identifiers.
	ErrInvalidClientID = errors.New("invalid client id")
	// ErrEngineNotReady is returned by methods called on a nil or closed engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// UserMessage returns text safe to show to a portal user for err.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSessionClearFailed), errors.Is(err, ErrForceClearFailed):
		return ClearFailedMessage
	case errors.Is(err, ErrInvalidRecord):
		return "The sign-in details are incomplete."
	default:
		return "Something went wrong. Please try again."
	}
}
