package sessionkit

import "github.com/parentsmadrasa/sessionkit/storage"

// Record is the persisted identity of a signed-in user.
type Record = storage.Record

// State is a snapshot of a client's session.
//
// Loading is true only while a logout is running. Error carries a message set
// by failed sign-in or restore and is reset by logout and ClearError.
type State struct {
	User    *Record `json:"user"`
	Loading bool    `json:"loading"`
	Error   string  `json:"error,omitempty"`
}

// Authenticated reports whether a user is present.
func (s State) Authenticated() bool { return s.User != nil }

// LogoutReport summarizes the storage side of a logout.
type LogoutReport struct {
	Attempts       int  `json:"attempts"`
	FallbackUsed   bool `json:"fallback_used"`
	FallbackFailed bool `json:"fallback_failed"`
	Cleared        bool `json:"cleared"`
}
