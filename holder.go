package sessionkit

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/parentsmadrasa/sessionkit/internal/flows"
	"github.com/parentsmadrasa/sessionkit/jwt"
	"github.com/parentsmadrasa/sessionkit/storage"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Holder is the observable session state of one portal client.
//
// All methods are safe for concurrent use. Concurrent Logout calls share a
// single run and observe the same result. Logout and ForceLogout never
// overlap; a force logout requested mid-logout starts once it has finished.
type Holder struct {
	engine   *Engine
	clientID string
	local    storage.Scope
	session  storage.Scope
	log      zerolog.Logger

	flight singleflight.Group
	// opMu serializes storage-clearing runs so Loading spans each of them.
	opMu sync.Mutex

	mu    sync.Mutex
	state State

	subsMu  sync.Mutex
	subs    map[int]chan State
	nextSub int
}

func newHolder(e *Engine, clientID string) *Holder {
	return &Holder{
		engine:   e,
		clientID: clientID,
		local:    e.backend.Scope(storage.ScopeLocal, clientID),
		session:  e.backend.Scope(storage.ScopeSession, clientID),
		log:      e.log.With().Str("client_id", clientID).Logger(),
		subs:     make(map[int]chan State),
	}
}

// ClientID returns the client this holder belongs to.
func (h *Holder) ClientID() string { return h.clientID }

// State returns a snapshot of the current session state.
func (h *Holder) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.clone()
}

// ClearError resets the error message.
func (h *Holder) ClearError() {
	h.update(func(s *State) { s.Error = "" })
}

// Subscribe returns a channel that receives a snapshot after every state
// change. Slow readers only see the latest snapshot. Call cancel to stop.
func (h *Holder) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	h.subsMu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = ch
	h.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.subsMu.Lock()
			delete(h.subs, id)
			h.subsMu.Unlock()
			close(ch)
		})
	}
}

// Restore loads the persisted record into memory. It reports whether a user
// was restored. A corrupt record or, with markers enabled, a missing or invalid
// marker leaves the holder signed out.
func (h *Holder) Restore(ctx context.Context) (bool, error) {
	e := h.engine
	raw, ok, err := h.local.Read(ctx, e.keys.Primary)
	if err != nil {
		h.update(func(s *State) { s.Error = UserMessage(err) })
		e.emitAudit(ctx, AuditEventSessionRestore, false, h.clientID, "", "", err, nil)
		return false, err
	}
	if !ok {
		return false, nil
	}

	rec, err := storage.DecodeRecord(raw)
	if err != nil {
		h.log.Warn().Err(err).Msg("persisted session record is corrupt")
		e.emitAudit(ctx, AuditEventSessionRestore, false, h.clientID, "", "", err, nil)
		return false, err
	}

	var sessionID string
	if e.markers != nil {
		token, ok, err := h.local.Read(ctx, storage.KeyAuthToken)
		if err != nil {
			e.emitAudit(ctx, AuditEventSessionRestore, false, h.clientID, rec.UserID, "", err, nil)
			return false, err
		}
		if !ok {
			token = ""
		}
		claims, err := e.markers.Parse(token, h.clientID)
		if err == nil && claims.UID != rec.UserID {
			err = fmt.Errorf("%w: user mismatch", jwt.ErrMarkerInvalid)
		}
		if err != nil {
			h.log.Warn().Err(err).Str("user_id", rec.UserID).Msg("session marker rejected on restore")
			e.emitAudit(ctx, AuditEventSessionRestore, false, h.clientID, rec.UserID, "", err, nil)
			return false, err
		}
		sessionID = claims.SID
	}

	h.update(func(s *State) {
		s.User = &rec
		s.Error = ""
	})
	e.metricInc(MetricSessionRestored)
	e.emitAudit(ctx, AuditEventSessionRestore, true, h.clientID, rec.UserID, sessionID, nil, nil)
	return true, nil
}

// SignIn persists rec under the primary key, writes the session marker when
// enabled, and makes rec the current user.
func (h *Holder) SignIn(ctx context.Context, rec Record) error {
	e := h.engine
	raw, err := storage.EncodeRecord(rec)
	if err != nil {
		e.metricInc(MetricSignInFailure)
		e.emitAudit(ctx, AuditEventSignIn, false, h.clientID, rec.UserID, "", err, nil)
		return err
	}

	sessionID, err := h.persist(ctx, rec.UserID, raw)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrSessionPersistFailed, err)
		h.update(func(s *State) { s.Error = UserMessage(err) })
		e.metricInc(MetricSignInFailure)
		e.emitAudit(ctx, AuditEventSignIn, false, h.clientID, rec.UserID, "", err, nil)
		h.log.Error().Err(err).Str("user_id", rec.UserID).Msg("sign-in persist failed")
		return err
	}

	h.update(func(s *State) {
		s.User = &rec
		s.Error = ""
	})
	e.metricInc(MetricSignIn)
	e.emitAudit(ctx, AuditEventSignIn, true, h.clientID, rec.UserID, sessionID, nil, nil)
	h.log.Info().Str("user_id", rec.UserID).Msg("session persisted")
	return nil
}

func (h *Holder) persist(ctx context.Context, userID, raw string) (string, error) {
	e := h.engine
	if err := h.local.Write(ctx, e.keys.Primary, raw); err != nil {
		return "", err
	}
	if e.keys.Managed(storage.KeyAuthTimestamp) {
		stamp := strconv.FormatInt(time.Now().Unix(), 10)
		if err := h.local.Write(ctx, storage.KeyAuthTimestamp, stamp); err != nil {
			return "", err
		}
	}
	if e.markers == nil {
		return "", nil
	}

	token, claims, err := e.markers.Issue(userID, h.clientID)
	if err != nil {
		return "", err
	}
	if err := h.local.Write(ctx, storage.KeyAuthToken, token); err != nil {
		return "", err
	}
	if err := h.session.Write(ctx, storage.KeySessionToken, token); err != nil {
		return "", err
	}
	return claims.SID, nil
}

// Logout removes persisted session data and resets the in-memory session.
//
// Whatever happens in storage, State().User is nil and State().Loading is
// false once Logout returns. The error wraps ErrSessionClearFailed when
// persisted data may remain after retries and the fallback clear.
// Cancelling ctx does not interrupt a running logout.
func (h *Holder) Logout(ctx context.Context) (LogoutReport, error) {
	v, err, _ := h.flight.Do("logout", func() (interface{}, error) {
		return h.logout(context.WithoutCancel(ctx))
	})
	report, _ := v.(LogoutReport)
	return report, err
}

func (h *Holder) logout(ctx context.Context) (LogoutReport, error) {
	h.opMu.Lock()
	defer h.opMu.Unlock()

	e := h.engine
	start := time.Now()

	var userID string
	h.update(func(s *State) {
		if s.User != nil {
			userID = s.User.UserID
		}
		s.Loading = true
	})
	h.log.Info().Str("user_id", userID).Msg("logout started")

	maxAttempts := e.config.Logout.MaxAttempts
	res := flows.RunLogout(ctx, flows.LogoutDeps{
		Scopes:          []storage.Scope{h.local, h.session},
		Keys:            e.keys.All(),
		MaxAttempts:     maxAttempts,
		RetryDelay:      e.config.Logout.RetryDelay,
		NuclearFallback: e.config.Logout.NuclearFallback,
		Log:             h.log,
		Hooks: flows.Hooks{
			RemoveFailed: func(string, string, error) { e.metricInc(MetricStorageRemoveFailure) },
			AttemptFailed: func(attempt int, _ error) {
				if attempt < maxAttempts {
					e.metricInc(MetricLogoutRetry)
				}
			},
			FallbackUsed:   func() { e.metricInc(MetricNuclearFallback) },
			FallbackFailed: func(error) { e.metricInc(MetricNuclearFallbackFailure) },
		},
	})

	h.update(func(s *State) {
		s.User = nil
		s.Error = ""
		s.Loading = false
	})
	if e.metrics != nil {
		e.metrics.Observe(MetricLogoutLatency, time.Since(start))
	}

	report := LogoutReport{
		Attempts:       res.Attempts,
		FallbackUsed:   res.FallbackUsed,
		FallbackFailed: res.FallbackErr != nil,
		Cleared:        !res.Failed(),
	}
	meta := func() map[string]string {
		return map[string]string{
			"attempts":      strconv.Itoa(report.Attempts),
			"fallback_used": strconv.FormatBool(report.FallbackUsed),
		}
	}

	if res.Failed() {
		err := fmt.Errorf("%w: %w", ErrSessionClearFailed, res.Err())
		e.metricInc(MetricLogoutFailure)
		e.emitAudit(ctx, AuditEventLogout, false, h.clientID, userID, "", err, meta)
		h.log.Error().Err(err).Int("attempts", report.Attempts).Msg("logout could not clear persisted session")
		return report, err
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, AuditEventLogout, true, h.clientID, userID, "", nil, meta)
	h.log.Info().Str("user_id", userID).Int("attempts", report.Attempts).Msg("logout completed")
	return report, nil
}

// ForceLogout clears both storage scopes outright and resets the in-memory
// session. The session is reset even when the clear fails.
func (h *Holder) ForceLogout(ctx context.Context) error {
	_, err, _ := h.flight.Do("force", func() (interface{}, error) {
		return nil, h.forceLogout(context.WithoutCancel(ctx))
	})
	return err
}

func (h *Holder) forceLogout(ctx context.Context) error {
	h.opMu.Lock()
	defer h.opMu.Unlock()

	e := h.engine

	var userID string
	h.update(func(s *State) {
		if s.User != nil {
			userID = s.User.UserID
		}
		s.Loading = true
	})

	clearErr := flows.RunForceClear(ctx, []storage.Scope{h.local, h.session})

	h.update(func(s *State) {
		s.User = nil
		s.Error = ""
		s.Loading = false
	})

	if clearErr != nil {
		err := fmt.Errorf("%w: %w", ErrForceClearFailed, clearErr)
		e.metricInc(MetricForceLogoutFailure)
		e.emitAudit(ctx, AuditEventForceLogout, false, h.clientID, userID, "", err, nil)
		h.log.Error().Err(err).Msg("force logout could not clear storage")
		return err
	}
	e.metricInc(MetricForceLogout)
	e.emitAudit(ctx, AuditEventForceLogout, true, h.clientID, userID, "", nil, nil)
	h.log.Warn().Str("user_id", userID).Msg("session force-cleared")
	return nil
}

func (h *Holder) update(fn func(*State)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(&h.state)
	h.publish(h.state.clone())
}

func (h *Holder) publish(s State) {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	for _, ch := range h.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func (s State) clone() State {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}
