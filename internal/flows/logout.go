package flows

import (
	"context"
	"errors"
	"time"

	"github.com/parentsmadrasa/sessionkit/internal/retry"
	"github.com/parentsmadrasa/sessionkit/storage"
	"github.com/rs/zerolog"
)

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Scopes          []storage.Scope
	Keys            []string
	MaxAttempts     int
	RetryDelay      time.Duration
	NuclearFallback bool
	Log             zerolog.Logger
	Hooks           Hooks
}

// LogoutResult describes what a logout run did to storage.
type LogoutResult struct {
	Attempts     int
	RemoveErr    error
	FallbackUsed bool
	FallbackErr  error
}

// Failed reports whether persisted session data may still be present: the
// targeted removal never fully succeeded and no fallback clear rescued it.
func (r LogoutResult) Failed() bool {
	if r.RemoveErr == nil {
		return false
	}
	return !r.FallbackUsed || r.FallbackErr != nil
}

// Err returns the failure to surface, or nil.
func (r LogoutResult) Err() error {
	if !r.Failed() {
		return nil
	}
	return errors.Join(r.RemoveErr, r.FallbackErr)
}

// RunLogout removes every managed key from every scope, retrying the whole
// pass up to MaxAttempts times, then clears the scopes outright if removal
// still fails and NuclearFallback is set.
func RunLogout(ctx context.Context, deps LogoutDeps) LogoutResult {
	res := retry.Attempt(ctx, retry.Policy{
		MaxAttempts: deps.MaxAttempts,
		Delay:       deps.RetryDelay,
	}, func(attempt int) error {
		err := removePass(ctx, deps)
		if err != nil {
			deps.Log.Warn().Err(err).Int("attempt", attempt).Msg("session key removal failed")
			deps.Hooks.attemptFailed(attempt, err)
		}
		return err
	})

	out := LogoutResult{Attempts: res.Attempts, RemoveErr: res.Err}
	if res.OK() {
		return out
	}

	deps.Log.Error().Err(res.Err).Int("attempts", res.Attempts).Msg("session key removal exhausted retries")
	if !deps.NuclearFallback {
		return out
	}

	out.FallbackUsed = true
	deps.Hooks.fallbackUsed()
	deps.Log.Warn().Int("scopes", len(deps.Scopes)).Msg("clearing session storage scopes")
	if err := clearAll(ctx, deps.Scopes); err != nil {
		out.FallbackErr = err
		deps.Hooks.fallbackFailed(err)
		deps.Log.Error().Err(err).Msg("session storage clear failed")
	}
	return out
}

// RunForceClear clears every scope without attempting targeted removal.
// All scopes are attempted even when one fails.
func RunForceClear(ctx context.Context, scopes []storage.Scope) error {
	return clearAll(ctx, scopes)
}

func removePass(ctx context.Context, deps LogoutDeps) error {
	var errs []error
	for _, scope := range deps.Scopes {
		for _, key := range deps.Keys {
			if err := scope.Remove(ctx, key); err != nil {
				deps.Hooks.removeFailed(scope.Name(), key, err)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func clearAll(ctx context.Context, scopes []storage.Scope) error {
	var errs []error
	for _, scope := range scopes {
		if err := scope.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
