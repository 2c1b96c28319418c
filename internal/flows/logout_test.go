package flows

import (
	"context"
	"errors"
	"testing"

	"github.com/parentsmadrasa/sessionkit/internal/storagetest"
	"github.com/parentsmadrasa/sessionkit/storage"
	"github.com/rs/zerolog"
)

func seedScopes(t *testing.T, faults storagetest.Faults) (*storage.MemoryBackend, *storagetest.Backend, []storage.Scope) {
	t.Helper()
	mem := storage.NewMemoryBackend()
	fb := storagetest.Wrap(mem, storagetest.Faults{})
	scopes := []storage.Scope{
		fb.Scope(storage.ScopeLocal, "c-1"),
		fb.Scope(storage.ScopeSession, "c-1"),
	}
	ctx := context.Background()
	for _, s := range scopes {
		for _, key := range storage.DefaultKeySet().All() {
			if err := s.Write(ctx, key, "v"); err != nil {
				t.Fatalf("seed %s/%s: %v", s.Name(), key, err)
			}
		}
		if err := s.Write(ctx, "preferredLanguage", "ml"); err != nil {
			t.Fatalf("seed unrelated key: %v", err)
		}
	}
	fb.SetFaults(faults)
	return mem, fb, scopes
}

func logoutDeps(scopes []storage.Scope) LogoutDeps {
	return LogoutDeps{
		Scopes:          scopes,
		Keys:            storage.DefaultKeySet().All(),
		MaxAttempts:     3,
		NuclearFallback: true,
		Log:             zerolog.Nop(),
	}
}

func TestRunLogoutRemovesOnlyManagedKeys(t *testing.T) {
	_, _, scopes := seedScopes(t, storagetest.Faults{})
	ctx := context.Background()

	res := RunLogout(ctx, logoutDeps(scopes))
	if res.Failed() || res.Err() != nil || res.Attempts != 1 || res.FallbackUsed {
		t.Fatalf("expected clean single pass, got %+v", res)
	}

	for _, s := range scopes {
		for _, key := range storage.DefaultKeySet().All() {
			if _, ok, _ := s.Read(ctx, key); ok {
				t.Fatalf("expected %s/%s removed", s.Name(), key)
			}
		}
		if v, ok, _ := s.Read(ctx, "preferredLanguage"); !ok || v != "ml" {
			t.Fatalf("unrelated key in %s must survive, got %q ok=%v", s.Name(), v, ok)
		}
	}
}

func TestRunLogoutRetriesUntilRemovalSucceeds(t *testing.T) {
	_, _, scopes := seedScopes(t, storagetest.Faults{
		RemoveFailures: map[string]int{storage.DefaultPrimaryKey: 2},
	})

	var failedAttempts []int
	deps := logoutDeps(scopes)
	deps.Hooks.AttemptFailed = func(attempt int, err error) {
		failedAttempts = append(failedAttempts, attempt)
	}

	res := RunLogout(context.Background(), deps)
	if res.Failed() || res.Attempts != 3 || res.FallbackUsed {
		t.Fatalf("expected success on third attempt without fallback, got %+v", res)
	}
	if len(failedAttempts) != 2 || failedAttempts[0] != 1 || failedAttempts[1] != 2 {
		t.Fatalf("expected attempts 1 and 2 to fail, got %v", failedAttempts)
	}
}

func TestRunLogoutOneKeyFailureDoesNotAbortOthers(t *testing.T) {
	_, _, scopes := seedScopes(t, storagetest.Faults{
		RemoveFailures: map[string]int{storage.KeyAuthToken: -1},
	})
	deps := logoutDeps(scopes)
	deps.NuclearFallback = false

	res := RunLogout(context.Background(), deps)
	if !res.Failed() || res.Attempts != 3 {
		t.Fatalf("expected exhausted retries, got %+v", res)
	}
	for _, s := range scopes {
		if _, ok, _ := s.Read(context.Background(), storage.DefaultPrimaryKey); ok {
			t.Fatalf("primary key in %s should be removed despite authToken failures", s.Name())
		}
		if _, ok, _ := s.Read(context.Background(), storage.KeyAuthToken); !ok {
			t.Fatalf("authToken in %s should still be present", s.Name())
		}
	}
	if !errors.Is(res.Err(), storage.ErrStorage) {
		t.Fatalf("expected storage error, got %v", res.Err())
	}
}

func TestRunLogoutFallsBackToClear(t *testing.T) {
	mem, _, scopes := seedScopes(t, storagetest.Faults{
		RemoveFailures: map[string]int{"*": -1},
	})
	fallbackUsed := false
	deps := logoutDeps(scopes)
	deps.Hooks.FallbackUsed = func() { fallbackUsed = true }

	res := RunLogout(context.Background(), deps)
	if res.Failed() || res.Err() != nil {
		t.Fatalf("fallback clear should rescue the logout, got %+v", res)
	}
	if !res.FallbackUsed || !fallbackUsed || res.RemoveErr == nil {
		t.Fatalf("expected fallback to be used after removal failure, got %+v", res)
	}
	if n := mem.Len(storage.ScopeLocal, "c-1"); n != 0 {
		t.Fatalf("expected local scope empty after clear, got %d keys", n)
	}
}

func TestRunLogoutFallbackFailureIsReported(t *testing.T) {
	_, _, scopes := seedScopes(t, storagetest.Faults{
		RemoveFailures: map[string]int{"*": -1},
		ClearFailures:  -1,
	})
	var fallbackErr error
	deps := logoutDeps(scopes)
	deps.Hooks.FallbackFailed = func(err error) { fallbackErr = err }

	res := RunLogout(context.Background(), deps)
	if !res.Failed() || res.Attempts != 3 || !res.FallbackUsed || res.FallbackErr == nil {
		t.Fatalf("expected failed fallback, got %+v", res)
	}
	if !errors.Is(fallbackErr, storagetest.ErrInjected) {
		t.Fatalf("expected hook to receive injected error, got %v", fallbackErr)
	}
}

func TestRunForceClearAttemptsEveryScope(t *testing.T) {
	mem, fb, scopes := seedScopes(t, storagetest.Faults{ClearFailures: 1})

	err := RunForceClear(context.Background(), scopes)
	if !errors.Is(err, storage.ErrStorage) {
		t.Fatalf("expected first scope failure to surface, got %v", err)
	}
	if fb.Calls("clear") != 2 {
		t.Fatalf("expected both scopes to be cleared, got %d clear calls", fb.Calls("clear"))
	}
	if n := mem.Len(storage.ScopeSession, "c-1"); n != 0 {
		t.Fatalf("session scope should be cleared, got %d keys", n)
	}
}
