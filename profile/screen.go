package profile

import (
	"context"
	"sync"
	"time"

	"github.com/parentsmadrasa/sessionkit"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

// Session is the part of [sessionkit.Holder] the screen drives.
type Session interface {
	State() sessionkit.State
	Logout(ctx context.Context) (sessionkit.LogoutReport, error)
	ForceLogout(ctx context.Context) error
}

// Navigator moves the client to route.
type Navigator interface {
	Navigate(ctx context.Context, route string) error
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(ctx context.Context, route string) error

func (f NavigatorFunc) Navigate(ctx context.Context, route string) error { return f(ctx, route) }

// Options configures a Screen.
type Options struct {
	// NavigationDelay is how long the success acknowledgment stays visible.
	NavigationDelay time.Duration
	// SignInRoute is where terminal phases navigate.
	SignInRoute string
	Language    language.Tag
	Log         zerolog.Logger
}

// OptionsFromConfig takes the navigation settings from cfg.
func OptionsFromConfig(cfg sessionkit.Config) Options {
	return Options{
		NavigationDelay: cfg.Logout.NavigationDelay,
		SignInRoute:     cfg.Logout.SignInRoute,
		Language:        language.English,
		Log:             zerolog.Nop(),
	}
}

// Screen is the Profile screen's logout state machine. Methods are safe for
// concurrent use; actions that race a running logout get ErrInvalidTransition.
type Screen struct {
	session Session
	nav     Navigator
	opts    Options

	mu          sync.Mutex
	phase       Phase
	lang        language.Tag
	lastErr     error
	report      sessionkit.LogoutReport
	navigatedTo string
}

// NewScreen binds a screen to session. nav may be nil, in which case the
// navigation target is only recorded on the view.
func NewScreen(session Session, nav Navigator, opts Options) *Screen {
	if opts.SignInRoute == "" {
		opts.SignInRoute = "/signin"
	}
	if opts.Language == (language.Tag{}) {
		opts.Language = language.English
	}
	return &Screen{
		session: session,
		nav:     nav,
		opts:    opts,
		lang:    opts.Language,
	}
}

// Phase returns the current phase.
func (s *Screen) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// SetLanguage switches the language used by View.
func (s *Screen) SetLanguage(tag language.Tag) {
	s.mu.Lock()
	s.lang = tag
	s.mu.Unlock()
}

// RequestLogout opens the confirmation dialog.
func (s *Screen) RequestLogout() error {
	return s.move(PhaseIdle, PhaseConfirming, "request logout")
}

// Cancel closes the confirmation dialog.
func (s *Screen) Cancel() error {
	return s.move(PhaseConfirming, PhaseIdle, "cancel")
}

// Confirm runs the logout. On success it waits NavigationDelay and navigates
// to the sign-in route; a cancelled ctx cuts the wait short. On failure the
// screen moves to Failed and the error is returned.
func (s *Screen) Confirm(ctx context.Context) error {
	if err := s.move(PhaseConfirming, PhaseLoggingOut, "confirm"); err != nil {
		return err
	}
	return s.runLogout(ctx)
}

// Retry reruns the logout from Failed.
func (s *Screen) Retry(ctx context.Context) error {
	if err := s.move(PhaseFailed, PhaseLoggingOut, "retry"); err != nil {
		return err
	}
	return s.runLogout(ctx)
}

// ForceLogout clears both storage scopes and navigates away whether or not the
// clear succeeded. The returned error reports a failed clear or navigation.
func (s *Screen) ForceLogout(ctx context.Context) error {
	if err := s.move(PhaseFailed, PhaseForcedOut, "force logout"); err != nil {
		return err
	}

	err := s.session.ForceLogout(ctx)
	if err != nil {
		s.opts.Log.Error().Err(err).Msg("force logout left storage behind")
	}
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	if navErr := s.navigate(ctx); navErr != nil {
		return navErr
	}
	return err
}

// Reset returns a terminal screen to Idle, for example after a new sign-in.
func (s *Screen) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseLoggingOut {
		return
	}
	s.phase = PhaseIdle
	s.lastErr = nil
	s.navigatedTo = ""
	s.report = sessionkit.LogoutReport{}
}

func (s *Screen) runLogout(ctx context.Context) error {
	report, err := s.session.Logout(ctx)

	s.mu.Lock()
	s.report = report
	s.lastErr = err
	if err != nil {
		s.phase = PhaseFailed
	} else {
		s.phase = PhaseSuccess
	}
	s.mu.Unlock()

	if err != nil {
		s.opts.Log.Warn().Err(err).Int("attempts", report.Attempts).Msg("logout failed; offering retry")
		return err
	}

	if s.opts.NavigationDelay > 0 {
		timer := time.NewTimer(s.opts.NavigationDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}
	return s.navigate(ctx)
}

func (s *Screen) navigate(ctx context.Context) error {
	route := s.opts.SignInRoute
	s.mu.Lock()
	s.navigatedTo = route
	s.mu.Unlock()

	if s.nav == nil {
		return nil
	}
	return s.nav.Navigate(context.WithoutCancel(ctx), route)
}

func (s *Screen) move(from, to Phase, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != from {
		return transitionErr(s.phase, action)
	}
	s.phase = to
	if to == PhaseLoggingOut || to == PhaseConfirming {
		s.lastErr = nil
	}
	return nil
}
