package profile

import (
	"github.com/parentsmadrasa/sessionkit"
)

// Action ids.
const (
	ActionLogout      = "logout"
	ActionConfirm     = "confirm"
	ActionCancel      = "cancel"
	ActionRetry       = "retry"
	ActionForceLogout = "force_logout"
)

// Action is a control the screen currently offers.
type Action struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	AccessibleName string `json:"accessible_name,omitempty"`
}

// View is the rendered screen.
type View struct {
	Phase      Phase                    `json:"phase"`
	Loading    bool                     `json:"loading"`
	Title      string                   `json:"title"`
	Message    string                   `json:"message,omitempty"`
	Error      string                   `json:"error,omitempty"`
	User       *sessionkit.Record       `json:"user,omitempty"`
	Actions    []Action                 `json:"actions"`
	Report     *sessionkit.LogoutReport `json:"report,omitempty"`
	NavigateTo string                   `json:"navigate_to,omitempty"`
}

// View renders the current phase in the screen's language.
func (s *Screen) View() View {
	state := s.session.State()

	s.mu.Lock()
	phase, lang, lastErr, report, target := s.phase, s.lang, s.lastErr, s.report, s.navigatedTo
	s.mu.Unlock()

	p := newPrinter(lang)
	v := View{
		Phase:      phase,
		Loading:    phase == PhaseLoggingOut || state.Loading,
		Title:      p.Sprintf(msgTitle),
		User:       state.User,
		Actions:    []Action{},
		NavigateTo: target,
	}

	switch phase {
	case PhaseIdle:
		v.Actions = append(v.Actions, Action{
			ID:             ActionLogout,
			Label:          p.Sprintf(msgLogout),
			AccessibleName: p.Sprintf(msgLogoutA11y),
		})
	case PhaseConfirming:
		v.Message = p.Sprintf(msgConfirmPrompt)
		v.Actions = append(v.Actions,
			Action{ID: ActionConfirm, Label: p.Sprintf(msgConfirm)},
			Action{ID: ActionCancel, Label: p.Sprintf(msgCancel)},
		)
	case PhaseLoggingOut:
		v.Message = p.Sprintf(msgLoggingOut)
	case PhaseSuccess:
		v.Message = p.Sprintf(msgLoggedOut)
		v.Report = &report
	case PhaseFailed:
		v.Error = p.Sprintf(errorKey(lastErr))
		v.Report = &report
		v.Actions = append(v.Actions,
			Action{ID: ActionRetry, Label: p.Sprintf(msgRetry)},
			Action{ID: ActionForceLogout, Label: p.Sprintf(msgForceLogout)},
		)
	case PhaseForcedOut:
		v.Message = p.Sprintf(msgForcedOut)
		if lastErr != nil {
			v.Error = p.Sprintf(errorKey(lastErr))
		}
	}
	return v
}

func errorKey(err error) string {
	if sessionkit.UserMessage(err) == sessionkit.ClearFailedMessage {
		return msgClearFailed
	}
	return msgGenericFailure
}
