package profile

import (
	"errors"
	"fmt"
)

// Phase is a Screen state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseConfirming
	PhaseLoggingOut
	PhaseSuccess
	PhaseFailed
	PhaseForcedOut
)

// ErrInvalidTransition is returned when an action is not allowed in the
// current phase.
var ErrInvalidTransition = errors.New("invalid profile transition")

var phaseNames = [...]string{
	PhaseIdle:       "idle",
	PhaseConfirming: "confirming",
	PhaseLoggingOut: "logging_out",
	PhaseSuccess:    "success",
	PhaseFailed:     "failed",
	PhaseForcedOut:  "forced_out",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Terminal reports whether no further logout action is possible.
func (p Phase) Terminal() bool {
	return p == PhaseSuccess || p == PhaseForcedOut
}

func transitionErr(from Phase, action string) error {
	return fmt.Errorf("%w: %s not allowed while %s", ErrInvalidTransition, action, from)
}
