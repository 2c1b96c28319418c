package flows

// Hooks receives flow progress for metrics. Nil fields are skipped.
type Hooks struct {
	RemoveFailed   func(scope, key string, err error)
	AttemptFailed  func(attempt int, err error)
	FallbackUsed   func()
	FallbackFailed func(err error)
}

func (h Hooks) removeFailed(scope, key string, err error) {
	if h.RemoveFailed != nil {
		h.RemoveFailed(scope, key, err)
	}
}

func (h Hooks) attemptFailed(attempt int, err error) {
	if h.AttemptFailed != nil {
		h.AttemptFailed(attempt, err)
	}
}

func (h Hooks) fallbackUsed() {
	if h.FallbackUsed != nil {
		h.FallbackUsed()
	}
}

func (h Hooks) fallbackFailed(err error) {
	if h.FallbackFailed != nil {
		h.FallbackFailed(err)
	}
}
