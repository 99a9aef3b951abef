package ui

import "sync"

// Phase of the submit state machine.
type Phase int

const (
	Idle Phase = iota
	Submitting
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// SubmitState replaces separate loading/error/success flags with one phase.
// Submitting doubles as the busy flag that keeps a second submit from starting.
type SubmitState struct {
	mu      sync.Mutex
	phase   Phase
	message string
}

// Begin moves to Submitting. It returns false when a submission is already outstanding.
func (s *SubmitState) Begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == Submitting {
		return false
	}
	s.phase = Submitting
	s.message = ""
	return true
}

// Succeed records a confirmation message. Only valid while Submitting.
func (s *SubmitState) Succeed(message string) bool {
	return s.finish(Succeeded, message)
}

// Fail records a user-facing failure message. Only valid while Submitting.
func (s *SubmitState) Fail(message string) bool {
	return s.finish(Failed, message)
}

// Dismiss clears a notification and returns to Idle. It does nothing while Submitting.
func (s *SubmitState) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Submitting {
		s.phase = Idle
		s.message = ""
	}
}

// Current returns the phase and its message.
func (s *SubmitState) Current() (Phase, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase, s.message
}

func (s *SubmitState) finish(p Phase, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Submitting {
		return false
	}
	s.phase = p
	s.message = message
	return true
}
