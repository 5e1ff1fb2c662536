package operations

import (
	"fmt"
	"sync"
	"time"
)

// allowed lists the legal successors of every non-terminal state. FAILED is
// reachable from any of them.
var allowed = map[RunState]RunState{
	StateIdle:       StateFetching,
	StateFetching:   StateFlattening,
	StateFlattening: StateExporting,
	StateExporting:  StateDone,
}

// RunStatus tracks the state machine of one run
type RunStatus struct {
	mu          sync.RWMutex
	current     RunState
	transitions []Transition
	now         func() time.Time
}

// NewRunStatus creates a status in StateIdle
func NewRunStatus() *RunStatus {
	return &RunStatus{current: StateIdle, now: time.Now}
}

// Current returns the current state
func (s *RunStatus) Current() RunState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Advance moves to the next state
func (s *RunStatus) Advance(to RunState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if next, ok := allowed[s.current]; !ok || next != to {
		return fmt.Errorf("invalid run transition %s -> %s", s.current, to)
	}
	s.record(to, nil)
	return nil
}

// Fail moves to StateFailed. It is a no-op once the run is terminal.
func (s *RunStatus) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.IsTerminal() {
		return
	}
	s.record(StateFailed, err)
}

func (s *RunStatus) record(to RunState, err error) {
	t := Transition{From: s.current, To: to, At: s.now()}
	if err != nil {
		t.Error = err.Error()
	}
	s.transitions = append(s.transitions, t)
	s.current = to
}

// Transitions returns a copy of the recorded transitions
func (s *RunStatus) Transitions() []Transition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Transition(nil), s.transitions...)
}

// Entered returns when the run entered state, if it did
func (s *RunStatus) Entered(state RunState) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.transitions {
		if t.To == state {
			return t.At, true
		}
	}
	return time.Time{}, false
}
