package operations

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStatus_HappyPath(t *testing.T) {
	s := NewRunStatus()
	assert.Equal(t, StateIdle, s.Current())

	for _, next := range []RunState{StateFetching, StateFlattening, StateExporting, StateDone} {
		require.NoError(t, s.Advance(next))
		assert.Equal(t, next, s.Current())
	}

	transitions := s.Transitions()
	require.Len(t, transitions, 4)
	assert.Equal(t, StateIdle, transitions[0].From)
	assert.Equal(t, StateDone, transitions[3].To)
	for i := 1; i < len(transitions); i++ {
		assert.Equal(t, transitions[i-1].To, transitions[i].From)
		assert.False(t, transitions[i].At.Before(transitions[i-1].At))
	}
}

func TestRunStatus_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup []RunState
		to    RunState
	}{
		{"skip fetching", nil, StateFlattening},
		{"idle to done", nil, StateDone},
		{"backwards", []RunState{StateFetching, StateFlattening}, StateFetching},
		{"repeat", []RunState{StateFetching}, StateFetching},
		{"leave done", []RunState{StateFetching, StateFlattening, StateExporting, StateDone}, StateIdle},
		{"advance into failed", nil, StateFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewRunStatus()
			for _, st := range tt.setup {
				require.NoError(t, s.Advance(st))
			}
			before := s.Current()

			err := s.Advance(tt.to)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid run transition")
			assert.Equal(t, before, s.Current())
		})
	}
}

func TestRunStatus_Fail(t *testing.T) {
	for _, from := range []RunState{StateIdle, StateFetching, StateFlattening, StateExporting} {
		t.Run(string(from), func(t *testing.T) {
			s := NewRunStatus()
			for _, st := range []RunState{StateFetching, StateFlattening, StateExporting} {
				if s.Current() == from {
					break
				}
				require.NoError(t, s.Advance(st))
			}

			s.Fail(errors.New("boom"))
			assert.Equal(t, StateFailed, s.Current())

			last := s.Transitions()[len(s.Transitions())-1]
			assert.Equal(t, from, last.From)
			assert.Equal(t, StateFailed, last.To)
			assert.Equal(t, "boom", last.Error)
		})
	}
}

func TestRunStatus_FailIsNoOpOnceTerminal(t *testing.T) {
	s := NewRunStatus()
	s.Fail(errors.New("first"))
	s.Fail(errors.New("second"))
	assert.Len(t, s.Transitions(), 1)
	assert.Error(t, s.Advance(StateFetching))

	done := NewRunStatus()
	for _, st := range []RunState{StateFetching, StateFlattening, StateExporting, StateDone} {
		require.NoError(t, done.Advance(st))
	}
	done.Fail(errors.New("late"))
	assert.Equal(t, StateDone, done.Current())
}

func TestRunStatus_Entered(t *testing.T) {
	s := NewRunStatus()
	require.NoError(t, s.Advance(StateFetching))

	at, ok := s.Entered(StateFetching)
	assert.True(t, ok)
	assert.False(t, at.IsZero())

	_, ok = s.Entered(StateExporting)
	assert.False(t, ok)
}

func TestRunState_IsTerminal(t *testing.T) {
	assert.True(t, StateDone.IsTerminal())
	assert.True(t, StateFailed.IsTerminal())
	for _, s := range []RunState{StateIdle, StateFetching, StateFlattening, StateExporting} {
		assert.False(t, s.IsTerminal(), s)
	}
}
