package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
)

func TestStream_DeliversInOrder(t *testing.T) {
	s := New()
	go func() {
		defer s.Close()
		s.Emit(types.PhaseEvent("loading_profile", 10))
		s.Emit(types.ThoughtEvent("hmm", "tailoring", 50))
		s.Emit(types.CompleteEvent(&types.TailoredResume{}, nil))
	}()

	events, err := s.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, types.EventPhase, events[0].Type)
	assert.Equal(t, types.EventThought, events[1].Type)
	assert.Equal(t, types.EventComplete, events[2].Type)
}

func TestStream_DropsAfterTerminal(t *testing.T) {
	s := New()
	assert.True(t, s.Emit(types.ErrorEvent("boom", "")))
	assert.False(t, s.Emit(types.PhaseEvent("late", 50)))
	assert.False(t, s.Emit(types.CompleteEvent(nil, nil)))
	s.Close()

	events, err := s.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, types.EventError, events[0].Type)
}

func TestStream_EmitAfterCloseIsNoop(t *testing.T) {
	s := New()
	s.Close()
	s.Close()
	assert.False(t, s.Emit(types.PhaseEvent("x", 1)))
}

func TestStream_DetachUnblocksProducer(t *testing.T) {
	s := New()
	// Fill the buffer so the next Emit would block.
	for i := 0; i < defaultBuffer; i++ {
		require.True(t, s.Emit(types.ThoughtEvent("t", "tailoring", 41)))
	}

	result := make(chan bool)
	go func() { result <- s.Emit(types.ThoughtEvent("blocked", "tailoring", 42)) }()

	time.Sleep(10 * time.Millisecond)
	s.Detach()
	s.Detach()

	select {
	case ok := <-result:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Emit stayed blocked after Detach")
	}
	assert.False(t, s.Emit(types.PhaseEvent("after", 90)))
}

func TestStream_WriteErrorDetaches(t *testing.T) {
	s := New()
	s.Emit(types.PhaseEvent("loading_profile", 10))

	writeErr := errors.New("client gone")
	err := s.Drain(context.Background(), func(types.ProgressEvent) error { return writeErr })
	assert.ErrorIs(t, err, writeErr)

	select {
	case <-s.Detached():
	default:
		t.Fatal("stream should be detached after a write error")
	}
	assert.False(t, s.Emit(types.PhaseEvent("researching", 25)))
}

func TestStream_ContextCancelDetaches(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Drain(ctx, func(types.ProgressEvent) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, s.Emit(types.PhaseEvent("x", 10)))
}
