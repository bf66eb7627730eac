// Package stream carries progress events from one producer to one consumer.
package stream

import (
	"context"
	"sync"

	"github.com/jonathan/resume-tailor/internal/types"
)

const defaultBuffer = 16

// Stream is a single-writer event channel. The producer calls Emit and then
// Close; the consumer calls Drain. If the consumer goes away it calls Detach
// and every later Emit becomes a no-op.
type Stream struct {
	events   chan types.ProgressEvent
	finished chan struct{}
	detached chan struct{}

	mu       sync.Mutex
	closed   bool
	terminal bool

	closeOnce  sync.Once
	detachOnce sync.Once
}

// New creates a Stream with a small buffer.
func New() *Stream {
	return &Stream{
		events:   make(chan types.ProgressEvent, defaultBuffer),
		finished: make(chan struct{}),
		detached: make(chan struct{}),
	}
}

// Emit sends ev to the consumer. It returns false, without sending, once the
// stream is closed, detached, or has already carried a terminal event.
func (s *Stream) Emit(ev types.ProgressEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.terminal || s.isDetached() {
		return false
	}

	select {
	case s.events <- ev:
	case <-s.detached:
		return false
	}

	if ev.Terminal() {
		s.terminal = true
	}
	return true
}

// Close marks the end of production. Safe to call more than once.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.finished)
	})
}

// Detach records that the consumer is gone. Safe to call more than once.
func (s *Stream) Detach() {
	s.detachOnce.Do(func() { close(s.detached) })
}

// Detached is closed once the consumer has detached.
func (s *Stream) Detached() <-chan struct{} {
	return s.detached
}

func (s *Stream) isDetached() bool {
	select {
	case <-s.detached:
		return true
	default:
		return false
	}
}

// Drain delivers events to write in order until the producer closes the
// stream. A write error or ctx cancellation detaches the stream and is returned.
func (s *Stream) Drain(ctx context.Context, write func(types.ProgressEvent) error) error {
	for {
		select {
		case ev := <-s.events:
			if err := write(ev); err != nil {
				s.Detach()
				return err
			}
		case <-s.finished:
			return s.drainBuffered(write)
		case <-ctx.Done():
			s.Detach()
			return ctx.Err()
		}
	}
}

// drainBuffered flushes what was emitted before Close.
func (s *Stream) drainBuffered(write func(types.ProgressEvent) error) error {
	for {
		select {
		case ev := <-s.events:
			if err := write(ev); err != nil {
				s.Detach()
				return err
			}
		default:
			return nil
		}
	}
}

// Collect drains the stream into a slice. Intended for CLI use and tests.
func (s *Stream) Collect(ctx context.Context) ([]types.ProgressEvent, error) {
	var out []types.ProgressEvent
	err := s.Drain(ctx, func(ev types.ProgressEvent) error {
		out = append(out, ev)
		return nil
	})
	return out, err
}
