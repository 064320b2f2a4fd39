// Package interrupt turns host interrupts into context cancellation.
//
// A [Source] owns a cancellable context. Interrupt cancels it with cause
// [ErrInterrupted]. While a hold is active, interrupts are recorded and
// delivered only when the last hold is released, which lets a caller build
// resources that must not be torn down halfway.
package interrupt

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
)

// ErrInterrupted is the cancellation cause of a delivered interrupt.
var ErrInterrupted = errors.New("interrupt: interrupted")

// Source converts interrupts into cancellation of a single context.
//
// Thread safety: Source is safe for concurrent use.
type Source struct {
	mu        sync.Mutex
	cancel    context.CancelCauseFunc
	holds     int
	pending   bool
	delivered bool
}

// NewSource returns a context derived from parent and the Source that
// cancels it. Cancelling parent cancels the returned context as usual.
func NewSource(parent context.Context) (context.Context, *Source) {
	ctx, cancel := context.WithCancelCause(parent)
	return ctx, &Source{cancel: cancel}
}

// Interrupt delivers an interrupt, or defers it while a hold is active.
// Repeated interrupts are coalesced.
func (s *Source) Interrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.holds > 0 {
		s.pending = true
		return
	}
	s.deliverLocked()
}

// Hold suppresses delivery until the returned release function is called.
// Holds nest; a deferred interrupt is delivered when the last one is
// released. Calling release more than once has no further effect.
func (s *Source) Hold() (release func()) {
	s.mu.Lock()
	s.holds++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(s.release)
	}
}

func (s *Source) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.holds--
	if s.holds == 0 && s.pending {
		s.pending = false
		s.deliverLocked()
	}
}

func (s *Source) deliverLocked() {
	if s.delivered {
		return
	}
	s.delivered = true
	s.cancel(ErrInterrupted)
}

// Held reports whether at least one hold is active.
func (s *Source) Held() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holds > 0
}

// Pending reports whether an interrupt is waiting for a hold to be released.
func (s *Source) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Interrupted reports whether an interrupt has been delivered.
func (s *Source) Interrupted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delivered
}

// Notify routes the given OS signals into Interrupt until stop is called.
// With no signals, os.Interrupt is used.
func (s *Source) Notify(sigs ...os.Signal) (stop func()) {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt}
	}

	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, sigs...)

	go func() {
		for {
			select {
			case <-ch:
				s.Interrupt()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}
