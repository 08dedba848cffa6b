// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package oneshot

import (
	"context"
	"reflect"
	"time"
)

// Waker lets a [Receiver] poll for a message without blocking a goroutine.
// It mirrors the task-waker contract an async executor provides: Poll
// installs a Waker and returns immediately; the channel calls Wake
// once on the most recently installed Waker, after a message or
// disconnect becomes available.
//
// Implementations must be safe to call from any goroutine. Wake may be
// called at most once per Poll call that returned (zero, false, nil).
type Waker interface {
	// Clone returns a Waker that wakes the same task. The channel
	// retains the clone, not the original, for as long as it needs
	// to signal readiness.
	Clone() Waker

	// Wake signals the task that it should poll again.
	Wake()

	// WillWake reports whether calling Wake on other would wake the
	// same task as calling Wake on the receiver. This is an
	// optimization hint for avoiding redundant installs, not a
	// correctness requirement: returning false when unsure is always
	// safe.
	WillWake(other Waker) bool
}

// FuncWaker adapts a plain function into a [Waker]. WillWake compares
// the underlying function pointers on a best-effort basis, matching
// how closures can only be compared by identity in Go.
type FuncWaker func()

func (f FuncWaker) Clone() Waker { return f }

func (f FuncWaker) Wake() { f() }

func (f FuncWaker) WillWake(other Waker) bool {
	o, ok := other.(FuncWaker)
	if !ok {
		return false
	}
	return reflect.ValueOf(f).Pointer() == reflect.ValueOf(o).Pointer()
}

// ChanWaker wakes by sending (non-blocking) on a channel, for callers
// that bridge a [Receiver] into a select-based event loop instead of
// an async task runtime.
type ChanWaker chan struct{}

// NewChanWaker creates a ChanWaker. Ready is signaled by a single
// non-blocking send; the caller's select should read from the
// returned channel.
func NewChanWaker() ChanWaker {
	return make(ChanWaker, 1)
}

func (c ChanWaker) Clone() Waker { return c }

func (c ChanWaker) Wake() {
	select {
	case c <- struct{}{}:
	default:
	}
}

func (c ChanWaker) WillWake(other Waker) bool {
	o, ok := other.(ChanWaker)
	if !ok {
		return false
	}
	return c == o
}

// waiterDescriptor is the value published in block.waiter. Exactly one
// of parker or waker is non-nil at a time.
type waiterDescriptor struct {
	parker *parker
	waker  Waker
}

func (w waiterDescriptor) wake() {
	switch {
	case w.parker != nil:
		w.parker.unpark()
	case w.waker != nil:
		w.waker.Wake()
	}
}

// parker is the thread-handle waiter variant: the concrete stand-in
// for the spec's platform park/unpark collaborator. It is a single-use,
// 1-buffered signal with deadline and context support.
type parker struct {
	signal chan struct{}
}

func newParker() *parker {
	return &parker{signal: make(chan struct{}, 1)}
}

// unpark wakes a goroutine blocked in park. Safe to call at most once;
// the channel is 1-buffered so a racing unpark before park is still
// observed.
func (p *parker) unpark() {
	select {
	case p.signal <- struct{}{}:
	default:
	}
}

// park blocks until unpark is called, ctx is done, or deadline elapses
// (zero deadline means no timeout). Returns nil on wake, ctx.Err() or
// context.DeadlineExceeded on timeout/cancellation.
func (p *parker) park(ctx context.Context, deadline time.Time) error {
	if !deadline.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}
	select {
	case <-p.signal:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
