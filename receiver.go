// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package oneshot

import (
	"context"
	"errors"
	"runtime"
	"time"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/spin"
)

// Receiver is the consumer side of a one-shot channel, created by
// [New]. The single message is delivered to at most one of TryRecv,
// Recv, RecvContext, RecvTimeout, RecvRef, or Poll — whichever first
// observes the sender's stateMessage transition.
type Receiver[T any] struct {
	b     *block[T]
	guard *kont.Affine[struct{}, struct{}]
}

func (r *Receiver[T]) claim() bool {
	_, ok := r.guard.TryResume(struct{}{})
	return ok
}

// TryRecv returns the message immediately if it has already arrived,
// without blocking. It returns ErrEmpty if the sender is still alive
// and has not sent, or ErrDisconnected if the sender is gone (dropped
// or already disconnected) without sending.
func (r *Receiver[T]) TryRecv() (T, error) {
	if v, ok := r.b.consumeMessage(); ok {
		return v, nil
	}
	if r.b.loadState() == stateDisconnected {
		var zero T
		return zero, ErrDisconnected
	}
	var zero T
	return zero, ErrEmpty
}

// RecvRef behaves exactly like TryRecv. It exists under its own name
// to mirror the borrowing, non-consuming receive of the channel this
// package is modeled on: unlike Recv, it never panics on a concurrent
// caller and is always safe to retry from multiple goroutines sharing
// the same *Receiver, since delivery is still arbitrated by the
// channel's state word rather than by RecvRef itself.
func (r *Receiver[T]) RecvRef() (T, error) {
	return r.TryRecv()
}

// Recv blocks the calling goroutine until a message arrives or the
// sender disconnects. It is equivalent to RecvContext with a
// background context.
func (r *Receiver[T]) Recv() (T, error) {
	return r.RecvContext(context.Background())
}

// RecvTimeout blocks until a message arrives, the sender disconnects,
// or d elapses, whichever happens first. On elapsing it returns
// ErrTimeout.
func (r *Receiver[T]) RecvTimeout(d time.Duration) (T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return r.RecvContext(ctx)
}

// RecvContext blocks until a message arrives, the sender disconnects,
// or ctx is done, whichever happens first. On ctx expiring via
// deadline it returns ErrTimeout; on explicit cancellation it returns
// ctx.Err() unwrapped.
func (r *Receiver[T]) RecvContext(ctx context.Context) (T, error) {
	b := r.b
	sw := spin.Wait{}
	for {
		cur := b.loadState()
		switch cur {
		case stateMessage:
			if v, ok := b.consumeMessage(); ok {
				return v, nil
			}
			continue
		case stateDisconnected:
			var zero T
			return zero, ErrDisconnected
		case stateEmpty:
			p := newParker()
			b.waiter = waiterDescriptor{parker: p}
			if !b.casState(stateEmpty, stateReceivingThread) {
				b.waiter = waiterDescriptor{}
				continue
			}
			err := p.park(ctx, time.Time{})
			if err == nil {
				// Woken: state is now stateMessage or
				// stateDisconnected; loop around and read it.
				continue
			}
			if b.casState(stateReceivingThread, stateEmpty) {
				b.waiter = waiterDescriptor{}
				var zero T
				return zero, classifyParkErr(err)
			}
			// The sender had already started claiming our waiter
			// (stateUnparking) when the deadline fired. Spin until it
			// finishes rather than reporting a timeout for a message
			// that is already in flight.
			for b.loadState() == stateUnparking {
				sw.Once()
			}
			continue
		case stateReceivingThread, stateReceivingAsync:
			panic("oneshot: concurrent Recv/RecvContext/Poll calls on the same Receiver")
		case stateUnparking:
			sw.Once()
		default:
			panic("oneshot: recv observed an invalid state: " + cur.String())
		}
	}
}

func classifyParkErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}

// Poll implements a non-blocking, waker-driven receive for use inside
// an async task. It returns (value, true, nil) once a message has
// arrived, (zero, true, ErrDisconnected) once the sender is gone
// without sending, or (zero, false, nil) if neither has happened yet
// — in the last case the installed waker is woken once, from the
// goroutine that publishes the outcome, when it becomes available. A
// later Poll whose waker the installed one does not WillWake replaces
// it, and then only the replacement is woken.
func (r *Receiver[T]) Poll(w Waker) (T, bool, error) {
	b := r.b
	sw := spin.Wait{}
	for {
		cur := b.loadState()
		switch cur {
		case stateMessage:
			if v, ok := b.consumeMessage(); ok {
				return v, true, nil
			}
			continue
		case stateDisconnected:
			var zero T
			return zero, true, ErrDisconnected
		case stateEmpty:
			b.waiter = waiterDescriptor{waker: w.Clone()}
			if b.casState(stateEmpty, stateReceivingAsync) {
				var zero T
				return zero, false, nil
			}
			b.waiter = waiterDescriptor{}
		case stateReceivingAsync:
			// Rewriting an already-installed waker races the sender,
			// which may CAS stateReceivingAsync -> stateUnparking and
			// read b.waiter concurrently with any plain write here.
			// Eject to stateEmpty first to get exclusive access to
			// b.waiter, the same way Send claims stateUnparking
			// before touching it, then CAS back.
			if !b.casState(stateReceivingAsync, stateEmpty) {
				continue
			}
			if old := b.waiter.waker; old == nil || !old.WillWake(w) {
				b.waiter = waiterDescriptor{waker: w.Clone()}
			}
			if b.casState(stateEmpty, stateReceivingAsync) {
				var zero T
				return zero, false, nil
			}
			// The sender claimed stateEmpty as a plain send while we
			// held it for the swap; the outcome is now published as
			// stateMessage or stateDisconnected, so loop around and
			// read it directly instead of waiting for a wake that
			// will never come.
			continue
		case stateReceivingThread:
			panic("oneshot: Poll called while a thread is blocked in Recv on the same Receiver")
		case stateUnparking:
			sw.Once()
		default:
			panic("oneshot: poll observed an invalid state: " + cur.String())
		}
	}
}

// IsEmpty reports whether no message has arrived yet and the sender
// has not disconnected. Racy: the answer may be stale immediately.
func (r *Receiver[T]) IsEmpty() bool {
	switch r.b.loadState() {
	case stateEmpty, stateReceivingThread, stateReceivingAsync, stateUnparking:
		return true
	}
	return false
}

// HasMessage reports whether a message is waiting to be received.
// Racy: the answer may be stale immediately.
func (r *Receiver[T]) HasMessage() bool {
	return r.b.loadState() == stateMessage
}

// IsClosed reports whether the channel has reached its terminal
// disconnected state: the sender was dropped without sending, the
// message has already been received, or this Receiver was closed. It
// reports false while a sent message is still waiting. Racy: the
// answer may be stale immediately.
func (r *Receiver[T]) IsClosed() bool {
	return r.b.loadState() == stateDisconnected
}

// Close releases the Receiver, disconnecting the channel so a future
// Send fails with a *SendError. A message already received is
// unaffected; a message already sent but not yet received is
// dropped. Close after a successful receive, or a second Close, is a
// no-op.
func (r *Receiver[T]) Close() {
	if !r.claim() {
		return
	}
	runtime.SetFinalizer(r, nil)
	r.disconnect()
}

func (r *Receiver[T]) disconnect() {
	b := r.b
	if !b.recvClosed.CompareAndSwapAcqRel(false, true) {
		return
	}
	sw := spin.Wait{}
	for {
		cur := b.loadState()
		switch cur {
		case stateEmpty:
			if b.casState(stateEmpty, stateDisconnected) {
				return
			}
		case stateMessage:
			if b.casState(stateMessage, stateDisconnected) {
				var zero T
				b.message = zero
				return
			}
		case stateReceivingThread, stateReceivingAsync:
			// Another goroutine may be blocked in Recv/Poll on this
			// same Receiver (e.g. a cancellation path that calls
			// Close to unblock it); wake it rather than dropping its
			// waiter silently.
			if b.casState(cur, stateDisconnected) {
				w := b.waiter
				b.waiter = waiterDescriptor{}
				w.wake()
				return
			}
		case stateUnparking:
			sw.Once()
		case stateDisconnected:
			return
		}
	}
}

func finalizeReceiver[T any](r *Receiver[T]) {
	if !r.claim() {
		return
	}
	r.disconnect()
}
