// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package oneshot

import (
	"runtime"

	"code.hybscloud.com/kont"
)

// Sender is the producer side of a one-shot channel. It is created by
// [New] and is consumed by its first call to Send or Close: Go has no
// move semantics, so that single-use contract is enforced at runtime
// via [kont.Affine] rather than at compile time.
type Sender[T any] struct {
	b     *block[T]
	guard *kont.Affine[struct{}, struct{}]
}

func newGuard() *kont.Affine[struct{}, struct{}] {
	return kont.Once(func(struct{}) struct{} { return struct{}{} })
}

// claim reports whether this is the first call to Send, Close, or the
// finalizer for this endpoint.
func (s *Sender[T]) claim() bool {
	_, ok := s.guard.TryResume(struct{}{})
	return ok
}

// Send delivers value to the channel's receiver. It returns nil on
// success, or a *SendError[T] wrapping ErrDisconnected if the receiver
// was already dropped — the value is recoverable from the error via
// IntoValue.
//
// Send must be called at most once per Sender; a second call panics.
// Use Close to release a Sender without sending.
func (s *Sender[T]) Send(value T) error {
	if !s.claim() {
		panic("oneshot: Send called twice on the same Sender")
	}
	runtime.SetFinalizer(s, nil)
	return s.send(value)
}

// Close releases the Sender without sending a value, disconnecting the
// channel so a blocked or polling Receiver wakes with ErrDisconnected.
// Close after Send, or a second Close, is a no-op.
func (s *Sender[T]) Close() {
	if !s.claim() {
		return
	}
	runtime.SetFinalizer(s, nil)
	s.disconnect()
}

func (s *Sender[T]) send(value T) error {
	b := s.b
	for {
		cur := b.loadState()
		switch cur {
		case stateEmpty:
			b.message = value
			if b.casState(stateEmpty, stateMessage) {
				return nil
			}
			// receiver started waiting concurrently; retry with the
			// new state.
		case stateReceivingThread, stateReceivingAsync:
			if !b.casState(cur, stateUnparking) {
				continue
			}
			b.message = value
			w := b.waiter
			b.waiter = waiterDescriptor{}
			b.storeState(stateMessage)
			w.wake()
			return nil
		case stateDisconnected:
			return &SendError[T]{Value: value}
		default:
			// stateMessage, stateUnparking: unreachable for a sender
			// that only ever calls send once.
			panic("oneshot: send observed an invalid state: " + cur.String())
		}
	}
}

// disconnect publishes stateDisconnected without sending a value,
// waking a waiting receiver if one is installed. Guarded by
// sendClosed so it runs at most once even if both Close and the
// finalizer race (they cannot, since claim already serializes them,
// but the block's own flag keeps the invariant local to state.go too).
func (s *Sender[T]) disconnect() {
	b := s.b
	if !b.sendClosed.CompareAndSwapAcqRel(false, true) {
		return
	}
	for {
		cur := b.loadState()
		switch cur {
		case stateEmpty:
			if b.casState(stateEmpty, stateDisconnected) {
				return
			}
		case stateReceivingThread, stateReceivingAsync:
			if !b.casState(cur, stateUnparking) {
				continue
			}
			w := b.waiter
			b.waiter = waiterDescriptor{}
			b.storeState(stateDisconnected)
			w.wake()
			return
		case stateDisconnected, stateMessage:
			return
		default:
			panic("oneshot: disconnect observed an invalid state: " + cur.String())
		}
	}
}

// IsClosed reports whether the receiver has already been dropped,
// making any future Send fail. It is a non-destructive, racy
// snapshot: the receiver may disconnect immediately after this
// returns false.
func (s *Sender[T]) IsClosed() bool {
	return s.b.loadState() == stateDisconnected
}

func finalizeSender[T any](s *Sender[T]) {
	if !s.claim() {
		return
	}
	s.disconnect()
}
