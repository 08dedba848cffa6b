// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package oneshot

import "runtime"

// New creates a one-shot channel and returns its two endpoints. Send
// may be called at most once on the returned Sender; Recv, TryRecv, or
// Poll deliver that single value at most once to the returned
// Receiver.
//
// Example:
//
//	s, r := oneshot.New[int]()
//	go func() {
//	    s.Send(42)
//	}()
//	v, err := r.Recv()
func New[T any]() (*Sender[T], *Receiver[T]) {
	b := newBlock[T]()
	s := &Sender[T]{b: b, guard: newGuard()}
	r := &Receiver[T]{b: b, guard: newGuard()}
	runtime.SetFinalizer(s, finalizeSender[T])
	runtime.SetFinalizer(r, finalizeReceiver[T])
	return s, r
}
