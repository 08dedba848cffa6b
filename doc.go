// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package oneshot provides a single-producer, single-consumer channel
// that transports exactly one value.
//
// Unlike a buffered chan T, a one-shot channel does not allocate a
// ring buffer and does not support sending more than one value. It is
// built directly on a lock-free state machine, making it cheaper than
// a channel of capacity one for the common "fire a single result and
// move on" pattern: spawning a goroutine to compute a value, returning
// a future-like handle from an RPC call, or signaling a one-time
// shutdown.
//
// # Quick Start
//
//	sender, receiver := oneshot.New[Result]()
//
//	go func() {
//	    sender.Send(computeResult())
//	}()
//
//	result, err := receiver.Recv()
//	if err != nil {
//	    // sender disconnected without sending
//	}
//
// # Non-blocking receive
//
//	value, err := receiver.TryRecv()
//	switch {
//	case err == nil:
//	    use(value)
//	case oneshot.IsWouldBlock(err):
//	    // no message yet, sender still alive
//	default:
//	    // sender disconnected
//	}
//
// # Receiving with a deadline
//
//	value, err := receiver.RecvTimeout(5 * time.Second)
//	if errors.Is(err, oneshot.ErrTimeout) {
//	    // gave up waiting
//	}
//
// RecvContext accepts a context.Context directly, for callers that
// already carry one through the call chain:
//
//	value, err := receiver.RecvContext(ctx)
//
// # Polling from an async task
//
// Poll lets an event loop or custom executor drive the receive without
// blocking a goroutine. It follows the same Clone/Wake/WillWake contract
// an async runtime's task waker provides:
//
//	func (t *myTask) poll() {
//	    value, ready, err := t.receiver.Poll(t.waker)
//	    if !ready {
//	        return // t.waker.Wake will be called later
//	    }
//	    if err != nil {
//	        t.fail(err)
//	        return
//	    }
//	    t.succeed(value)
//	}
//
// # Dropping endpoints
//
// A Sender or Receiver that goes out of scope without an explicit Close
// still disconnects the channel: [New] installs a runtime.SetFinalizer
// that runs the same disconnect path Close would, so a leaked endpoint
// does not leave its peer parked forever. Calling Close explicitly is
// still preferred — finalizers run on the garbage collector's schedule,
// not promptly — but it bounds the damage of a forgotten Close in
// long-running programs.
//
//	sender, receiver := oneshot.New[int]()
//	defer sender.Close()  // no-op if Send was already called
//
// # Single-use enforcement
//
// Sender.Send may be used at most once per Sender; Go has no move
// semantics to enforce this at compile time, so the channel detects a
// second call at runtime and panics:
//
//	sender.Send(1)
//	sender.Send(2) // panics: Send called twice on the same Sender
//
// The receiving side has no equivalent guard: TryRecv, Recv, and Poll
// are safe to call repeatedly from a single goroutine at a time — a
// second Recv after a successful receive simply returns
// ErrDisconnected, the same outcome it would return against a sender
// that had disconnected without sending. The channel's state word, not
// a runtime guard, is what limits delivery to exactly one caller; this
// is also what lets RecvRef share that same guarantee across multiple
// concurrent call sites rather than needing its own exemption. Calling
// Recv while another Recv or a Poll is pending on the same Receiver,
// or Poll while a Recv is blocked on it, panics, since only one waiter
// can be installed at a time. A Poll while another Poll is pending
// does not panic; it replaces the installed waker.
//
// # Error Handling
//
// TryRecv, Recv, RecvContext, and RecvTimeout report [ErrEmpty] (an
// alias of [code.hybscloud.com/iox.ErrWouldBlock] for ecosystem
// consistency), [ErrDisconnected], or [ErrTimeout]. Send reports a
// *[SendError] wrapping [ErrDisconnected] so a rejected value is not
// lost:
//
//	if err := sender.Send(value); err != nil {
//	    var se *oneshot.SendError[int]
//	    if errors.As(err, &se) {
//	        log.Printf("receiver gone, dropping %v", se.IntoValue())
//	    }
//	}
//
// # Race Detection
//
// The happens-before relationship between the sender's plain write to
// the shared message field and the receiver's plain read of it is
// established entirely through the state word's acquire/release
// transitions, not through any primitive the race detector tracks
// directly (mutex, channel, WaitGroup). This is the same class of
// false positive that ring-buffer channels built on a bare atomic
// cursor document for their own buffer slices. The stress tests skip
// themselves under -race for this reason (see [RaceEnabled]); a custom
// executor driving Poll from multiple OS threads should be aware of it
// when debugging under -race.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, [code.hybscloud.com/spin] for the brief spin during
// the sender's unparking window, and [code.hybscloud.com/kont] for the
// runtime single-use guard on Send and Close.
package oneshot
