// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package oneshot

import (
	"code.hybscloud.com/atomix"
)

// channelState is the state word of the shared state block. Only the
// six values below are ever stored in it.
type channelState uint32

const (
	// stateEmpty: neither side has acted. No message, no waiter.
	stateEmpty channelState = iota

	// stateMessage: a value is stored in block.message, waiting to be
	// taken by the receiver.
	stateMessage

	// stateReceivingThread: the receiver is blocked in Recv/RecvContext
	// and has published a *parker in block.waiter for the sender to
	// unpark.
	stateReceivingThread

	// stateReceivingAsync: the receiver is polling and has published a
	// Waker in block.waiter for the sender to wake.
	stateReceivingAsync

	// stateUnparking: transient. The sender has claimed exclusive
	// ownership of block.waiter in order to read and invoke it, and is
	// about to publish stateMessage or stateDisconnected. A receiver
	// that observes this state spins briefly rather than giving up,
	// since it is guaranteed to be short-lived.
	stateUnparking

	// stateDisconnected: terminal. Either side is gone without (or
	// after) delivering the single message. Absorbing: once set, it is
	// never left.
	stateDisconnected
)

func (s channelState) String() string {
	switch s {
	case stateEmpty:
		return "empty"
	case stateMessage:
		return "message"
	case stateReceivingThread:
		return "receiving(thread)"
	case stateReceivingAsync:
		return "receiving(async)"
	case stateUnparking:
		return "unparking"
	case stateDisconnected:
		return "disconnected"
	default:
		return "invalid"
	}
}

// block is the shared state block referenced by both endpoints of a
// channel. It is never freed explicitly; the garbage collector retains
// it for as long as either endpoint (or a waiter it has published)
// holds a reference. See DESIGN.md for why this is the correct Go
// realization of the spec's allocation-ownership rules.
type block[T any] struct {
	state atomix.Uint32

	// message holds the payload. Written by the sender only while it
	// has exclusive access (state is stateEmpty or it has just claimed
	// stateUnparking), read by the receiver only after observing
	// stateMessage via an Acquire load. Cleared by the consuming side
	// immediately after reading it, so a leaked pointer does not keep
	// an arbitrarily large payload alive past delivery.
	message T

	// waiter holds the receiver's wake descriptor. Written by the
	// receiver only while state is stateEmpty, read and cleared by the
	// sender only after claiming stateUnparking, or by the Receiver's
	// own Close after it has moved the state to stateDisconnected.
	waiter waiterDescriptor

	// sendClosed and recvClosed record which side has already run its
	// terminal transition, so a finalizer running after an explicit
	// Close does not double-publish stateDisconnected.
	sendClosed atomix.Bool
	recvClosed atomix.Bool
}

func newBlock[T any]() *block[T] {
	return &block[T]{}
}

func (b *block[T]) loadState() channelState {
	return channelState(b.state.LoadAcquire())
}

func (b *block[T]) casState(old, new_ channelState) bool {
	return b.state.CompareAndSwapAcqRel(uint32(old), uint32(new_))
}

func (b *block[T]) storeState(s channelState) {
	b.state.StoreRelease(uint32(s))
}

// consumeMessage attempts to take the stored message, transitioning
// the block to stateDisconnected. Safe to call from more than one
// goroutine at once (as RecvRef permits): at most one caller across
// the whole channel ever observes ok == true.
func (b *block[T]) consumeMessage() (T, bool) {
	for {
		if b.loadState() != stateMessage {
			var zero T
			return zero, false
		}
		if b.casState(stateMessage, stateDisconnected) {
			v := b.message
			var zero T
			b.message = zero
			return v, true
		}
	}
}
