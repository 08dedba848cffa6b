// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package oneshot

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrDisconnected indicates the peer endpoint is gone: the receiver
// was dropped before Send, or the sender was dropped (or already used)
// before a message arrived.
var ErrDisconnected = errors.New("oneshot: peer disconnected")

// ErrEmpty indicates TryRecv found no message yet and the sender is
// still alive. It is a control flow signal, not a failure — the caller
// should retry, typically after installing a waiter via Recv or Poll.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency,
// matching how other code.hybscloud.com packages report "not yet".
var ErrEmpty = iox.ErrWouldBlock

// ErrTimeout indicates RecvContext's context deadline passed, or
// RecvTimeout's duration elapsed, before a message arrived. A context
// canceled before its deadline is reported as ctx.Err() instead.
var ErrTimeout = errors.New("oneshot: recv timed out")

// SendError is returned by Send when the receiver was already dropped.
// It carries the value that could not be delivered so the caller can
// recover it rather than losing it silently.
type SendError[T any] struct {
	Value T
}

func (e *SendError[T]) Error() string {
	return fmt.Sprintf("oneshot: send on disconnected channel: %v", e.Value)
}

func (e *SendError[T]) Unwrap() error {
	return ErrDisconnected
}

// IntoValue returns the value that could not be sent.
func (e *SendError[T]) IntoValue() T {
	return e.Value
}

// IsWouldBlock reports whether err indicates a non-blocking receive
// would have to wait. Delegates to [iox.IsWouldBlock] for wrapped
// error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal rather than
// a failure. Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}
