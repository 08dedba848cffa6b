// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package oneshot_test

import (
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/oneshot"
)

// retryWithTimeout retries f until it returns true or timeout expires.
func retryWithTimeout(t *testing.T, timeout time.Duration, f func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	backoff := iox.Backoff{}
	for !f() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout after %v: %s", timeout, msg)
		}
		backoff.Wait()
	}
}

// TestStressSendBeforeRecv hammers the fast path where Send always
// wins the race to stateMessage before the receiver starts waiting.
func TestStressSendBeforeRecv(t *testing.T) {
	if oneshot.RaceEnabled {
		t.Skip("skip: relies on the state word's acquire/release ordering, which the race detector does not model")
	}

	const n = 100_000
	for i := 0; i < n; i++ {
		sender, receiver := oneshot.New[int]()
		if err := sender.Send(i); err != nil {
			t.Fatalf("iteration %d: Send: %v", i, err)
		}
		v, err := receiver.TryRecv()
		if err != nil {
			t.Fatalf("iteration %d: TryRecv: %v", i, err)
		}
		if v != i {
			t.Fatalf("iteration %d: got %d, want %d", i, v, i)
		}
	}
}

// TestStressConcurrentSendRecv races Send against a blocked Recv
// across many independent channels, verifying exactly-once delivery.
func TestStressConcurrentSendRecv(t *testing.T) {
	if oneshot.RaceEnabled {
		t.Skip("skip: relies on the state word's acquire/release ordering, which the race detector does not model")
	}

	const n = 20_000
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		sender, receiver := oneshot.New[int]()
		wg.Add(2)
		go func(v int) {
			defer wg.Done()
			sender.Send(v)
		}(i)
		go func(want int) {
			defer wg.Done()
			got, err := receiver.Recv()
			if err != nil {
				t.Errorf("Recv: %v", err)
				return
			}
			if got != want {
				t.Errorf("Recv: got %d, want %d", got, want)
			}
		}(i)
	}
	wg.Wait()
}

// TestStressCloseRace races Receiver.Close against Send, checking only
// that nothing panics.
func TestStressCloseRace(t *testing.T) {
	if oneshot.RaceEnabled {
		t.Skip("skip: relies on the state word's acquire/release ordering, which the race detector does not model")
	}

	const n = 20_000
	for i := 0; i < n; i++ {
		sender, receiver := oneshot.New[int]()
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			receiver.Close()
		}()
		go func() {
			defer wg.Done()
			_ = sender.Send(i)
		}()
		wg.Wait()
	}
}

// TestStressPollRace races Poll's waker install against a concurrent
// Send, verifying the waker always fires when Poll returned pending.
func TestStressPollRace(t *testing.T) {
	if oneshot.RaceEnabled {
		t.Skip("skip: relies on the state word's acquire/release ordering, which the race detector does not model")
	}

	const n = 5_000
	for i := 0; i < n; i++ {
		sender, receiver := oneshot.New[int]()
		woken := make(chan struct{}, 1)
		waker := oneshot.FuncWaker(func() {
			select {
			case woken <- struct{}{}:
			default:
			}
		})

		var wg sync.WaitGroup
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			sender.Send(v)
		}(i)

		v, ready, err := receiver.Poll(waker)
		if !ready {
			retryWithTimeout(t, time.Second, func() bool {
				select {
				case <-woken:
					return true
				default:
					return false
				}
			}, "waker never fired")
			v, ready, err = receiver.Poll(waker)
		}
		wg.Wait()

		if !ready {
			t.Fatalf("iteration %d: Poll never became ready", i)
		}
		if err != nil {
			t.Fatalf("iteration %d: unexpected error %v", i, err)
		}
		if v != i {
			t.Fatalf("iteration %d: got %d, want %d", i, v, i)
		}
	}
}
