// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package oneshot

// RaceEnabled is true when the race detector is active.
// Stress tests skip themselves when this is true: they race the
// sender's plain writes to block.message/block.waiter against the
// receiver's plain reads, which the race detector cannot see are
// ordered by the state word's acquire/release transitions.
const RaceEnabled = true
