// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !race

package oneshot

// RaceEnabled is false when the race detector is not active.
// See the race.go build's doc comment for what tests do with it.
const RaceEnabled = false
