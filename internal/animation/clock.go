// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"fmt"
	"time"
)

// Iterations is a number of complete traversals of an animation.
type Iterations int

// Infinite is the Iterations value for an animation that never terminates.
const Infinite Iterations = 0

func (n Iterations) String() string {
	if n <= Infinite {
		return "infinite"
	}
	return fmt.Sprint(int(n))
}

// reached returns whether count completed iterations satisfies n.
func (n Iterations) reached(count uint64) bool {
	return n > Infinite && count >= uint64(n)
}

// Clock maps elapsed wall clock time to a frame index.
//
// The clock's origin is moved forward by whole animation periods each
// time the elapsed time passes the end of the animation, so elapsed
// values remain small over long run times.
type Clock struct {
	origin     time.Time
	iterations uint64
}

// Reset sets the clock's origin to now and clears the iteration count.
func (c *Clock) Reset(now time.Time) {
	c.origin = now
	c.iterations = 0
}

// Elapsed returns the time since the clock's origin.
func (c *Clock) Elapsed(now time.Time) time.Duration {
	return now.Sub(c.origin)
}

// Iterations returns the number of completed iterations since the
// last reset.
func (c *Clock) Iterations() uint64 { return c.iterations }

// Resolve returns the index of the frame due at elapsed time after the
// clock's origin for an animation with the given frame durations. If
// elapsed is beyond total, the iteration count is incremented by the
// number of completed periods and the origin is moved forward by the
// same number of periods.
func (c *Clock) Resolve(elapsed, total time.Duration, durations []time.Duration) int {
	if total <= 0 || len(durations) == 0 {
		return 0
	}
	wrapped := elapsed
	if elapsed > total {
		n := elapsed / total
		c.iterations += uint64(n)
		c.origin = c.origin.Add(n * total)
		wrapped = elapsed - n*total
	} else if elapsed == total {
		wrapped = 0
	}
	return FrameAt(wrapped, durations)
}

// FrameAt returns the first index i where the sum of durations[:i+1]
// is at least t. If t is beyond the sum of all durations, the last
// index is returned.
func FrameAt(t time.Duration, durations []time.Duration) int {
	if len(durations) == 0 {
		return 0
	}
	var cursor time.Duration
	for i, d := range durations {
		if cursor+d >= t {
			return i
		}
		cursor += d
	}
	return len(durations) - 1
}
