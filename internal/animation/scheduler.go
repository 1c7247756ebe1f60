// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"sync"
	"time"
)

// Scheduler is a host-provided periodic callback facility.
type Scheduler interface {
	// Schedule arranges for tick to be called every interval until
	// the returned Timer is stopped. Calls to tick must not overlap
	// and Schedule must not call tick before it has returned.
	Schedule(interval time.Duration, tick func(now time.Time)) Timer
}

// Timer is a scheduled recurring tick.
type Timer interface {
	// Stop halts the timer. Stop must be safe to call from within
	// the timer's tick function, and must be idempotent.
	Stop()
}

// TickerScheduler is a Scheduler that runs ticks on a dedicated goroutine
// per timer using a time.Ticker.
type TickerScheduler struct{}

// Schedule implements the Scheduler interface.
func (TickerScheduler) Schedule(interval time.Duration, tick func(now time.Time)) Timer {
	t := &tickerTimer{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	go func() {
		defer t.ticker.Stop()
		for {
			select {
			case <-t.done:
				return
			case now := <-t.ticker.C:
				select {
				case <-t.done:
					return
				default:
				}
				tick(now)
			}
		}
	}()
	return t
}

type tickerTimer struct {
	ticker *time.Ticker
	once   sync.Once
	done   chan struct{}
}

func (t *tickerTimer) Stop() {
	t.once.Do(func() { close(t.done) })
}
