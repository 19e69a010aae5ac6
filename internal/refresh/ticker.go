// Package refresh emits periodic payload-free ticks telling a consumer to
// pull the latest committed telemetry and redraw. The tick channel has depth
// one and overwrites on full, so a slow consumer coalesces missed ticks
// instead of building a backlog.
package refresh

import (
	"sync"
	"time"
)

// DefaultPeriod is the plot refresh interval when none is configured.
const DefaultPeriod = 250 * time.Millisecond

// Ticker fires on a fixed wall-clock period, independent of simulation
// progress. Create with NewTicker, consume C, and call Stop exactly once.
type Ticker struct {
	period   time.Duration
	ticks    chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewTicker starts a ticker with the given period. Non-positive periods fall
// back to DefaultPeriod.
func NewTicker(period time.Duration) *Ticker {
	if period <= 0 {
		period = DefaultPeriod
	}
	t := &Ticker{
		period: period,
		ticks:  make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go t.loop()
	return t
}

// C is the tick channel. Ticks carry no payload; the receiver is expected to
// snapshot the store's current index once and read up to it.
func (t *Ticker) C() <-chan struct{} {
	return t.ticks
}

// Period returns the configured tick interval.
func (t *Ticker) Period() time.Duration {
	return t.period
}

// Stop halts the ticker and joins its goroutine. No tick is delivered after
// Stop returns. Safe to call more than once.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
		<-t.done
		// drain any tick buffered before the stop took effect
		select {
		case <-t.ticks:
		default:
		}
	})
}

func (t *Ticker) loop() {
	defer close(t.done)
	tick := time.NewTicker(t.period)
	defer tick.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-tick.C:
			t.deliver()
		}
	}
}

// deliver publishes one tick latest-value-wins.
func (t *Ticker) deliver() {
	select {
	case t.ticks <- struct{}{}:
	default:
		// consumer still busy with the previous tick; coalesce
	}
}
