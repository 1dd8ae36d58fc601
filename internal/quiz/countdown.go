package quiz

import (
	"sync"
	"time"
)

// Countdown delivers periodic ticks until stopped. It has a single owner,
// and Stop may be called from every exit path.
type Countdown struct {
	ticker   *time.Ticker
	interval time.Duration
	done     chan struct{}
	once     sync.Once
}

// NewCountdown starts a countdown ticking every interval.
func NewCountdown(interval time.Duration) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}
	return &Countdown{
		ticker:   time.NewTicker(interval),
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Interval returns the tick period.
func (c *Countdown) Interval() time.Duration {
	return c.interval
}

// Wait blocks until the next tick. It returns false once the countdown is stopped.
func (c *Countdown) Wait() (time.Time, bool) {
	select {
	case <-c.done:
		return time.Time{}, false
	default:
	}
	select {
	case t := <-c.ticker.C:
		return t, true
	case <-c.done:
		return time.Time{}, false
	}
}

// Stop releases the ticker and unblocks any waiter.
func (c *Countdown) Stop() {
	c.once.Do(func() {
		c.ticker.Stop()
		close(c.done)
	})
}

// Stopped reports whether Stop has been called.
func (c *Countdown) Stopped() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
