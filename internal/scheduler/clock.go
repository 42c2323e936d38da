package scheduler

import (
	"sync"
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// Clock produces periodic callbacks. The returned stop function cancels the
// ticker; it is safe to call more than once.
type Clock interface {
	Every(period time.Duration, fn func()) (stop func())
}

// RealClock ticks with time.Ticker. Callbacks run on the ticker's goroutine.
type RealClock struct{}

// Every implements Clock.
func (RealClock) Every(period time.Duration, fn func()) func() {
	ticker := time.NewTicker(period)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

// ManualClock is a virtual clock for tests. Time only moves on Advance, and
// due callbacks run synchronously on the caller's goroutine.
//
// Thread-safety: all methods are safe for concurrent use; callbacks are
// invoked without holding the internal lock.
type ManualClock struct {
	mu      deadlock.Mutex
	now     time.Duration
	seq     int
	tickers []*manualTicker
}

type manualTicker struct {
	id     int
	period time.Duration
	next   time.Duration
	fn     func()
}

// NewManualClock creates a clock positioned at zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Every implements Clock. The first tick is due one period from now.
func (c *ManualClock) Every(period time.Duration, fn func()) func() {
	if period <= 0 {
		panic("scheduler: non-positive period for ManualClock.Every")
	}

	c.mu.Lock()
	t := &manualTicker{id: c.seq, period: period, next: c.now + period, fn: fn}
	c.seq++
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		for i, existing := range c.tickers {
			if existing == t {
				c.tickers = append(c.tickers[:i], c.tickers[i+1:]...)
				return
			}
		}
	}
}

// Advance moves virtual time forward by d, firing every tick that falls due
// in order of due time. Ticks due at the same instant fire in ticker creation
// order.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var due *manualTicker
		for _, t := range c.tickers {
			if t.next > target {
				continue
			}
			if due == nil || t.next < due.next || (t.next == due.next && t.id < due.id) {
				due = t
			}
		}
		if due == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = due.next
		due.next += due.period
		fn := due.fn
		c.mu.Unlock()

		fn()
	}
}

// Now returns the virtual time elapsed since the clock was created.
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Active returns the number of tickers that have not been stopped.
func (c *ManualClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}
