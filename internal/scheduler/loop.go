// Package scheduler provides the single-threaded event loop the counters run
// on, and the clocks that feed it periodic work.
//
// Every state mutation happens inside a callback executed by Loop, one at a
// time and in FIFO order. Timers never touch state directly: each tick is
// posted to the loop like any other event.
package scheduler

import (
	"context"
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"
)

// Loop executes posted callbacks strictly one at a time.
type Loop struct {
	mu    deadlock.Mutex
	queue []func()
	wake  chan struct{}
	clock Clock
	log   *zap.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the loop's logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loop) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLoop creates a loop whose timers are driven by clock.
func NewLoop(clock Clock, opts ...Option) *Loop {
	l := &Loop{
		wake:  make(chan struct{}, 1),
		clock: clock,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post enqueues fn. It never blocks and may be called from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes callbacks until ctx is done. Only one goroutine may run or
// drain a loop at a time.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Debug("event loop started")
	defer l.log.Debug("event loop stopped")

	for {
		l.Drain()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Drain executes queued callbacks on the calling goroutine until the queue is
// empty, including callbacks posted while draining. It returns how many ran.
func (l *Loop) Drain() int {
	n := 0
	for {
		fn := l.pop()
		if fn == nil {
			return n
		}
		fn()
		n++
	}
}

// Pending returns the number of queued callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) pop() func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return nil
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn
}

// Every runs fn on the loop once per period until the returned cancel is
// called. Cancel must be called on the loop; ticks already queued when it
// runs are dropped, so fn never fires after cancel returns.
func (l *Loop) Every(period time.Duration, fn func()) (cancel func()) {
	stopped := false
	stop := l.clock.Every(period, func() {
		l.Post(func() {
			if !stopped {
				fn()
			}
		})
	})

	return func() {
		stopped = true
		stop()
	}
}
