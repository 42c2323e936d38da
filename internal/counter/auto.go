package counter

import (
	"time"

	"go.uber.org/zap"

	firm "github.com/davidroman0O/firm-counter"
)

// DefaultPeriod is the auto-increment period.
const DefaultPeriod = 1000 * time.Millisecond

// Scheduler starts periodic work. The returned cancel stops it before
// returning; no call to fn happens afterwards.
type Scheduler interface {
	Every(period time.Duration, fn func()) (cancel func())
}

// AutoOption configures an AutoIncrementer.
type AutoOption func(*AutoIncrementer)

// WithStartRunning sets the initial state.
func WithStartRunning(running bool) AutoOption {
	return func(a *AutoIncrementer) {
		a.startRunning = running
	}
}

// WithPeriod sets the tick period. Non-positive periods are ignored.
func WithPeriod(period time.Duration) AutoOption {
	return func(a *AutoIncrementer) {
		if period > 0 {
			a.period = period
		}
	}
}

// WithAutoLogger sets the auto-incrementer's logger.
func WithAutoLogger(log *zap.Logger) AutoOption {
	return func(a *AutoIncrementer) {
		if log != nil {
			a.log = log
		}
	}
}

// AutoIncrementer is a two-state machine, Stopped or Running. A timer exists
// exactly while it is Running; it is created on Stopped->Running, cancelled
// on Running->Stopped and when the owner is disposed.
type AutoIncrementer struct {
	running      *firm.Signal[bool]
	startRunning bool
	period       time.Duration
	sched        Scheduler
	tick         func()
	log          *zap.Logger
}

// NewAutoIncrementer creates the driver owned by owner. tick is usually
// Counter.Increment.
func NewAutoIncrementer(owner *firm.Owner, sched Scheduler, tick func(), opts ...AutoOption) *AutoIncrementer {
	a := &AutoIncrementer{
		period: DefaultPeriod,
		sched:  sched,
		tick:   tick,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.running = firm.NewSignal(owner, a.startRunning)

	firm.CreateEffect(owner, func() firm.CleanUp {
		if !a.running.Get() {
			return nil
		}

		a.log.Debug("auto-increment started", zap.Duration("period", a.period))
		cancel := a.sched.Every(a.period, a.tick)

		return func() {
			cancel()
			a.log.Debug("auto-increment stopped")
		}
	}, []firm.Reactive{a.running})

	return a
}

// Toggle flips between Stopped and Running.
func (a *AutoIncrementer) Toggle() {
	a.running.Update(func(running bool) bool { return !running })
}

// Running reports whether the timer is active.
func (a *AutoIncrementer) Running() bool {
	return a.running.Get()
}

// Period returns the tick period.
func (a *AutoIncrementer) Period() time.Duration {
	return a.period
}

// Signal exposes the running flag for memos and effects.
func (a *AutoIncrementer) Signal() *firm.Signal[bool] {
	return a.running
}
