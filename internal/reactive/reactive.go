// Package reactive implements the stream-driven counter. Its value is never
// set directly: it is the left fold of every Operation produced by merging the
// increment, decrement and reset click streams with a tick stream that a
// toggle click stream starts and stops.
package reactive

import (
	"time"

	"go.uber.org/zap"

	firm "github.com/davidroman0O/firm-counter"
)

// DefaultPeriod is the tick period while auto-increment is started.
const DefaultPeriod = 1000 * time.Millisecond

// Scheduler starts periodic work. The returned cancel stops it before
// returning; no tick is delivered afterwards.
type Scheduler interface {
	Every(period time.Duration, fn func()) (cancel func())
}

// Inputs are the four click streams the counter listens to. A nil stream
// never emits.
type Inputs struct {
	Increment firm.Stream[struct{}]
	Decrement firm.Stream[struct{}]
	Reset     firm.Stream[struct{}]
	Toggle    firm.Stream[struct{}]
}

// Step is one fold output: the operation applied and the resulting total.
type Step struct {
	Op    Operation
	Value int
}

// Option configures a Counter.
type Option func(*Counter)

// WithPeriod sets the tick period. Non-positive periods are ignored.
func WithPeriod(period time.Duration) Option {
	return func(c *Counter) {
		if period > 0 {
			c.period = period
		}
	}
}

// WithLogger sets the counter's logger. Every fold step is logged at debug.
func WithLogger(log *zap.Logger) Option {
	return func(c *Counter) {
		if log != nil {
			c.log = log
		}
	}
}

// WithStepHook calls fn after every fold step, before the value is published.
func WithStepHook(fn func(Step)) Option {
	return func(c *Counter) {
		c.hook = fn
	}
}

// Counter is the reactive counter.
type Counter struct {
	value  *firm.Signal[int]
	label  *firm.Signal[Label]
	period time.Duration
	sched  Scheduler
	stop   firm.CleanUp
	hook   func(Step)
	log    *zap.Logger
}

// New wires the counter under owner, seeded with seed. The seed is read once;
// later changes elsewhere are not observed. Disposing owner, or calling Stop,
// releases every subscription and cancels any active tick sequence.
func New(owner *firm.Owner, sched Scheduler, in Inputs, seed int, opts ...Option) *Counter {
	c := &Counter{
		period: DefaultPeriod,
		sched:  sched,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.value = firm.NewSignal(owner, seed)
	// Every fold output is published, including one equal to the last
	c.value.SetEqualityFn(func(int, int) bool { return false })
	c.label = firm.NewSignal(owner, Stopped)

	increments := firm.Map(firm.Merge(orNever(in.Increment), c.ticks(orNever(in.Toggle))), always(Increment))
	decrements := firm.Map(orNever(in.Decrement), always(Decrement))
	resets := firm.Map(orNever(in.Reset), always(Reset))

	steps := firm.Scan(firm.Merge(increments, decrements, resets), Step{Value: seed}, func(acc Step, op Operation) Step {
		return Step{Op: op, Value: op.Apply(acc.Value)}
	})

	c.stop = firm.Subscribe(owner, steps, c.publish)

	return c
}

func (c *Counter) publish(s Step) {
	c.log.Debug("reactive step", zap.Stringer("op", s.Op), zap.Int("value", s.Value))
	if c.hook != nil {
		c.hook(s)
	}
	c.value.Set(s.Value)
}

// ticks derives the tick stream from toggle clicks. Labels alternate
// stopped/started starting from stopped; every label cancels the active tick
// sequence, and a started label begins a new one.
func (c *Counter) ticks(toggles firm.Stream[struct{}]) firm.Stream[struct{}] {
	labels := firm.Scan(toggles, Stopped, func(l Label, _ struct{}) Label {
		return l.Flip()
	})

	return func(next func(struct{})) firm.CleanUp {
		sw := &tickSwitch{sched: c.sched, period: c.period}

		unsubscribe := labels(func(l Label) {
			c.label.Set(l)
			sw.switchTo(l, func() { next(struct{}{}) })
		})

		return func() {
			unsubscribe()
			sw.cancel()
		}
	}
}

// tickSwitch holds at most one active tick sequence.
type tickSwitch struct {
	sched  Scheduler
	period time.Duration
	active func()
}

func (s *tickSwitch) switchTo(l Label, tick func()) {
	s.cancel()
	if l == Started {
		s.active = s.sched.Every(s.period, tick)
	}
}

func (s *tickSwitch) cancel() {
	if s.active != nil {
		s.active()
		s.active = nil
	}
}

// Value returns the latest fold output (the seed before any operation).
func (c *Counter) Value() int {
	return c.value.Get()
}

// Label returns the latest toggle label.
func (c *Counter) Label() Label {
	return c.label.Get()
}

// Signal exposes the value for memos and effects.
func (c *Counter) Signal() *firm.Signal[int] {
	return c.value
}

// LabelSignal exposes the toggle label for memos and effects.
func (c *Counter) LabelSignal() *firm.Signal[Label] {
	return c.label
}

// Subscribe calls fn with every fold output, even when it repeats the
// previous value. Inside a firm.Batch only the last output is delivered.
func (c *Counter) Subscribe(fn func(int)) firm.CleanUp {
	return c.value.Subscribe(fn)
}

// Stop releases the merged subscription early. It is safe to call again or
// after the owner is disposed.
func (c *Counter) Stop() {
	c.stop()
}

func orNever(s firm.Stream[struct{}]) firm.Stream[struct{}] {
	if s == nil {
		return firm.Never[struct{}]()
	}
	return s
}

func always(op Operation) func(struct{}) Operation {
	return func(struct{}) Operation { return op }
}
