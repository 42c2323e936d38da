// Package counter implements the direct counter: an integer changed by
// explicit method calls, persisted on every change, and an auto-incrementer
// that calls Increment on a fixed period while it is running.
package counter

import (
	"go.uber.org/zap"

	firm "github.com/davidroman0O/firm-counter"
)

// Cache persists the counter value. Get returns def when nothing usable is
// stored; on failure it returns def and the error.
type Cache interface {
	Get(def int) (int, error)
	Set(v int) error
}

// Option configures a Counter.
type Option func(*Counter)

// WithCache persists the value through c.
func WithCache(c Cache) Option {
	return func(counter *Counter) {
		counter.cache = c
	}
}

// WithLogger sets the counter's logger.
func WithLogger(log *zap.Logger) Option {
	return func(counter *Counter) {
		if log != nil {
			counter.log = log
		}
	}
}

// Counter holds an integer that only changes through its methods.
type Counter struct {
	initial int
	value   *firm.Signal[int]
	cache   Cache
	log     *zap.Logger
}

// New creates a counter owned by owner. With a cache, the starting value is
// read from it once (falling back to initial) and every change, including
// the starting value, is written back.
func New(owner *firm.Owner, initial int, opts ...Option) *Counter {
	c := &Counter{
		initial: initial,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	start := initial
	if c.cache != nil {
		v, err := c.cache.Get(initial)
		if err != nil {
			c.log.Warn("could not read persisted count, using initial value",
				zap.Int("initial", initial), zap.Error(err))
		}
		start = v
	}

	c.value = firm.NewSignal(owner, start)

	if c.cache != nil {
		firm.CreateEffect(owner, func() firm.CleanUp {
			c.persist(c.value.Get())
			return nil
		}, []firm.Reactive{c.value})
	}

	return c
}

func (c *Counter) persist(v int) {
	if err := c.cache.Set(v); err != nil {
		c.log.Warn("could not persist count, keeping it in memory only",
			zap.Int("value", v), zap.Error(err))
	}
}

// Increment adds one.
func (c *Counter) Increment() {
	c.value.Update(func(n int) int { return n + 1 })
}

// Decrement subtracts one.
func (c *Counter) Decrement() {
	c.value.Update(func(n int) int { return n - 1 })
}

// Reset restores the value the counter was constructed with. That is the
// configured initial value, not the persisted one.
func (c *Counter) Reset() {
	c.value.Set(c.initial)
}

// Value returns the current value.
func (c *Counter) Value() int {
	return c.value.Get()
}

// Initial returns the construction-time initial value.
func (c *Counter) Initial() int {
	return c.initial
}

// Signal exposes the value for memos and effects.
func (c *Counter) Signal() *firm.Signal[int] {
	return c.value
}

// Subscribe calls fn with every new value.
func (c *Counter) Subscribe(fn func(int)) firm.CleanUp {
	return c.value.Subscribe(fn)
}
