package firm

import (
	"sync"

	deadlock "github.com/sasha-s/go-deadlock"
)

// Emitter is a multicast event source, the equivalent of a DOM element that
// fires click events. Subscribers are called in subscription order.
type Emitter[T any] struct {
	mu          deadlock.RWMutex
	subscribers []*listener[T]
}

// NewEmitter creates an emitter whose subscribers are dropped when owner is
// disposed.
func NewEmitter[T any](owner *Owner) *Emitter[T] {
	e := &Emitter[T]{}
	owner.OnCleanup(func() {
		e.mu.Lock()
		e.subscribers = nil
		e.mu.Unlock()
	})
	return e
}

// Emit delivers value to every current subscriber
func (e *Emitter[T]) Emit(value T) {
	e.mu.RLock()
	subscribers := make([]*listener[T], len(e.subscribers))
	copy(subscribers, e.subscribers)
	e.mu.RUnlock()

	for _, s := range subscribers {
		s.fn(value)
	}
}

// Subscribe adds fn and returns the function that removes it
func (e *Emitter[T]) Subscribe(fn func(T)) CleanUp {
	l := &listener[T]{fn: fn}

	e.mu.Lock()
	e.subscribers = append(e.subscribers, l)
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		for i, existing := range e.subscribers {
			if existing == l {
				e.subscribers = append(e.subscribers[:i], e.subscribers[i+1:]...)
				break
			}
		}
	}
}

// Len returns the number of active subscribers
func (e *Emitter[T]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subscribers)
}

// Stream is a cold sequence of values. Calling it subscribes next and returns
// the function that ends the subscription; every subscription gets its own
// operator state.
type Stream[T any] func(next func(T)) CleanUp

// Events turns an emitter into a stream
func Events[T any](e *Emitter[T]) Stream[T] {
	return func(next func(T)) CleanUp {
		return e.Subscribe(next)
	}
}

// Never is a stream that never emits
func Never[T any]() Stream[T] {
	return func(func(T)) CleanUp {
		return func() {}
	}
}

// Map transforms every value of s
func Map[T, R any](s Stream[T], fn func(T) R) Stream[R] {
	return func(next func(R)) CleanUp {
		return s(func(v T) {
			next(fn(v))
		})
	}
}

// Filter drops the values of s that do not satisfy keep
func Filter[T any](s Stream[T], keep func(T) bool) Stream[T] {
	return func(next func(T)) CleanUp {
		return s(func(v T) {
			if keep(v) {
				next(v)
			}
		})
	}
}

// Scan emits the running accumulation of s, starting from seed. The seed
// itself is not emitted.
func Scan[T, A any](s Stream[T], seed A, fn func(A, T) A) Stream[A] {
	return func(next func(A)) CleanUp {
		acc := seed
		return s(func(v T) {
			acc = fn(acc, v)
			next(acc)
		})
	}
}

// Merge forwards the values of all streams in the order they are observed.
// Ending the merged subscription ends every inner one, last first.
func Merge[T any](streams ...Stream[T]) Stream[T] {
	return func(next func(T)) CleanUp {
		unsubscribes := make([]CleanUp, 0, len(streams))
		for _, s := range streams {
			unsubscribes = append(unsubscribes, s(next))
		}
		return func() {
			for i := len(unsubscribes) - 1; i >= 0; i-- {
				unsubscribes[i]()
			}
		}
	}
}

// Subscribe subscribes next to s for the lifetime of owner. The returned
// CleanUp may be called earlier and is safe to call more than once.
func Subscribe[T any](owner *Owner, s Stream[T], next func(T)) CleanUp {
	var once sync.Once
	unsubscribe := s(next)
	cleanup := func() {
		once.Do(unsubscribe)
	}
	owner.OnCleanup(cleanup)
	return cleanup
}
