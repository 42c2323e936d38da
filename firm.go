// Package firm is a small reactive toolkit: owner scopes that dispose what they
// acquired, signals, memos and effects with explicit dependencies, emitters and
// cold streams.
//
// Every reactive value belongs to an Owner, and disposing the owner releases
// listeners, effects and subscriptions in LIFO order. Dependencies are declared
// explicitly instead of being tracked. The only package state is the queue of
// notifications deferred by Batch.
package firm

import (
	"reflect"

	deadlock "github.com/sasha-s/go-deadlock"
)

// CleanUp releases whatever a scope, effect or subscription acquired.
type CleanUp func()

// Reactive is anything an effect or a memo can depend on.
type Reactive interface {
	onChange(fn func()) CleanUp
}

// Owner is a disposal scope, similar to Solid.js createRoot
type Owner struct {
	mu          deadlock.Mutex
	parent      *Owner
	children    []*Owner
	disposables []CleanUp
	disposed    bool
}

// NewOwner creates a detached root scope.
func NewOwner() *Owner {
	return &Owner{}
}

// Root runs fn inside a new root scope and returns the function that disposes
// it. A non-nil CleanUp returned by fn runs as the scope's last cleanup.
func Root(fn func(owner *Owner) CleanUp) CleanUp {
	owner := NewOwner()
	if cleanup := fn(owner); cleanup != nil {
		owner.OnCleanup(cleanup)
	}
	return owner.Dispose
}

// Child creates a nested scope that is disposed together with o.
func (o *Owner) Child() *Owner {
	child := &Owner{parent: o}

	o.mu.Lock()
	if o.disposed {
		child.disposed = true
	} else {
		o.children = append(o.children, child)
	}
	o.mu.Unlock()

	return child
}

// OnCleanup registers fn to run when the scope is disposed. Registering on an
// already disposed scope runs fn immediately.
func (o *Owner) OnCleanup(fn CleanUp) {
	if o == nil || fn == nil {
		return
	}

	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		fn()
		return
	}
	o.disposables = append(o.disposables, fn)
	o.mu.Unlock()
}

// Disposed reports whether Dispose has run.
func (o *Owner) Disposed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.disposed
}

// Dispose disposes all children first, then runs the scope's cleanups in
// reverse registration order. Calling it more than once is a no-op.
func (o *Owner) Dispose() {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return
	}
	o.disposed = true

	// Take ownership of the lists so callbacks never run under the lock
	children := o.children
	disposables := o.disposables
	o.children = nil
	o.disposables = nil
	parent := o.parent
	o.mu.Unlock()

	for _, child := range children {
		child.Dispose()
	}

	for i := len(disposables) - 1; i >= 0; i-- {
		disposables[i]()
	}

	if parent != nil {
		parent.removeChild(o)
	}
}

func (o *Owner) removeChild(child *Owner) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

var batch struct {
	mu      deadlock.Mutex
	depth   int
	queued  map[any]struct{}
	pending []func()
}

// Batch runs fn with signal notifications deferred until the outermost batch
// returns. Each signal set inside the batch then notifies its listeners once,
// with its final value, in the order the signals were first set.
//
// Batch is meant for a single event loop; a signal set on another goroutine
// while a batch is open is deferred as well.
func Batch(fn func()) {
	batch.mu.Lock()
	batch.depth++
	batch.mu.Unlock()

	defer func() {
		for _, notify := range endBatch() {
			notify()
		}
	}()

	fn()
}

func endBatch() []func() {
	batch.mu.Lock()
	defer batch.mu.Unlock()

	batch.depth--
	if batch.depth > 0 {
		return nil
	}
	pending := batch.pending
	batch.pending = nil
	batch.queued = nil
	return pending
}

// deferNotify queues notify under key if a batch is open.
func deferNotify(key any, notify func()) bool {
	batch.mu.Lock()
	defer batch.mu.Unlock()

	if batch.depth == 0 {
		return false
	}
	if _, ok := batch.queued[key]; ok {
		return true
	}
	if batch.queued == nil {
		batch.queued = make(map[any]struct{})
	}
	batch.queued[key] = struct{}{}
	batch.pending = append(batch.pending, notify)
	return true
}

type listener[T any] struct {
	fn func(T)
}

// Signal represents a reactive value that can be observed for changes
type Signal[T any] struct {
	mu         deadlock.RWMutex
	value      T
	listeners  []*listener[T]
	equalityFn func(T, T) bool
}

// NewSignal creates a signal owned by owner. The owner may be nil for a
// signal that lives as long as its references.
func NewSignal[T any](owner *Owner, initialValue T) *Signal[T] {
	s := &Signal[T]{
		value: initialValue,
		equalityFn: func(a, b T) bool {
			return reflect.DeepEqual(a, b)
		},
	}

	owner.OnCleanup(func() {
		s.mu.Lock()
		s.listeners = nil
		s.mu.Unlock()
	})

	return s
}

// CreateSignal creates a signal and returns it together with its setter
func CreateSignal[T any](owner *Owner, initialValue T) (*Signal[T], func(T)) {
	signal := NewSignal(owner, initialValue)
	return signal, signal.Set
}

// SetEqualityFn sets a custom equality function for the signal
func (s *Signal[T]) SetEqualityFn(fn func(T, T) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.equalityFn = fn
}

// Get returns the current value of the signal
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the signal's value and notifies listeners if the value changed.
// Inside a Batch the notification waits for the batch to end.
func (s *Signal[T]) Set(newValue T) {
	s.mu.Lock()
	if s.equalityFn(s.value, newValue) {
		s.mu.Unlock()
		return
	}
	s.value = newValue
	s.mu.Unlock()

	if deferNotify(s, s.notify) {
		return
	}
	s.notify()
}

func (s *Signal[T]) notify() {
	// Copy listeners to avoid holding the lock during callbacks
	s.mu.RLock()
	value := s.value
	listeners := make([]*listener[T], len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l.fn(value)
	}
}

// Update sets the signal to fn applied to its current value
func (s *Signal[T]) Update(fn func(T) T) {
	s.Set(fn(s.Get()))
}

// Subscribe adds a listener and returns the function that removes it
func (s *Signal[T]) Subscribe(fn func(T)) CleanUp {
	l := &listener[T]{fn: fn}

	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		for i, existing := range s.listeners {
			if existing == l {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				break
			}
		}
	}
}

func (s *Signal[T]) onChange(fn func()) CleanUp {
	return s.Subscribe(func(T) { fn() })
}

// Memo is a value derived from its dependencies, recomputed whenever one of
// them changes.
type Memo[T any] struct {
	signal  *Signal[T]
	compute func() T
}

// CreateMemo computes the initial value immediately and recomputes on every
// change of deps.
func CreateMemo[T any](owner *Owner, compute func() T, deps []Reactive) *Memo[T] {
	m := &Memo[T]{
		signal:  NewSignal(owner, compute()),
		compute: compute,
	}

	for _, dep := range deps {
		owner.OnCleanup(dep.onChange(func() {
			m.signal.Set(m.compute())
		}))
	}

	return m
}

// Get returns the memoized value
func (m *Memo[T]) Get() T {
	return m.signal.Get()
}

// Subscribe adds a listener to the memo value
func (m *Memo[T]) Subscribe(fn func(T)) CleanUp {
	return m.signal.Subscribe(fn)
}

func (m *Memo[T]) onChange(fn func()) CleanUp {
	return m.signal.onChange(fn)
}

// Effect represents a side effect that runs when its dependencies change
type Effect struct {
	mu           deadlock.Mutex
	execute      func() CleanUp
	cleanup      CleanUp
	unsubscribes []CleanUp
	disposed     bool
}

// CreateEffect runs execute once, then again on every change of deps. The
// CleanUp returned by a run executes before the next run and when the effect
// is disposed together with its owner.
func CreateEffect(owner *Owner, execute func() CleanUp, deps []Reactive) *Effect {
	e := &Effect{execute: execute}

	e.run()

	for _, dep := range deps {
		e.unsubscribes = append(e.unsubscribes, dep.onChange(e.run))
	}

	owner.OnCleanup(e.Dispose)

	return e
}

func (e *Effect) run() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	cleanup := e.cleanup
	e.cleanup = nil
	e.mu.Unlock()

	if cleanup != nil {
		cleanup()
	}

	next := e.execute()

	e.mu.Lock()
	if e.disposed {
		// Disposed while executing: the fresh cleanup must still run
		e.mu.Unlock()
		if next != nil {
			next()
		}
		return
	}
	e.cleanup = next
	e.mu.Unlock()
}

// Dispose stops the effect and runs its pending cleanup
func (e *Effect) Dispose() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.disposed = true
	cleanup := e.cleanup
	unsubscribes := e.unsubscribes
	e.cleanup = nil
	e.unsubscribes = nil
	e.mu.Unlock()

	for _, unsubscribe := range unsubscribes {
		unsubscribe()
	}
	if cleanup != nil {
		cleanup()
	}
}
