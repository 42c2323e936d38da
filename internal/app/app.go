// Package app wires the direct and reactive counters to four shared buttons
// and publishes what the render surface displays.
//
// Every method except Press and Snapshot must run on the event loop.
package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	firm "github.com/davidroman0O/firm-counter"
	"github.com/davidroman0O/firm-counter/internal/counter"
	"github.com/davidroman0O/firm-counter/internal/reactive"
)

// Button is one of the four semantic inputs.
type Button int

const (
	IncrementButton Button = iota
	DecrementButton
	ResetButton
	ToggleButton
)

var buttonNames = [...]string{"increment", "decrement", "reset", "toggle"}

func (b Button) String() string {
	if b < 0 || int(b) >= len(buttonNames) {
		return fmt.Sprintf("Button(%d)", int(b))
	}
	return buttonNames[b]
}

// Snapshot is the display state.
type Snapshot struct {
	Direct       int
	Reactive     int
	Initial      int
	Running      bool
	Label        reactive.Label
	ResetVisible bool
}

// Loop is the event loop the app runs on.
type Loop interface {
	Post(fn func())
	Every(period time.Duration, fn func()) (cancel func())
}

// batchedLoop runs every tick inside firm.Batch.
type batchedLoop struct {
	Loop
}

func (l batchedLoop) Every(period time.Duration, fn func()) (cancel func()) {
	return l.Loop.Every(period, func() {
		firm.Batch(fn)
	})
}

// Config holds the counter settings.
type Config struct {
	Initial      int
	StartRunning bool
	Period       time.Duration
}

// Option configures an App.
type Option func(*App)

// WithCache persists the direct counter through c.
func WithCache(c counter.Cache) Option {
	return func(a *App) {
		a.cache = c
	}
}

// WithLogger sets the app's logger.
func WithLogger(log *zap.Logger) Option {
	return func(a *App) {
		if log != nil {
			a.log = log
		}
	}
}

// App owns both counters for the duration of a mount.
type App struct {
	cfg   Config
	loop  Loop
	cache counter.Cache
	log   *zap.Logger

	root    *firm.Owner
	changes *firm.Emitter[Snapshot]
	latest  *firm.Signal[Snapshot]

	mount    *firm.Owner
	buttons  map[Button]*firm.Emitter[struct{}]
	direct   *counter.Counter
	auto     *counter.AutoIncrementer
	reactive *reactive.Counter
}

// New creates an unmounted app.
func New(cfg Config, loop Loop, opts ...Option) *App {
	if cfg.Period <= 0 {
		cfg.Period = counter.DefaultPeriod
	}

	a := &App{
		cfg:  cfg,
		loop: loop,
		log:  zap.NewNop(),
		root: firm.NewOwner(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.changes = firm.NewEmitter[Snapshot](a.root)
	a.latest = firm.NewSignal(a.root, a.unmounted())
	return a
}

func (a *App) unmounted() Snapshot {
	return Snapshot{
		Direct:   a.cfg.Initial,
		Reactive: a.cfg.Initial,
		Initial:  a.cfg.Initial,
		Label:    reactive.Stopped,
	}
}

// Mount wires both subsystems. The direct counter's subscribers are attached
// before the reactive counter's, so within one click the direct counter
// updates first. Mounting twice is a no-op.
func (a *App) Mount() {
	if a.mount != nil {
		return
	}

	id := uuid.NewString()
	log := a.log.With(zap.String("mount", id))
	owner := a.root.Child()
	a.mount = owner

	a.buttons = make(map[Button]*firm.Emitter[struct{}], len(buttonNames))
	for b := range buttonNames {
		a.buttons[Button(b)] = firm.NewEmitter[struct{}](owner)
	}

	directOpts := []counter.Option{counter.WithLogger(log)}
	if a.cache != nil {
		directOpts = append(directOpts, counter.WithCache(a.cache))
	}
	a.direct = counter.New(owner, a.cfg.Initial, directOpts...)
	a.auto = counter.NewAutoIncrementer(owner, batchedLoop{a.loop}, a.direct.Increment,
		counter.WithStartRunning(a.cfg.StartRunning),
		counter.WithPeriod(a.cfg.Period),
		counter.WithAutoLogger(log),
	)

	a.on(owner, IncrementButton, a.direct.Increment)
	a.on(owner, DecrementButton, a.direct.Decrement)
	a.on(owner, ResetButton, a.direct.Reset)
	a.on(owner, ToggleButton, a.auto.Toggle)

	a.reactive = reactive.New(owner, batchedLoop{a.loop}, reactive.Inputs{
		Increment: firm.Events(a.buttons[IncrementButton]),
		Decrement: firm.Events(a.buttons[DecrementButton]),
		Reset:     firm.Events(a.buttons[ResetButton]),
		Toggle:    firm.Events(a.buttons[ToggleButton]),
	}, a.direct.Value(),
		reactive.WithPeriod(a.cfg.Period),
		reactive.WithLogger(log),
	)

	resetVisible := firm.CreateMemo(owner, func() bool {
		return a.direct.Value() != a.cfg.Initial
	}, []firm.Reactive{a.direct.Signal()})

	snapshot := firm.CreateMemo(owner, func() Snapshot {
		return Snapshot{
			Direct:       a.direct.Value(),
			Reactive:     a.reactive.Value(),
			Initial:      a.cfg.Initial,
			Running:      a.auto.Running(),
			Label:        a.reactive.Label(),
			ResetVisible: resetVisible.Get(),
		}
	}, []firm.Reactive{
		a.direct.Signal(),
		a.reactive.Signal(),
		a.auto.Signal(),
		a.reactive.LabelSignal(),
		resetVisible,
	})

	owner.OnCleanup(snapshot.Subscribe(a.publish))
	a.publish(snapshot.Get())

	log.Info("counter mounted",
		zap.Int("initial", a.cfg.Initial),
		zap.Int("value", a.direct.Value()),
		zap.Duration("period", a.cfg.Period))
}

func (a *App) on(owner *firm.Owner, b Button, fn func()) {
	firm.Subscribe(owner, firm.Events(a.buttons[b]), func(struct{}) { fn() })
}

func (a *App) publish(s Snapshot) {
	a.latest.Set(s)
	a.changes.Emit(s)
}

// Unmount tears down both subsystems, cancelling any active timer. The last
// snapshot stays readable.
func (a *App) Unmount() {
	if a.mount == nil {
		return
	}
	a.mount.Dispose()
	a.mount = nil
	a.buttons = nil
	a.log.Info("counter unmounted")
}

// Close unmounts and drops every change listener.
func (a *App) Close() {
	a.Unmount()
	a.root.Dispose()
}

// Mounted reports whether Mount has run without a matching Unmount.
func (a *App) Mounted() bool {
	return a.mount != nil
}

// Click delivers b synchronously to both subsystems and publishes at most one
// snapshot. Clicks while unmounted are ignored.
func (a *App) Click(b Button) {
	e, ok := a.buttons[b]
	if !ok {
		a.log.Debug("click ignored", zap.Stringer("button", b))
		return
	}
	firm.Batch(func() {
		e.Emit(struct{}{})
	})
}

// Press posts a click of b to the event loop. Safe from any goroutine.
func (a *App) Press(b Button) {
	a.loop.Post(func() { a.Click(b) })
}

// Snapshot returns the latest published display state. Safe from any
// goroutine.
func (a *App) Snapshot() Snapshot {
	return a.latest.Get()
}

// OnChange calls fn with every published snapshot, including the one
// published by Mount.
func (a *App) OnChange(fn func(Snapshot)) firm.CleanUp {
	return a.changes.Subscribe(fn)
}
