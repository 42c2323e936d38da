package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/davidroman0O/firm-counter/internal/reactive"
	"github.com/davidroman0O/firm-counter/internal/scheduler"
	"github.com/davidroman0O/firm-counter/internal/storage"
)

type harness struct {
	clock *scheduler.ManualClock
	loop  *scheduler.Loop
	store *storage.MemoryStore
	app   *App
}

func newHarness(t *testing.T, cfg Config, opts ...Option) *harness {
	t.Helper()

	h := &harness{
		clock: scheduler.NewManualClock(),
		store: storage.NewMemoryStore(),
	}
	h.loop = scheduler.NewLoop(h.clock)
	opts = append([]Option{WithCache(storage.NewIntCache(h.store, "count"))}, opts...)
	h.app = New(cfg, h.loop, opts...)
	t.Cleanup(h.app.Close)
	return h
}

func (h *harness) mount() {
	h.loop.Post(h.app.Mount)
	h.loop.Drain()
}

func (h *harness) press(buttons ...Button) {
	for _, b := range buttons {
		h.app.Press(b)
	}
	h.loop.Drain()
}

func (h *harness) wait(periods int) {
	h.clock.Advance(time.Duration(periods) * time.Second)
	h.loop.Drain()
}

func (h *harness) persisted(t *testing.T) string {
	t.Helper()
	v, err := h.store.Get("count", "")
	require.NoError(t, err)
	return v
}

func TestApp_Scenario(t *testing.T) {
	h := newHarness(t, Config{Initial: 0, Period: time.Second})
	h.mount()

	h.press(IncrementButton, IncrementButton, DecrementButton)
	s := h.app.Snapshot()
	assert.Equal(t, 1, s.Direct)
	assert.Equal(t, 1, s.Reactive)
	assert.True(t, s.ResetVisible)
	assert.Equal(t, "1", h.persisted(t))

	h.press(ResetButton)
	s = h.app.Snapshot()
	assert.Equal(t, 0, s.Direct)
	assert.Equal(t, 0, s.Reactive)
	assert.False(t, s.ResetVisible)
	assert.Equal(t, "0", h.persisted(t))
}

func TestApp_SeedsBothCountersFromPersistedValue(t *testing.T) {
	h := newHarness(t, Config{Initial: 3})
	require.NoError(t, h.store.Set("count", "10"))
	h.mount()

	s := h.app.Snapshot()
	assert.Equal(t, 10, s.Direct)
	assert.Equal(t, 10, s.Reactive)
	assert.Equal(t, 3, s.Initial)
	assert.True(t, s.ResetVisible)

	// Direct resets to the initial value, reactive to literal zero
	h.press(ResetButton)
	s = h.app.Snapshot()
	assert.Equal(t, 3, s.Direct)
	assert.Equal(t, 0, s.Reactive)
	assert.False(t, s.ResetVisible)
}

func TestApp_ToggleDrivesBothTimers(t *testing.T) {
	h := newHarness(t, Config{Period: time.Second})
	h.mount()

	h.press(ToggleButton)
	s := h.app.Snapshot()
	assert.True(t, s.Running)
	assert.Equal(t, reactive.Started, s.Label)
	assert.Equal(t, 2, h.clock.Active())

	h.wait(3)
	s = h.app.Snapshot()
	assert.Equal(t, 3, s.Direct)
	assert.Equal(t, 3, s.Reactive)

	h.press(ToggleButton)
	h.wait(3)
	s = h.app.Snapshot()
	assert.False(t, s.Running)
	assert.Equal(t, reactive.Stopped, s.Label)
	assert.Equal(t, 3, s.Direct)
	assert.Equal(t, 3, s.Reactive)
	assert.Zero(t, h.clock.Active())
}

func TestApp_AutoIncrementMechanismsAreIndependent(t *testing.T) {
	h := newHarness(t, Config{StartRunning: true, Period: time.Second})
	h.mount()

	s := h.app.Snapshot()
	assert.True(t, s.Running)
	assert.Equal(t, reactive.Stopped, s.Label)

	h.wait(2)
	assert.Equal(t, 2, h.app.Snapshot().Direct)
	assert.Equal(t, 0, h.app.Snapshot().Reactive)

	// The same click stops one and starts the other
	h.press(ToggleButton)
	h.wait(2)
	s = h.app.Snapshot()
	assert.False(t, s.Running)
	assert.Equal(t, reactive.Started, s.Label)
	assert.Equal(t, 2, s.Direct)
	assert.Equal(t, 2, s.Reactive)
}

func TestApp_OnChangePublishesSnapshots(t *testing.T) {
	h := newHarness(t, Config{Initial: 0})

	var seen []Snapshot
	h.app.OnChange(func(s Snapshot) { seen = append(seen, s) })
	h.mount()
	require.Len(t, seen, 1, "mount publishes once")

	h.press(IncrementButton)
	last := seen[len(seen)-1]
	assert.Equal(t, 1, last.Direct)
	assert.Equal(t, 1, last.Reactive)
	assert.True(t, last.ResetVisible)
}

func TestApp_OnePressPublishesOneSnapshot(t *testing.T) {
	h := newHarness(t, Config{Initial: 0, Period: time.Second})
	h.mount()

	var seen []Snapshot
	h.app.OnChange(func(s Snapshot) { seen = append(seen, s) })

	h.press(ToggleButton)
	require.Len(t, seen, 1)
	assert.True(t, seen[0].Running)
	assert.Equal(t, reactive.Started, seen[0].Label)

	h.press(IncrementButton)
	require.Len(t, seen, 2)
	assert.Equal(t, 1, seen[1].Direct)
	assert.Equal(t, 1, seen[1].Reactive)
	assert.True(t, seen[1].ResetVisible)

	h.press(ResetButton)
	require.Len(t, seen, 3)
	assert.Equal(t, Snapshot{Running: true, Label: reactive.Started}, seen[2])

	// Each timer fires in its own turn, one snapshot per tick
	h.wait(1)
	require.Len(t, seen, 5)
	assert.Equal(t, 1, seen[4].Direct)
	assert.Equal(t, 1, seen[4].Reactive)
}

func TestApp_UnmountStopsEverything(t *testing.T) {
	h := newHarness(t, Config{Initial: 5, Period: time.Second})
	h.mount()

	h.press(ToggleButton)
	h.loop.Post(h.app.Unmount)
	h.loop.Drain()

	assert.False(t, h.app.Mounted())
	assert.Zero(t, h.clock.Active())

	h.wait(3)
	var spied []Snapshot
	h.app.OnChange(func(s Snapshot) { spied = append(spied, s) })
	h.press(IncrementButton)
	h.wait(3)

	assert.Empty(t, spied)
	assert.Equal(t, 5, h.app.Snapshot().Direct)
	assert.Equal(t, "5", h.persisted(t))
}

func TestApp_RemountReadsPersistedValue(t *testing.T) {
	h := newHarness(t, Config{Initial: 0})
	h.mount()
	h.press(IncrementButton, IncrementButton)

	h.loop.Post(h.app.Unmount)
	h.loop.Post(h.app.Mount)
	h.loop.Drain()

	s := h.app.Snapshot()
	assert.Equal(t, 2, s.Direct)
	assert.Equal(t, 2, s.Reactive)
}

func TestApp_StorageFailureKeepsCounting(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	h := newHarness(t, Config{}, WithLogger(zap.New(core)))
	h.store.FailWith(assert.AnError)
	h.mount()

	h.press(IncrementButton, IncrementButton)

	assert.Equal(t, 2, h.app.Snapshot().Direct)
	assert.Positive(t, logs.FilterMessage("could not persist count, keeping it in memory only").Len())
}

func TestApp_ClickBeforeMountIsIgnored(t *testing.T) {
	h := newHarness(t, Config{Initial: 4})

	h.press(IncrementButton)

	s := h.app.Snapshot()
	assert.Equal(t, 4, s.Direct)
	assert.False(t, h.app.Mounted())
}

func TestButtonString(t *testing.T) {
	assert.Equal(t, "toggle", ToggleButton.String())
	assert.Equal(t, "Button(7)", Button(7).String())
}

func TestApp_NoLeaksWithRealClock(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop := scheduler.NewLoop(scheduler.RealClock{})
	a := New(Config{Period: 2 * time.Millisecond}, loop)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	loop.Post(a.Mount)
	a.Press(ToggleButton)

	require.Eventually(t, func() bool {
		s := a.Snapshot()
		return s.Direct >= 2 && s.Reactive >= 2
	}, time.Second, time.Millisecond)

	closed := make(chan struct{})
	loop.Post(func() {
		a.Close()
		close(closed)
	})
	<-closed

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
