package reactive

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	firm "github.com/davidroman0O/firm-counter"
	"github.com/davidroman0O/firm-counter/internal/scheduler"
)

type buttons struct {
	increment *firm.Emitter[struct{}]
	decrement *firm.Emitter[struct{}]
	reset     *firm.Emitter[struct{}]
	toggle    *firm.Emitter[struct{}]
}

func (b buttons) inputs() Inputs {
	return Inputs{
		Increment: firm.Events(b.increment),
		Decrement: firm.Events(b.decrement),
		Reset:     firm.Events(b.reset),
		Toggle:    firm.Events(b.toggle),
	}
}

func (b buttons) click(op Operation) {
	switch op {
	case Increment:
		b.increment.Emit(struct{}{})
	case Decrement:
		b.decrement.Emit(struct{}{})
	case Reset:
		b.reset.Emit(struct{}{})
	}
}

type fixture struct {
	clock   *scheduler.ManualClock
	loop    *scheduler.Loop
	owner   *firm.Owner
	buttons buttons
	counter *Counter
}

func newFixture(t *testing.T, seed int, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{
		clock: scheduler.NewManualClock(),
		owner: firm.NewOwner(),
	}
	f.loop = scheduler.NewLoop(f.clock)
	f.buttons = buttons{
		increment: firm.NewEmitter[struct{}](f.owner),
		decrement: firm.NewEmitter[struct{}](f.owner),
		reset:     firm.NewEmitter[struct{}](f.owner),
		toggle:    firm.NewEmitter[struct{}](f.owner),
	}
	f.counter = New(f.owner, f.loop, f.buttons.inputs(), seed, opts...)
	return f
}

func (f *fixture) wait(periods int) {
	f.clock.Advance(time.Duration(periods) * DefaultPeriod)
	f.loop.Drain()
}

func TestOperationApply(t *testing.T) {
	assert.Equal(t, 4, Increment.Apply(3))
	assert.Equal(t, 2, Decrement.Apply(3))
	assert.Equal(t, 0, Reset.Apply(3))
	assert.Equal(t, 0, Reset.Apply(-17))
	assert.Equal(t, "decrement", Decrement.String())
	assert.Equal(t, "Operation(9)", Operation(9).String())
	assert.Panics(t, func() { Operation(9).Apply(1) })
}

func TestFold(t *testing.T) {
	assert.Equal(t, 5, Fold(5))
	assert.Equal(t, 1, Fold(0, Increment, Increment, Decrement))
	assert.Equal(t, 2, Fold(10, Increment, Reset, Increment, Increment))
}

func TestLabelFlip(t *testing.T) {
	assert.Equal(t, Started, Stopped.Flip())
	assert.Equal(t, Stopped, Started.Flip())
}

func TestCounter_FoldProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	all := []Operation{Increment, Decrement, Reset}

	for run := 0; run < 50; run++ {
		seed := rng.Intn(41) - 20
		f := newFixture(t, seed)

		var ops []Operation
		for i := rng.Intn(30); i > 0; i-- {
			op := all[rng.Intn(len(all))]
			ops = append(ops, op)
			f.buttons.click(op)
			require.Equal(t, Fold(seed, ops...), f.counter.Value(), "run %d ops %v", run, ops)
		}

		f.owner.Dispose()
	}
}

func TestCounter_ResetIsLiteralZero(t *testing.T) {
	f := newFixture(t, 9)

	f.buttons.click(Increment)
	f.buttons.click(Reset)
	assert.Equal(t, 0, f.counter.Value())

	f.buttons.click(Decrement)
	assert.Equal(t, -1, f.counter.Value())
}

func TestCounter_SubscribersSeeEveryFoldOutput(t *testing.T) {
	f := newFixture(t, 0)

	var seen []int
	f.counter.Subscribe(func(v int) { seen = append(seen, v) })

	for _, op := range []Operation{Reset, Increment, Decrement, Reset} {
		f.buttons.click(op)
	}

	assert.Equal(t, []int{0, 1, 0, 0}, seen)
}

func TestCounter_SeedIsReadOnce(t *testing.T) {
	f := newFixture(t, 3)
	assert.Equal(t, 3, f.counter.Value())
	assert.Equal(t, Stopped, f.counter.Label())
}

func TestCounter_NPeriodsGiveNIncrements(t *testing.T) {
	f := newFixture(t, 0)

	f.buttons.toggle.Emit(struct{}{})
	assert.Equal(t, Started, f.counter.Label())

	f.wait(4)
	assert.Equal(t, 4, f.counter.Value())
}

func TestCounter_ToggleWithinOnePeriod(t *testing.T) {
	f := newFixture(t, 0)

	f.buttons.toggle.Emit(struct{}{})
	f.clock.Advance(DefaultPeriod / 2)
	f.loop.Drain()
	f.buttons.toggle.Emit(struct{}{})

	f.wait(3)
	assert.Equal(t, 0, f.counter.Value())
	assert.Equal(t, Stopped, f.counter.Label())
	assert.Zero(t, f.clock.Active())
}

func TestCounter_AtMostOneTickSequence(t *testing.T) {
	f := newFixture(t, 0)

	for i := 0; i < 5; i++ {
		f.buttons.toggle.Emit(struct{}{})
		assert.LessOrEqual(t, f.clock.Active(), 1)
	}

	// Odd number of toggles leaves it started
	f.wait(2)
	assert.Equal(t, 2, f.counter.Value())
}

func TestCounter_TicksMergeWithClicks(t *testing.T) {
	f := newFixture(t, 0)

	f.buttons.toggle.Emit(struct{}{})
	f.wait(1)
	f.buttons.click(Increment)
	f.buttons.click(Decrement)
	f.wait(1)

	assert.Equal(t, 2, f.counter.Value())
}

func TestCounter_TeardownCancelsTicks(t *testing.T) {
	f := newFixture(t, 5)

	f.buttons.toggle.Emit(struct{}{})
	f.owner.Dispose()
	assert.Zero(t, f.clock.Active())

	f.wait(3)

	var spied []int
	f.counter.Subscribe(func(v int) { spied = append(spied, v) })
	f.wait(3)

	assert.Equal(t, 5, f.counter.Value())
	assert.Empty(t, spied)
	assert.Zero(t, f.buttons.toggle.Len())
}

func TestCounter_StopReleasesSubscriptions(t *testing.T) {
	f := newFixture(t, 0)
	defer f.owner.Dispose()

	f.buttons.toggle.Emit(struct{}{})
	f.counter.Stop()
	f.counter.Stop()

	assert.Zero(t, f.clock.Active())
	assert.Zero(t, f.buttons.increment.Len())
	assert.Zero(t, f.buttons.toggle.Len())

	f.buttons.click(Increment)
	assert.Equal(t, 0, f.counter.Value())
}

func TestCounter_NilInputsNeverEmit(t *testing.T) {
	owner := firm.NewOwner()
	defer owner.Dispose()

	clicks := firm.NewEmitter[struct{}](owner)
	c := New(owner, scheduler.NewLoop(scheduler.NewManualClock()), Inputs{Decrement: firm.Events(clicks)}, 1)

	clicks.Emit(struct{}{})
	assert.Equal(t, 0, c.Value())
}

func TestCounter_StepHookAndPeriod(t *testing.T) {
	var steps []Step
	f := newFixture(t, 0, WithPeriod(100*time.Millisecond), WithPeriod(-1), WithStepHook(func(s Step) {
		steps = append(steps, s)
	}))

	f.buttons.toggle.Emit(struct{}{})
	f.clock.Advance(300 * time.Millisecond)
	f.loop.Drain()
	f.buttons.click(Reset)

	assert.Equal(t, []Step{
		{Op: Increment, Value: 1},
		{Op: Increment, Value: 2},
		{Op: Increment, Value: 3},
		{Op: Reset, Value: 0},
	}, steps)
}

func TestCounter_GoldenSession(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture(t, 5, WithStepHook(func(s Step) {
		fmt.Fprintf(&buf, "  %s %d\n", s.Op, s.Value)
	}))
	f.counter.LabelSignal().Subscribe(func(l Label) {
		fmt.Fprintf(&buf, "  label %s\n", l)
	})

	click := func(name string, e *firm.Emitter[struct{}]) {
		fmt.Fprintf(&buf, "> %s\n", name)
		e.Emit(struct{}{})
	}
	wait := func(periods int) {
		fmt.Fprintf(&buf, "> wait %v\n", time.Duration(periods)*DefaultPeriod)
		f.wait(periods)
	}

	click("increment", f.buttons.increment)
	click("increment", f.buttons.increment)
	click("decrement", f.buttons.decrement)
	click("toggle", f.buttons.toggle)
	wait(3)
	click("decrement", f.buttons.decrement)
	click("toggle", f.buttons.toggle)
	wait(2)
	click("reset", f.buttons.reset)
	click("increment", f.buttons.increment)

	g := goldie.New(t)
	g.Assert(t, "reactive_session", buf.Bytes())
}
