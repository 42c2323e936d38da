package reactive

import "fmt"

// Operation is a pure transition of the running total.
type Operation int

const (
	Increment Operation = iota
	Decrement
	Reset
)

// Apply returns the total after op. Reset always yields 0.
func (op Operation) Apply(n int) int {
	switch op {
	case Increment:
		return n + 1
	case Decrement:
		return n - 1
	case Reset:
		return 0
	default:
		panic(fmt.Sprintf("reactive: unknown operation %d", int(op)))
	}
}

func (op Operation) String() string {
	switch op {
	case Increment:
		return "increment"
	case Decrement:
		return "decrement"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("Operation(%d)", int(op))
	}
}

// Fold applies ops left to right starting from seed.
func Fold(seed int, ops ...Operation) int {
	acc := seed
	for _, op := range ops {
		acc = op.Apply(acc)
	}
	return acc
}

// Label is the auto-increment toggle state as seen by the stream side.
type Label string

const (
	Stopped Label = "stopped"
	Started Label = "started"
)

// Flip returns the other label.
func (l Label) Flip() Label {
	if l == Started {
		return Stopped
	}
	return Started
}
