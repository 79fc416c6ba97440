package resource

import "time"

// DefaultDebounce is the delay between the last keystroke and the search
// commit.
const DefaultDebounce = 500 * time.Millisecond

// Debounce is the timer-free core of a debouncer. Every Input returns a
// sequence number; only the latest sequence may commit when its delay
// elapses, and only when the value differs from the last commit.
//
// Callers own the clock: the dashboard schedules a tea.Tick carrying the
// sequence and commits through List.Search.
type Debounce[T comparable] struct {
	seq       uint64
	pending   T
	waiting   bool
	committed T
}

// NewDebounce starts with initial as the committed value.
func NewDebounce[T comparable](initial T) *Debounce[T] {
	return &Debounce[T]{committed: initial}
}

// Input records v and returns its sequence number.
func (d *Debounce[T]) Input(v T) uint64 {
	d.seq++
	d.pending = v
	d.waiting = true
	return d.seq
}

// Elapsed is called when the delay for seq has passed. It returns the value to
// commit and true when seq is still the latest input and changed something.
func (d *Debounce[T]) Elapsed(seq uint64) (T, bool) {
	if seq != d.seq || !d.waiting {
		var zero T
		return zero, false
	}
	d.waiting = false
	if d.pending == d.committed {
		var zero T
		return zero, false
	}
	d.committed = d.pending
	return d.committed, true
}

// Seq returns the latest sequence number.
func (d *Debounce[T]) Seq() uint64 {
	return d.seq
}

// Committed returns the last committed value.
func (d *Debounce[T]) Committed() T {
	return d.committed
}

// Pending reports whether an input is waiting for its delay.
func (d *Debounce[T]) Pending() bool {
	return d.waiting
}
