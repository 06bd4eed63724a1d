// Package debounce coalesces bursts of calls into one trailing call.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delays fn until wait has passed without another Call. Only the
// argument of the latest call in a burst reaches fn.
type Debouncer[T any] struct {
	wait time.Duration
	fn   func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	arg     T
	seq     int // invalidates timers that were stopped too late
}

// New returns a Debouncer that calls fn wait after the last Call.
func New[T any](wait time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{wait: wait, fn: fn}
}

// Wait returns the configured delay.
func (d *Debouncer[T]) Wait() time.Duration {
	return d.wait
}

// Call schedules fn(arg), replacing any pending call.
func (d *Debouncer[T]) Call(arg T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.arg = arg
	d.pending = true
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, func() { d.fire(seq) })
}

// Flush runs a pending call now, on the caller's goroutine. No-op when
// nothing is pending.
func (d *Debouncer[T]) Flush() {
	arg, ok := d.take(-1)
	if ok {
		d.fn(arg)
	}
}

// Cancel drops a pending call.
func (d *Debouncer[T]) Cancel() {
	d.take(-1)
}

// Pending reports whether a call is waiting.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer[T]) fire(seq int) {
	arg, ok := d.take(seq)
	if ok {
		d.fn(arg)
	}
}

// take clears the pending call and returns its argument. seq < 0 matches
// any pending call.
func (d *Debouncer[T]) take(seq int) (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var zero T
	if !d.pending || (seq >= 0 && seq != d.seq) {
		return zero, false
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	arg := d.arg
	d.arg = zero
	d.pending = false
	d.seq++
	return arg, true
}
