package explorer

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Lock is a single-slot mutual exclusion lock whose Acquire can be abandoned
// through its context.
type Lock struct {
	sem *semaphore.Weighted
}

// NewLock returns an unlocked Lock.
func NewLock() *Lock {
	return &Lock{sem: semaphore.NewWeighted(1)}
}

// Acquire blocks until the lock is free or ctx is done.
func (l *Lock) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// Release frees the lock. Must pair with a successful Acquire.
func (l *Lock) Release() {
	l.sem.Release(1)
}
