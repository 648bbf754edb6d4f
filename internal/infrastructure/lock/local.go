package lock

import (
	"context"
	"sync/atomic"

	"CrimeScanner/internal/ports"
)

// Local is an in-process sweep guard.
type Local struct {
	held atomic.Bool
}

var _ ports.SweepLock = (*Local)(nil)

// NewLocal returns an unlocked guard.
func NewLocal() *Local {
	return &Local{}
}

// TryAcquire never blocks; release is idempotent.
func (l *Local) TryAcquire(_ context.Context) (func(), bool, error) {
	if !l.held.CompareAndSwap(false, true) {
		return nil, false, nil
	}

	var once atomic.Bool
	release := func() {
		if once.CompareAndSwap(false, true) {
			l.held.Store(false)
		}
	}
	return release, true, nil
}
