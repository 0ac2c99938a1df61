package service

import (
	"context"
	"sync"
)

// leaseTable serializes change attempts per asset. A lease is held for the
// duration of one in-flight attempt; holding it guarantees at most one
// pending change record per asset.
type leaseTable struct {
	mu   sync.Mutex
	held map[string]chan struct{} // closed when the lease is released
}

func newLeaseTable() *leaseTable {
	return &leaseTable{held: make(map[string]chan struct{})}
}

// TryAcquire takes the lease for key, reporting false when it is already
// held. The dispatch path uses this: contention requeues the task instead
// of blocking a worker.
func (l *leaseTable) TryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[key]; busy {
		return false
	}
	l.held[key] = make(chan struct{})
	return true
}

// Acquire blocks until the lease for key is free or ctx is done. The manual
// rollback path uses this: an operator request waits out in-flight work
// rather than racing it.
func (l *leaseTable) Acquire(ctx context.Context, key string) error {
	for {
		l.mu.Lock()
		wait, busy := l.held[key]
		if !busy {
			l.held[key] = make(chan struct{})
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Release frees the lease for key and wakes blocked acquirers. Releasing an
// unheld lease is a no-op.
func (l *leaseTable) Release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if wait, busy := l.held[key]; busy {
		close(wait)
		delete(l.held, key)
	}
}

// Held reports how many leases are currently taken.
func (l *leaseTable) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}
