// Package pool bounds the engine's concurrent dispatch workers.
package pool

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool runs functions on at most limit concurrent goroutines using a
// weighted semaphore. The dispatcher acquires a slot before dequeuing a
// task, so queued tasks stay queued until a worker is free.
type Pool struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// New creates a Pool allowing at most limit concurrent workers.
func New(limit int) *Pool {
	if limit < 1 {
		limit = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(limit))}
}

// TryGo runs fn on a new goroutine if a worker slot is free, reporting
// whether it was started. The slot is released when fn returns.
func (p *Pool) TryGo(fn func()) bool {
	if !p.sem.TryAcquire(1) {
		return false
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		fn()
	}()
	return true
}

// Go runs fn on a new goroutine, blocking until a worker slot is free.
// Returns ctx.Err() if the context is cancelled while waiting.
func (p *Pool) Go(ctx context.Context, fn func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		fn()
	}()
	return nil
}

// Wait blocks until every started worker has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}
