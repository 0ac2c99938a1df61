// Package taskqueue implements the priority queue feeding the engine's
// dispatch loop. Higher priority dequeues first; equal priorities dequeue
// in enqueue order. At most one live task exists per (capability, asset key)
// pair, counting both queued and dispatched tasks.
package taskqueue

import (
	"container/heap"
	"fmt"
	"log/slog"
	"sync"

	"github.com/stewardhq/steward/internal/domain"
	"github.com/stewardhq/steward/internal/domain/capability"
	"github.com/stewardhq/steward/internal/domain/task"
)

type pairKey struct {
	capability capability.Capability
	assetKey   string
}

// item is a heap entry. index is maintained by Swap so Cancel can remove
// entries from the middle of the heap.
type item struct {
	task  *task.Task
	seq   uint64
	index int
}

type taskHeap []*item

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].task.Priority != h[j].task.Priority {
		return h[i].task.Priority > h[j].task.Priority
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	it := x.(*item)
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// Queue is a concurrency-safe priority queue of tasks.
type Queue struct {
	mu       sync.Mutex
	ready    taskHeap
	queued   map[string]*item      // queued tasks by ID
	inflight map[string]*task.Task // dispatched tasks by ID
	pairs    map[pairKey]struct{}  // live (capability, asset key) pairs
	seq      uint64
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{
		queued:   make(map[string]*item),
		inflight: make(map[string]*task.Task),
		pairs:    make(map[pairKey]struct{}),
	}
}

// Enqueue adds t to the queue and reports whether it was accepted. A task
// whose (capability, asset key) pair already has a queued or dispatched
// task is dropped.
func (q *Queue) Enqueue(t task.Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	k := pairKey{t.Capability, t.AssetKey}
	if _, live := q.pairs[k]; live {
		slog.Debug("task dropped as duplicate",
			"capability", string(t.Capability),
			"asset_key", t.AssetKey)
		return false
	}

	t.Status = task.StatusQueued
	q.push(&t)
	q.pairs[k] = struct{}{}
	return true
}

// Next pops the highest-priority task and marks it dispatched. It reports
// false when no tasks are queued.
func (q *Queue) Next() (task.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.ready.Len() == 0 {
		return task.Task{}, false
	}

	it := heap.Pop(&q.ready).(*item)
	delete(q.queued, it.task.ID)

	it.task.Status = task.StatusDispatched
	q.inflight[it.task.ID] = it.task
	return *it.task, true
}

// Requeue returns a dispatched task to the queue with its priority lowered
// by one, never below 1. Used when dispatch loses the asset lease race.
func (q *Queue) Requeue(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	t, ok := q.inflight[id]
	if !ok {
		return fmt.Errorf("requeue task %s: %w", id, domain.ErrNotFound)
	}
	delete(q.inflight, id)

	if t.Priority > 1 {
		t.Priority--
	}
	t.Status = task.StatusQueued
	q.push(t)
	return nil
}

// Cancel removes a queued task. Dispatched tasks cannot be cancelled;
// in-flight agent work always runs to completion.
func (q *Queue) Cancel(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	it, ok := q.queued[id]
	if !ok {
		if _, dispatched := q.inflight[id]; dispatched {
			return fmt.Errorf("cancel task %s: already dispatched", id)
		}
		return fmt.Errorf("cancel task %s: %w", id, domain.ErrNotFound)
	}

	heap.Remove(&q.ready, it.index)
	delete(q.queued, id)
	delete(q.pairs, pairKey{it.task.Capability, it.task.AssetKey})
	it.task.Status = task.StatusCancelled
	return nil
}

// Complete marks a dispatched task done and frees its (capability, asset key)
// pair for future enqueues. Unknown IDs are ignored.
func (q *Queue) Complete(id string) {
	q.finish(id, task.StatusDone)
}

// Fail marks a dispatched task failed and frees its (capability, asset key)
// pair for future enqueues. Unknown IDs are ignored.
func (q *Queue) Fail(id string) {
	q.finish(id, task.StatusFailed)
}

// Len reports the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ready.Len()
}

// InFlight reports the number of dispatched tasks.
func (q *Queue) InFlight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.inflight)
}

// push adds t to the ready heap with the next FIFO sequence number.
// Caller holds q.mu.
func (q *Queue) push(t *task.Task) {
	q.seq++
	it := &item{task: t, seq: q.seq}
	heap.Push(&q.ready, it)
	q.queued[t.ID] = it
}

func (q *Queue) finish(id string, st task.Status) {
	q.mu.Lock()
	defer q.mu.Unlock()

	t, ok := q.inflight[id]
	if !ok {
		return
	}
	delete(q.inflight, id)
	delete(q.pairs, pairKey{t.Capability, t.AssetKey})
	t.Status = st
}
