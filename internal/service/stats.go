package service

import (
	"sync"
	"sync/atomic"
	"time"
)

// stats holds the engine's internal counters. LastActivity moves whenever a
// task finishes or a manual rollback lands.
type stats struct {
	tasksExecuted     atomic.Int64
	changesCommitted  atomic.Int64
	changesRolledBack atomic.Int64

	mu           sync.Mutex
	lastActivity time.Time
}

func (s *stats) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now().UTC()
	s.mu.Unlock()
}

func (s *stats) last() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Stats is the engine's boundary snapshot of counters and queue depth.
type Stats struct {
	TasksExecuted     int64     `json:"tasks_executed"`
	ChangesCommitted  int64     `json:"changes_committed"`
	ChangesRolledBack int64     `json:"changes_rolled_back"`
	ActiveAgents      int       `json:"active_agents"`
	QueuedTasks       int       `json:"queued_tasks"`
	InFlightTasks     int       `json:"in_flight_tasks"`
	LastActivity      time.Time `json:"last_activity"`
}

// Stats returns a point-in-time view of the engine. Works whether or not
// the loop is running.
func (s *Orchestrator) Stats() Stats {
	s.mu.Lock()
	active := 0
	for c, on := range s.enabled {
		if on && s.agents[c] != nil {
			active++
		}
	}
	s.mu.Unlock()

	return Stats{
		TasksExecuted:     s.stats.tasksExecuted.Load(),
		ChangesCommitted:  s.stats.changesCommitted.Load(),
		ChangesRolledBack: s.stats.changesRolledBack.Load(),
		ActiveAgents:      active,
		QueuedTasks:       s.tasks.Len(),
		InFlightTasks:     s.tasks.InFlight(),
		LastActivity:      s.stats.last(),
	}
}
