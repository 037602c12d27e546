package jobs

import (
	"log/slog"
	"sync"
)

// DefaultCapacity bounds the table when no capacity is configured.
const DefaultCapacity = 100

// Table is the authoritative record of tracked processes. Entries are kept in
// registration order, which is also ID order since IDs only grow.
//
// A slice with linear search is fine for the handful of jobs an interactive
// session holds.
type Table struct {
	mu       sync.RWMutex
	jobs     []Job
	nextID   int
	capacity int
	logger   *slog.Logger
}

// NewTable returns an empty table holding at most capacity jobs.
func NewTable(capacity int, logger *slog.Logger) *Table {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Table{
		jobs:     make([]Job, 0, capacity),
		nextID:   1,
		capacity: capacity,
		logger:   logger,
	}
}

// Register records pid under the next job ID. When the table is full it
// returns a zero-ID job together with ErrTableFull and no ID is consumed, so
// the caller can still report the untracked process.
func (t *Table) Register(pid int, cmd string, state State) (Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.jobs) >= t.capacity {
		t.logger.Warn("job table full",
			slog.Int("pid", pid),
			slog.Int("capacity", t.capacity),
		)
		return Job{PID: pid, State: state, Cmd: cmd}, ErrTableFull
	}

	job := Job{
		ID:    t.nextID,
		PID:   pid,
		State: state,
		Cmd:   cmd,
	}
	t.jobs = append(t.jobs, job)
	t.nextID++

	t.logger.Debug("job registered",
		slog.Int("job_id", job.ID),
		slog.Int("pid", pid),
		slog.String("state", state.String()),
	)
	return job, nil
}

// Remove drops the entry for pid. Unknown pids are ignored.
func (t *Table) Remove(pid int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.jobs {
		if t.jobs[i].PID == pid {
			t.jobs = append(t.jobs[:i], t.jobs[i+1:]...)
			t.logger.Debug("job removed", slog.Int("pid", pid))
			return
		}
	}
}

// SetState updates the state of the entry for pid. Unknown pids are ignored.
func (t *Table) SetState(pid int, state State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.jobs {
		if t.jobs[i].PID == pid {
			t.jobs[i].State = state
			return
		}
	}
}

func (t *Table) FindByPID(pid int) (Job, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, job := range t.jobs {
		if job.PID == pid {
			return job, true
		}
	}
	return Job{}, false
}

func (t *Table) FindByID(id int) (Job, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, job := range t.jobs {
		if job.ID == id {
			return job, true
		}
	}
	return Job{}, false
}

// List returns a copy of the entries in ID order.
func (t *Table) List() []Job {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]Job, len(t.jobs))
	copy(result, t.jobs)
	return result
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.jobs)
}

func (t *Table) Cap() int {
	return t.capacity
}
