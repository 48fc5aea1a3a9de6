// Package tasks implements the fixed-size worker pool that executes build
// actions. Waiting is reentrant: a goroutine blocked in Wait keeps pulling
// queued tasks instead of parking, so a pool of N workers survives N+1
// simultaneous waits without deadlocking.
package tasks

import (
	"sync"
)

// TaskID identifies a scheduled task.
type TaskID int

// TaskStatus is the observable lifecycle state of a task.
type TaskStatus uint8

const (
	StatusUnknown TaskStatus = iota
	StatusPending
	StatusExecuting
	StatusSuccessful
	StatusFailed
)

func (s TaskStatus) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusExecuting:
		return "Executing"
	case StatusSuccessful:
		return "Successful"
	case StatusFailed:
		return "Failed"
	}
	return "Unknown"
}

// Terminal reports whether the task has finished, either way.
func (s TaskStatus) Terminal() bool {
	return s == StatusSuccessful || s == StatusFailed
}

// TaskContext is handed to every task body. The body must set Successful
// explicitly; a task that never does is treated as failed.
type TaskContext struct {
	Successful bool
}

// ActionFn is a task body.
type ActionFn func(*TaskContext)

// TaskSet is a set of task ids, used to wait on a group.
type TaskSet map[TaskID]struct{}

func (s TaskSet) Add(id TaskID) { s[id] = struct{}{} }

type task struct {
	fn     ActionFn
	status TaskStatus
}

// Scheduler is a fixed-size worker pool with an explicit task queue.
// The goroutine that owns the Scheduler participates as a worker through
// Wait, so a Scheduler built for J jobs starts J-1 pool workers.
type Scheduler struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []TaskID
	tasks  map[TaskID]*task
	nextID TaskID
	closed bool
	wg     sync.WaitGroup
}

// NewScheduler starts a scheduler for the given total job count.
// jobs <= 1 starts no pool workers: all tasks run on goroutines that Wait.
func NewScheduler(jobs int) *Scheduler {
	s := &Scheduler{
		tasks: make(map[TaskID]*task),
	}
	s.cond = sync.NewCond(&s.mu)

	workers := jobs - 1
	for range max(workers, 0) {
		s.wg.Add(1)
		go s.workerLoop()
	}
	return s
}

// Reserve registers fn and returns its id without making it runnable.
// The id can be handed to waiters before Start; they block until the
// task is started and finishes. Every reserved task must be started.
func (s *Scheduler) Reserve(fn ActionFn) TaskID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register(fn)
}

// Start makes a reserved task runnable. With sameThread set it executes
// synchronously on the calling goroutine instead of being queued; the
// job walk uses this for the last child of every fan-out to bound
// goroutine growth.
func (s *Scheduler) Start(id TaskID, sameThread bool) {
	if !sameThread {
		s.mu.Lock()
		s.queue = append(s.queue, id)
		s.mu.Unlock()
		s.cond.Signal()
		return
	}
	s.mu.Lock()
	s.tasks[id].status = StatusExecuting
	s.mu.Unlock()
	s.execute(id)
}

// Add reserves and immediately starts fn, returning its id.
func (s *Scheduler) Add(fn ActionFn, sameThread bool) TaskID {
	id := s.Reserve(fn)
	s.Start(id, sameThread)
	return id
}

// Run enqueues fn for dispatch to an idle worker (or to a waiting
// goroutine). Used for scheduling top-level independent work, one task
// per unit.
func (s *Scheduler) Run(fn ActionFn) TaskID {
	return s.Add(fn, false)
}

// Wait blocks until every task in ids reaches a terminal state. While
// blocked, the calling goroutine pulls and executes queued tasks instead of
// sleeping. Returns true iff every waited task succeeded.
func (s *Scheduler) Wait(ids TaskSet) bool {
	s.mu.Lock()
	for {
		if done, ok := s.allTerminal(ids); done {
			s.mu.Unlock()
			return ok
		}
		if len(s.queue) > 0 {
			id := s.pop()
			s.mu.Unlock()
			s.execute(id)
			s.mu.Lock()
			continue
		}
		s.cond.Wait()
	}
}

// WaitAll blocks until every task scheduled so far is terminal.
// Returns true iff all of them succeeded.
func (s *Scheduler) WaitAll() bool {
	s.mu.Lock()
	all := make(TaskSet, len(s.tasks))
	for id := range s.tasks {
		all.Add(id)
	}
	s.mu.Unlock()
	return s.Wait(all)
}

// Status returns the observable status of id.
func (s *Scheduler) Status(id TaskID) TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return StatusUnknown
	}
	return t.status
}

// AllSuccessful reports whether every task in ids is terminal and succeeded.
// Unlike Wait it does not block.
func (s *Scheduler) AllSuccessful(ids TaskSet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	done, ok := s.allTerminal(ids)
	return done && ok
}

// Close lets pool workers drain the queue and exit. No tasks may be added
// after Close.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()
	s.wg.Wait()
}

func (s *Scheduler) register(fn ActionFn) TaskID {
	s.nextID++
	id := s.nextID
	s.tasks[id] = &task{fn: fn, status: StatusPending}
	return id
}

// pop removes and returns the next queued task id, marking it Executing.
// Caller must hold mu.
func (s *Scheduler) pop() TaskID {
	id := s.queue[0]
	s.queue = s.queue[1:]
	s.tasks[id].status = StatusExecuting
	return id
}

func (s *Scheduler) allTerminal(ids TaskSet) (done, successful bool) {
	successful = true
	for id := range ids {
		t, ok := s.tasks[id]
		if !ok {
			continue
		}
		if !t.status.Terminal() {
			return false, false
		}
		if t.status != StatusSuccessful {
			successful = false
		}
	}
	return true, successful
}

func (s *Scheduler) execute(id TaskID) {
	s.mu.Lock()
	fn := s.tasks[id].fn
	s.tasks[id].fn = nil
	s.mu.Unlock()

	ctx := TaskContext{}
	fn(&ctx)

	s.mu.Lock()
	if ctx.Successful {
		s.tasks[id].status = StatusSuccessful
	} else {
		s.tasks[id].status = StatusFailed
	}
	s.mu.Unlock()
	s.cond.Broadcast()
}

func (s *Scheduler) workerLoop() {
	defer s.wg.Done()
	s.mu.Lock()
	for {
		if len(s.queue) > 0 {
			id := s.pop()
			s.mu.Unlock()
			s.execute(id)
			s.mu.Lock()
			continue
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.cond.Wait()
	}
}
