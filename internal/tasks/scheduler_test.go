package tasks

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunAndWait(t *testing.T) {
	s := NewScheduler(4)
	defer s.Close()

	var ran atomic.Int32
	ids := make(TaskSet)
	for range 16 {
		id := s.Run(func(ctx *TaskContext) {
			ran.Add(1)
			ctx.Successful = true
		})
		ids.Add(id)
	}
	if !s.Wait(ids) {
		t.Fatalf("Wait reported failure for all-successful tasks")
	}
	if got := ran.Load(); got != 16 {
		t.Fatalf("ran %d tasks, want 16", got)
	}
}

func TestFailureAggregation(t *testing.T) {
	s := NewScheduler(2)
	defer s.Close()

	ids := make(TaskSet)
	ids.Add(s.Run(func(ctx *TaskContext) { ctx.Successful = true }))
	ids.Add(s.Run(func(ctx *TaskContext) {}))
	ids.Add(s.Run(func(ctx *TaskContext) { ctx.Successful = true }))

	if s.Wait(ids) {
		t.Fatalf("Wait reported success despite a failed task")
	}
}

func TestUnsetSuccessfulMeansFailed(t *testing.T) {
	s := NewScheduler(1)
	defer s.Close()

	id := s.Run(func(ctx *TaskContext) {})
	if s.Wait(TaskSet{id: {}}) {
		t.Fatalf("task that never set Successful must fail")
	}
	if got := s.Status(id); got != StatusFailed {
		t.Fatalf("status = %v, want Failed", got)
	}
}

func TestStatusSurface(t *testing.T) {
	s := NewScheduler(2)
	defer s.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	id := s.Run(func(ctx *TaskContext) {
		close(started)
		<-release
		ctx.Successful = true
	})
	<-started
	if got := s.Status(id); got != StatusExecuting {
		t.Fatalf("status = %v, want Executing", got)
	}
	close(release)
	if !s.Wait(TaskSet{id: {}}) {
		t.Fatalf("task failed")
	}
	if got := s.Status(id); got != StatusSuccessful {
		t.Fatalf("status = %v, want Successful", got)
	}
	if got := s.Status(TaskID(9999)); got != StatusUnknown {
		t.Fatalf("status of unknown id = %v, want Unknown", got)
	}
}

// A goroutine blocked in Wait must execute queued work itself, so more
// concurrent waiters than pool workers cannot deadlock.
func TestReentrantWait(t *testing.T) {
	s := NewScheduler(1) // no pool workers at all
	defer s.Close()

	// Parent tasks that each wait on a child. With zero workers, every
	// body runs on a goroutine stuck in Wait.
	done := make(chan bool, 4)
	for range 4 {
		go func() {
			childSet := make(TaskSet)
			childSet.Add(s.Run(func(ctx *TaskContext) { ctx.Successful = true }))
			done <- s.Wait(childSet)
		}()
	}
	for range 4 {
		select {
		case ok := <-done:
			if !ok {
				t.Fatalf("child task failed")
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("deadlock: waiter never finished")
		}
	}
}

// A dependency chain of depth K on a single-job scheduler must complete
// without spawning a goroutine per level.
func TestDeepChainSingleJob(t *testing.T) {
	s := NewScheduler(1)
	defer s.Close()

	before := runtime.NumGoroutine()

	const depth = 200
	var schedule func(level int) TaskID
	schedule = func(level int) TaskID {
		return s.Add(func(ctx *TaskContext) {
			if level > 0 {
				dep := make(TaskSet)
				dep.Add(schedule(level - 1))
				if !s.Wait(dep) {
					return
				}
			}
			ctx.Successful = true
		}, level%2 == 0) // alternate inline and queued scheduling
	}

	top := make(TaskSet)
	top.Add(schedule(depth))
	if !s.Wait(top) {
		t.Fatalf("chain did not complete successfully")
	}

	after := runtime.NumGoroutine()
	if after > before+8 {
		t.Fatalf("goroutine count grew from %d to %d", before, after)
	}
}

func TestSameThreadRunsSynchronously(t *testing.T) {
	s := NewScheduler(1)
	defer s.Close()

	ran := false
	id := s.Add(func(ctx *TaskContext) {
		ran = true
		ctx.Successful = true
	}, true)
	if !ran {
		t.Fatalf("sameThread task did not run before Add returned")
	}
	if got := s.Status(id); got != StatusSuccessful {
		t.Fatalf("status = %v, want Successful", got)
	}
}

func TestWaitAll(t *testing.T) {
	s := NewScheduler(3)
	defer s.Close()

	var ran atomic.Int32
	for i := range 10 {
		i := i
		s.Run(func(ctx *TaskContext) {
			ran.Add(1)
			ctx.Successful = i != 7
		})
	}
	if s.WaitAll() {
		t.Fatalf("WaitAll reported success despite one failure")
	}
	if got := ran.Load(); got != 10 {
		t.Fatalf("ran %d tasks, want 10", got)
	}
}
