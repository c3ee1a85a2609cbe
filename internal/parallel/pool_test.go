package parallel

import (
	"sync/atomic"
	"testing"
)

func TestExecuteAllRunsEverything(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	jobs := make([]func(), 100)
	for i := range jobs {
		jobs[i] = func() { counter.Add(1) }
	}

	pool.ExecuteAll(jobs)
	if got := counter.Load(); got != 100 {
		t.Errorf("executed %d jobs, want 100", got)
	}
}

func TestExecuteAllUnevenCost(t *testing.T) {
	// Stealing keeps the pool busy when job costs differ; every job must
	// still run exactly once.
	pool := NewWorkerPool(3)
	defer pool.Close()

	var counter atomic.Int64
	jobs := make([]func(), 64)
	for i := range jobs {
		heavy := i%8 == 0
		jobs[i] = func() {
			if heavy {
				sum := 0
				for j := 0; j < 100000; j++ {
					sum += j
				}
				_ = sum
			}
			counter.Add(1)
		}
	}

	pool.ExecuteAll(jobs)
	if got := counter.Load(); got != 64 {
		t.Errorf("executed %d jobs, want 64", got)
	}
}

func TestExecuteAllAfterClose(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close() // second close is a no-op

	var counter atomic.Int64
	pool.ExecuteAll([]func(){func() { counter.Add(1) }})
	if counter.Load() != 0 {
		t.Error("closed pool executed work")
	}
}

func TestDefaultWorkers(t *testing.T) {
	if DefaultWorkers() < 1 {
		t.Errorf("DefaultWorkers() = %d, want >= 1", DefaultWorkers())
	}
	pool := NewWorkerPool(0)
	defer pool.Close()
	if pool.Workers() < 1 {
		t.Errorf("Workers() = %d, want >= 1", pool.Workers())
	}
}
