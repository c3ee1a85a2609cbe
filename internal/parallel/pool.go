// Package parallel provides the worker pool, dirty-tile bitmap, and tile
// grid backing the renderer's per-tile and per-element parallelism.
//
// The canvas is divided into 64x64 pixel tiles rendered independently; the
// dirty bitmap tracks which tiles need redrawing between frames. WorkerPool
// and DirtyRegion are safe for concurrent use; TileGrid is not and belongs
// to the single renderer goroutine.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/shirou/gopsutil/v3/cpu"
)

// DefaultWorkers returns the worker count used when a pool is created with
// workers <= 0: the physical core count when it can be determined, else
// runtime.NumCPU. Evaluation work is compute-bound, so hyperthread siblings
// rarely help.
func DefaultWorkers() int {
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// WorkerPool runs closures across a fixed set of goroutines.
//
// Each worker owns a queue and steals from the others when its own runs
// dry, which keeps the pool balanced when tiles differ wildly in cost
// (an empty background tile versus one crossed by every element).
type WorkerPool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewWorkerPool creates and starts a pool. workers <= 0 selects
// DefaultWorkers().
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range p.queues {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]

	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case job := <-own:
			if job != nil {
				job()
			}
		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case job := <-own:
				if job != nil {
					job()
				}
			}
		}
	}
}

func (p *WorkerPool) drain(queue chan func()) {
	for {
		select {
		case job := <-queue:
			if job != nil {
				job()
			}
		default:
			return
		}
	}
}

func (p *WorkerPool) steal(self int) func() {
	for i := range p.workers {
		if i == self {
			continue
		}
		select {
		case job := <-p.queues[i]:
			return job
		default:
		}
	}
	return nil
}

// ExecuteAll distributes the jobs round-robin and blocks until every one
// has run. A closed pool ignores the call.
func (p *WorkerPool) ExecuteAll(jobs []func()) {
	if len(jobs) == 0 || !p.running.Load() {
		return
	}

	var pending sync.WaitGroup
	pending.Add(len(jobs))
	for i, fn := range jobs {
		job := fn
		wrapped := func() {
			defer pending.Done()
			job()
		}
		select {
		case p.queues[i%p.workers] <- wrapped:
		case <-p.done:
			pending.Done()
		}
	}
	pending.Wait()
}

// Submit queues a single job on the shortest queue without waiting for it.
func (p *WorkerPool) Submit(fn func()) {
	if fn == nil || !p.running.Load() {
		return
	}
	shortest := 0
	for i := 1; i < p.workers; i++ {
		if len(p.queues[i]) < len(p.queues[shortest]) {
			shortest = i
		}
	}
	select {
	case p.queues[shortest] <- fn:
	case <-p.done:
	}
}

// Close stops the pool after running everything already queued. Safe to
// call more than once.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the pool's worker count.
func (p *WorkerPool) Workers() int { return p.workers }
