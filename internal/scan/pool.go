package scan

import (
	"runtime"
	"sync"
)

// chunkJob is a contiguous range of work items for one worker.
type chunkJob struct {
	lo, hi int
	fn     func(i int)
	done   *sync.WaitGroup
}

// WorkerPool runs indexed work on a fixed set of long-lived goroutines.
// Each Run call is a barrier: it returns only after every item has finished.
type WorkerPool struct {
	workers int
	jobs    chan chunkJob
	wg      sync.WaitGroup
	once    sync.Once
}

// NewWorkerPool starts a pool. workers <= 0 uses one worker per CPU.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	wp := &WorkerPool{
		workers: workers,
		jobs:    make(chan chunkJob, workers*2),
	}
	for i := 0; i < workers; i++ {
		wp.wg.Add(1)
		go func() {
			defer wp.wg.Done()
			for job := range wp.jobs {
				for i := job.lo; i < job.hi; i++ {
					job.fn(i)
				}
				job.done.Done()
			}
		}()
	}
	return wp
}

// Workers returns the number of goroutines in the pool.
func (wp *WorkerPool) Workers() int { return wp.workers }

// Run calls fn(i) for every i in [0, n) across the pool and waits for all calls.
func (wp *WorkerPool) Run(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if wp.workers == 1 || n == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	size := (n + wp.workers*4 - 1) / (wp.workers * 4)
	var done sync.WaitGroup
	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		done.Add(1)
		wp.jobs <- chunkJob{lo: lo, hi: hi, fn: fn, done: &done}
	}
	done.Wait()
}

// Close stops the workers. Run must not be called afterwards.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		close(wp.jobs)
		wp.wg.Wait()
	})
}
