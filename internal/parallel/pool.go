package parallel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Pool errors.
var (
	// ErrTerminated resolves futures whose job was dropped by Terminate
	// before it started.
	ErrTerminated = errors.New("parallel: job terminated before it started")

	// ErrPoolClosed resolves futures submitted to a closed pool.
	ErrPoolClosed = errors.New("parallel: pool is closed")

	// ErrJobPanicked wraps the value recovered from a panicking job.
	ErrJobPanicked = errors.New("parallel: job panicked")
)

// task is one queued unit of work. drop is called instead of run when the
// pool has been terminated before the task started.
type task struct {
	run  func()
	drop func()
}

// WorkerPool is a fixed-size pool of goroutines.
//
// The pool distributes work items across multiple workers, each with their own
// queue. Workers can steal work from other workers when their own queue is empty.
// This helps balance load when some tiles are slower than others.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	// workers is the number of worker goroutines.
	workers int

	// workQueues holds per-worker work queues.
	// Each worker primarily pulls from its own queue but can steal from others.
	workQueues []chan task

	// closing is closed first by Close and releases submitters blocked on a
	// full queue.
	closing chan struct{}

	// mu orders submissions before the worker shutdown. submit holds it for
	// reading; Close takes it for writing before closing done.
	mu sync.RWMutex

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool

	// terminated makes workers drop queued tasks instead of running them.
	terminated atomic.Bool

	// active counts worker goroutines that have not exited.
	active atomic.Int64

	// queueSize is the buffer size for each worker's queue.
	queueSize int
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// If workers is 0 or negative, Parallelism() is used.
// The pool starts immediately and workers begin waiting for work.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = Parallelism()
	}

	// Buffer size: 2-4x workers helps hide latency
	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan task, workers),
		closing:    make(chan struct{}),
		done:       make(chan struct{}),
		queueSize:  queueSize,
	}

	for i := range workers {
		p.workQueues[i] = make(chan task, queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	p.active.Add(int64(workers))
	for i := range workers {
		go p.worker(i)
	}

	slogger().Debug("parallel: pool started", "workers", workers, "queue_size", queueSize)
	return p
}

// worker is the main loop for each worker goroutine.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	defer p.active.Add(-1)

	myQueue := p.workQueues[id]

	for {
		select {
		case <-p.done:
			// Drain remaining work before exiting
			p.drainQueue(myQueue)
			return

		case t := <-myQueue:
			p.exec(t)

		default:
			// Try to steal work from another worker
			if stolen, ok := p.steal(id); ok {
				p.exec(stolen)
			} else {
				// No work available anywhere, block on own queue
				select {
				case <-p.done:
					p.drainQueue(myQueue)
					return
				case t := <-myQueue:
					p.exec(t)
				}
			}
		}
	}
}

// exec runs t, or drops it if the pool has been terminated.
func (p *WorkerPool) exec(t task) {
	if p.terminated.Load() {
		if t.drop != nil {
			t.drop()
		}
		return
	}
	if t.run != nil {
		t.run()
	}
}

// drainQueue executes (or, after Terminate, drops) all remaining work in a queue.
func (p *WorkerPool) drainQueue(queue chan task) {
	for {
		select {
		case t := <-queue:
			p.exec(t)
		default:
			return
		}
	}
}

// steal attempts to take work from another worker's queue.
func (p *WorkerPool) steal(myID int) (task, bool) {
	// Try each other worker's queue once
	for i := range p.workers {
		if i == myID {
			continue
		}

		select {
		case t := <-p.workQueues[i]:
			return t, true
		default:
			// Queue is empty, try next
		}
	}
	return task{}, false
}

// submit queues t on the worker with the shortest queue.
// Returns false if the pool is not accepting work. A task queued by submit is
// always run or dropped by a worker: Close cannot stop the workers while a
// submit is in progress.
func (p *WorkerPool) submit(t task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.IsRunning() || p.IsTerminated() {
		return false
	}

	// Find worker with shortest queue (simple load balancing)
	minLen := len(p.workQueues[0])
	minIdx := 0

	for i := 1; i < p.workers; i++ {
		qLen := len(p.workQueues[i])
		if qLen < minLen {
			minLen = qLen
			minIdx = i
		}
	}

	select {
	case p.workQueues[minIdx] <- t:
		return true
	case <-p.closing:
		return false
	}
}

// Terminate drops every queued job that has not started yet. Jobs already
// running finish normally. Futures of dropped jobs resolve with
// ErrTerminated. Terminate does not wait; call Close to join the workers.
func (p *WorkerPool) Terminate() {
	if !p.terminated.CompareAndSwap(false, true) {
		return
	}
	slogger().Debug("parallel: pool terminated", "queued", p.QueuedWork())
}

// Close shuts down the pool.
// It stops accepting new work, waits for queued work to complete (or be
// dropped after Terminate), and then joins all workers.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		// Already closed
		return
	}

	close(p.closing)

	// Wait out in-flight submissions, then signal workers to stop
	p.mu.Lock()
	close(p.done)
	p.mu.Unlock()

	// Wait for all workers to finish
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}

// IsTerminated returns true once Terminate has been called.
func (p *WorkerPool) IsTerminated() bool {
	return p.terminated.Load()
}

// Active returns the number of worker goroutines that are still alive.
// It is zero once Close has returned.
func (p *WorkerPool) Active() int {
	return int(p.active.Load())
}

// QueuedWork returns the total number of work items currently queued.
// This is an approximation as queues can change while iterating.
func (p *WorkerPool) QueuedWork() int {
	total := 0
	for _, q := range p.workQueues {
		total += len(q)
	}
	return total
}

// Future is the pending result of a job submitted with Go.
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(val T, err error) {
	f.once.Do(func() {
		f.val = val
		f.err = err
		close(f.done)
	})
}

// Done returns a channel that is closed when the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the job has finished or ctx is done. In the latter case
// it returns the context's cause and the job keeps its slot in the pool.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, context.Cause(ctx)
	}
}

// Go submits fn to the pool and returns its future. A panic inside fn is
// recovered and reported as an error wrapping ErrJobPanicked.
func Go[T any](p *WorkerPool, fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	var zero T

	t := task{
		run: func() {
			defer func() {
				if r := recover(); r != nil {
					f.resolve(zero, fmt.Errorf("%w: %v", ErrJobPanicked, r))
				}
			}()
			val, err := fn()
			f.resolve(val, err)
		},
		drop: func() {
			f.resolve(zero, ErrTerminated)
		},
	}

	if !p.submit(t) {
		if p.IsTerminated() {
			f.resolve(zero, ErrTerminated)
		} else {
			f.resolve(zero, ErrPoolClosed)
		}
	}
	return f
}
