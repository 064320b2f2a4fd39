package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// WorkerPool Creation Tests
// =============================================================================

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}

	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestWorkerPool_CreateZeroWorkers(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	expected := Parallelism()
	if pool.Workers() != expected {
		t.Errorf("Workers() = %d, want %d (Parallelism)", pool.Workers(), expected)
	}
}

func TestWorkerPool_CreateNegativeWorkers(t *testing.T) {
	pool := NewWorkerPool(-5)
	defer pool.Close()

	if pool.Workers() < 1 {
		t.Errorf("Workers() = %d, want >= 1", pool.Workers())
	}
}

// =============================================================================
// Go / Future Tests
// =============================================================================

func TestGo_Result(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	futures := make([]*Future[int], 100)
	for i := range futures {
		futures[i] = Go(pool, func() (int, error) { return i * i, nil })
	}

	for i, f := range futures {
		got, err := f.Wait(context.Background())
		if err != nil {
			t.Fatalf("future %d: error = %v", i, err)
		}
		if got != i*i {
			t.Errorf("future %d = %d, want %d", i, got, i*i)
		}
	}
}

func TestGo_Error(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	errBoom := errors.New("boom")
	f := Go(pool, func() (string, error) { return "", errBoom })

	if _, err := f.Wait(context.Background()); !errors.Is(err, errBoom) {
		t.Errorf("Wait() error = %v, want %v", err, errBoom)
	}
}

func TestGo_Panic(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	f := Go(pool, func() (int, error) { panic("bad tile") })

	_, err := f.Wait(context.Background())
	if !errors.Is(err, ErrJobPanicked) {
		t.Fatalf("Wait() error = %v, want ErrJobPanicked", err)
	}

	// The worker survives the panic
	g := Go(pool, func() (int, error) { return 7, nil })
	if v, err := g.Wait(context.Background()); err != nil || v != 7 {
		t.Errorf("Wait() after panic = (%d, %v), want (7, nil)", v, err)
	}
}

func TestGo_ClosedPool(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()

	f := Go(pool, func() (int, error) { return 1, nil })
	if _, err := f.Wait(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Wait() error = %v, want ErrPoolClosed", err)
	}
}

func TestFuture_WaitContextCancelled(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Close()

	release := make(chan struct{})
	f := Go(pool, func() (int, error) {
		<-release
		return 1, nil
	})

	errCause := errors.New("interrupted")
	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(errCause)

	if _, err := f.Wait(ctx); !errors.Is(err, errCause) {
		t.Errorf("Wait() error = %v, want context cause", err)
	}
	close(release)

	// The job still completes
	<-f.Done()
}

// =============================================================================
// Terminate Tests
// =============================================================================

func TestWorkerPool_TerminateDropsQueued(t *testing.T) {
	pool := NewWorkerPool(1)

	started := make(chan struct{})
	release := make(chan struct{})
	first := Go(pool, func() (int, error) {
		close(started)
		<-release
		return 1, nil
	})
	<-started

	var ran atomic.Int64
	queued := make([]*Future[int], 5)
	for i := range queued {
		queued[i] = Go(pool, func() (int, error) {
			ran.Add(1)
			return 0, nil
		})
	}

	pool.Terminate()
	if !pool.IsTerminated() {
		t.Error("IsTerminated() = false after Terminate")
	}
	close(release)
	pool.Close()

	if v, err := first.Wait(context.Background()); err != nil || v != 1 {
		t.Errorf("running job = (%d, %v), want (1, nil)", v, err)
	}
	for i, f := range queued {
		if _, err := f.Wait(context.Background()); !errors.Is(err, ErrTerminated) {
			t.Errorf("queued job %d error = %v, want ErrTerminated", i, err)
		}
	}
	if ran.Load() != 0 {
		t.Errorf("%d queued jobs ran after Terminate", ran.Load())
	}
	if pool.Active() != 0 {
		t.Errorf("Active() = %d after Close, want 0", pool.Active())
	}
}

func TestWorkerPool_SubmitAfterTerminate(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	pool.Terminate()
	pool.Terminate() // idempotent

	f := Go(pool, func() (int, error) { return 1, nil })
	if _, err := f.Wait(context.Background()); !errors.Is(err, ErrTerminated) {
		t.Errorf("Wait() error = %v, want ErrTerminated", err)
	}
}

// =============================================================================
// Close Race Tests
// =============================================================================

func TestWorkerPool_CloseDuringSubmission(t *testing.T) {
	for round := range 50 {
		pool := NewWorkerPool(2)

		const submitters, jobs = 4, 100
		futures := make(chan *Future[int], submitters*jobs)
		var wg sync.WaitGroup
		wg.Add(submitters)
		for range submitters {
			go func() {
				defer wg.Done()
				for j := range jobs {
					futures <- Go(pool, func() (int, error) { return j, nil })
				}
			}()
		}

		pool.Close()
		wg.Wait()
		close(futures)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		for f := range futures {
			_, err := f.Wait(ctx)
			if err != nil && !errors.Is(err, ErrPoolClosed) {
				cancel()
				t.Fatalf("round %d: Wait() error = %v, want nil or ErrPoolClosed", round, err)
			}
		}
		cancel()

		if pool.Active() != 0 {
			t.Fatalf("round %d: Active() = %d after Close, want 0", round, pool.Active())
		}
	}
}

// =============================================================================
// Close Tests
// =============================================================================

func TestWorkerPool_Close(t *testing.T) {
	pool := NewWorkerPool(4)

	if pool.Active() != 4 {
		t.Errorf("Active() = %d before close, want 4", pool.Active())
	}

	pool.Close()

	if pool.IsRunning() {
		t.Error("Pool should not be running after close")
	}
	if pool.Active() != 0 {
		t.Errorf("Active() = %d after close, want 0", pool.Active())
	}
}

func TestWorkerPool_CloseIdempotent(t *testing.T) {
	pool := NewWorkerPool(4)

	// Multiple closes should not panic
	pool.Close()
	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Error("Pool should not be running after close")
	}
}

func TestWorkerPool_CloseDrainsQueued(t *testing.T) {
	pool := NewWorkerPool(2)

	var counter atomic.Int64
	futures := make([]*Future[int], 100)
	for i := range futures {
		futures[i] = Go(pool, func() (int, error) {
			counter.Add(1)
			return i, nil
		})
	}

	pool.Close()

	if counter.Load() != 100 {
		t.Errorf("completed %d jobs before Close returned, want 100", counter.Load())
	}
}

// =============================================================================
// Concurrency Tests
// =============================================================================

func TestWorkerPool_Concurrent(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	numGoroutines := 10
	numTasksPerGoroutine := 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for g := 0; g < numGoroutines; g++ {
		go func() {
			defer wg.Done()

			futures := make([]*Future[struct{}], numTasksPerGoroutine)
			for i := range futures {
				futures[i] = Go(pool, func() (struct{}, error) {
					counter.Add(1)
					return struct{}{}, nil
				})
			}
			for _, f := range futures {
				_, _ = f.Wait(context.Background())
			}
		}()
	}

	wg.Wait()

	expected := int64(numGoroutines * numTasksPerGoroutine)
	if counter.Load() != expected {
		t.Errorf("counter = %d, want %d", counter.Load(), expected)
	}
}

func TestWorkerPool_NoGoroutineLeak(t *testing.T) {
	// Get baseline goroutine count
	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	baseline := runtime.NumGoroutine()

	for i := 0; i < 5; i++ {
		pool := NewWorkerPool(4)

		for j := 0; j < 100; j++ {
			Go(pool, func() (int, error) { return j, nil })
		}

		pool.Close()
	}

	// Allow goroutines to clean up
	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	final := runtime.NumGoroutine()

	// Allow for some variance (test framework goroutines, etc.)
	if final > baseline+2 {
		t.Errorf("goroutine count: baseline=%d, final=%d (leak detected)", baseline, final)
	}
}

func TestParallelism(t *testing.T) {
	n := Parallelism()
	if n < 1 {
		t.Fatalf("Parallelism() = %d, want >= 1", n)
	}
	if n > runtime.NumCPU() {
		t.Errorf("Parallelism() = %d exceeds NumCPU() = %d", n, runtime.NumCPU())
	}
}
