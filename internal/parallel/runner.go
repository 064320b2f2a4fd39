package parallel

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/imgray/internal/filter"
	"github.com/gogpu/imgray/internal/image"
)

// ErrCancelled is returned by Run when the context is cancelled while tile
// results are being collected. It is returned only after the pool has been
// closed and its workers joined.
var ErrCancelled = errors.New("parallel: run cancelled")

// State is a phase of the coordinator.
type State int

// Coordinator states, in the order they are entered.
const (
	StateCreated State = iota
	StateMasked
	StateDispatching
	StateCollecting
	StateCompleted
	StateCancelled
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateMasked:
		return "masked"
	case StateDispatching:
		return "dispatching"
	case StateCollecting:
		return "collecting"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// pendingTile pairs a submitted job with the segment it covers.
type pendingTile struct {
	seg    Segment
	result *Future[*image.Image]
}

// outcome is what the dispatch/collect phases hand back to Run.
type outcome struct {
	dst       *image.Image
	cancelled bool
	cause     error
	err       error
}

// Run converts src to grayscale on a pool of worker goroutines.
//
// The image is split into n x n tiles, where n is the pool size. One job per
// tile is submitted in order; results are awaited in the same order and
// pasted into a destination allocated up front. If ctx is cancelled during
// collection, the remaining jobs are terminated and Run returns an error
// wrapping ErrCancelled and the context cause. On every exit path the pool
// is closed and joined before Run returns. src is never modified.
func Run(ctx context.Context, src *image.Image, opts ...Option) (*image.Image, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.filter == nil {
		o.filter = filter.Apply
	}

	o.enter(StateCreated)

	n := o.workers
	if n < 1 {
		n = o.parallelism()
	}
	if n < 1 {
		n = 1
	}

	pool := startPool(&o, n)

	var res outcome
	func() {
		defer func() {
			pool.Close()
			o.enter(StateClosed)
		}()
		res = dispatchAndCollect(ctx, &o, pool, src, n)
	}()

	switch {
	case res.err != nil:
		return nil, res.err
	case res.cancelled:
		return nil, fmt.Errorf("%w: %w", ErrCancelled, res.cause)
	default:
		return res.dst, nil
	}
}

// startPool builds the pool with interrupts held. The hold covers pool
// construction only; dispatch and collection run unmasked.
func startPool(o *options, n int) *WorkerPool {
	o.enter(StateMasked)
	release := o.masker.Hold()
	defer release()
	return NewWorkerPool(n)
}

func dispatchAndCollect(ctx context.Context, o *options, pool *WorkerPool, src *image.Image, n int) outcome {
	o.enter(StateDispatching)

	segments, err := ComputeSegments(src.Width, src.Height, n)
	if err != nil {
		return outcome{err: err}
	}
	slogger().Debug("parallel: dispatching tiles",
		"width", src.Width, "height", src.Height,
		"workers", n, "tiles", len(segments))

	apply := o.filter
	pending := make([]pendingTile, 0, len(segments))
	for _, seg := range segments {
		tile, err := src.SubImage(seg.X0, seg.X1, seg.Y0, seg.Y1)
		if err != nil {
			pool.Terminate()
			return outcome{err: fmt.Errorf("parallel: tile %s: %w", seg, err)}
		}
		result := Go(pool, func() (*image.Image, error) {
			return apply(tile), nil
		})
		pending = append(pending, pendingTile{seg: seg, result: result})
	}

	dst, err := image.New(src.Width, src.Height)
	if err != nil {
		pool.Terminate()
		return outcome{err: err}
	}

	o.enter(StateCollecting)
	for i, pt := range pending {
		if ctx.Err() != nil {
			return cancelCollection(ctx, o, pool, i, len(pending))
		}

		tile, err := pt.result.Wait(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return cancelCollection(ctx, o, pool, i, len(pending))
			}
			pool.Terminate()
			return outcome{err: fmt.Errorf("parallel: tile %s: %w", pt.seg, err)}
		}

		if tile.Width != pt.seg.Width() || tile.Height != pt.seg.Height() {
			pool.Terminate()
			return outcome{err: fmt.Errorf("parallel: tile %s: filter returned %dx%d",
				pt.seg, tile.Width, tile.Height)}
		}
		if err := dst.Paste(pt.seg.X0, pt.seg.Y0, tile); err != nil {
			pool.Terminate()
			return outcome{err: err}
		}

		if o.tileHook != nil {
			o.tileHook(pt.seg)
		}
	}

	o.enter(StateCompleted)
	return outcome{dst: dst}
}

// cancelCollection stops collection after an observed cancellation.
func cancelCollection(ctx context.Context, o *options, pool *WorkerPool, collected, total int) outcome {
	pool.Terminate()
	o.enter(StateCancelled)
	cause := context.Cause(ctx)
	slogger().Warn("parallel: run cancelled",
		"collected", collected, "tiles", total, "cause", cause)
	return outcome{cancelled: true, cause: cause}
}

func (o *options) enter(s State) {
	if o.stateHook != nil {
		o.stateHook(s)
	}
}
