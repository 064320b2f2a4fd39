package parallel

import "github.com/gogpu/imgray/internal/image"

// Masker suppresses interrupt delivery while the pool is being built.
// Hold returns a release function; an interrupt arriving while held is
// deferred until release. interrupt.Source implements Masker.
type Masker interface {
	Hold() (release func())
}

// noMask is the Masker used when none is configured.
type noMask struct{}

func (noMask) Hold() func() { return func() {} }

// Option configures Run.
type Option func(*options)

// options holds optional configuration for Run.
type options struct {
	workers     int
	parallelism func() int
	masker      Masker
	filter      func(*image.Image) *image.Image
	tileHook    func(Segment)
	stateHook   func(State)
}

// defaultOptions returns the default run options.
func defaultOptions() options {
	return options{
		parallelism: Parallelism,
		masker:      noMask{},
	}
}

// WithWorkers fixes the pool size (and the n of the n x n tile grid).
// Values below 1 fall back to the parallelism query.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithParallelism replaces the platform parallelism query.
func WithParallelism(fn func() int) Option {
	return func(o *options) {
		if fn != nil {
			o.parallelism = fn
		}
	}
}

// WithMasker sets the interrupt mask held during pool construction.
func WithMasker(m Masker) Option {
	return func(o *options) {
		if m != nil {
			o.masker = m
		}
	}
}

// WithFilter replaces the per-tile transform. It defaults to filter.Apply.
func WithFilter(fn func(*image.Image) *image.Image) Option {
	return func(o *options) {
		o.filter = fn
	}
}

// WithTileHook registers a callback invoked by the coordinator after each
// tile has been written into the destination.
func WithTileHook(fn func(Segment)) Option {
	return func(o *options) {
		o.tileHook = fn
	}
}

// WithStateHook registers a callback invoked on every coordinator state
// transition.
func WithStateHook(fn func(State)) Option {
	return func(o *options) {
		o.stateHook = fn
	}
}
