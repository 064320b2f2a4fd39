package imgray

import "github.com/gogpu/imgray/internal/parallel"

// Masker suppresses interrupt delivery while the worker pool is built.
type Masker = parallel.Masker

// Option configures a Converter during creation.
//
// Example:
//
//	conv := imgray.New(
//		imgray.WithWorkers(8),
//		imgray.WithDevice(imgray.OpenCPU),
//	)
type Option func(*options)

// options holds optional configuration for a Converter.
type options struct {
	workers int
	masker  Masker
	open    func() (Device, error)
}

// defaultOptions returns the default converter options.
func defaultOptions() options {
	return options{
		workers: 0,   // Parallelism at run time
		open:    nil, // Process-wide HAL context
	}
}

// WithWorkers fixes the number of host workers, which is also the side of
// the tile grid. Values below 1 use the number of CPUs available to the
// process.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMasker sets the interrupt mask held while the host worker pool is
// constructed.
func WithMasker(m Masker) Option {
	return func(o *options) {
		o.masker = m
	}
}

// WithDevice selects the device for ModeDevice. open is called once, on
// the first device run, and the device is closed by Converter.Close.
// Without this option the process-wide GPU context is used.
func WithDevice(open func() (Device, error)) Option {
	return func(o *options) {
		o.open = open
	}
}
