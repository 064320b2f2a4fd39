package imgray

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/imgray/internal/gpu"
	"github.com/gogpu/imgray/internal/parallel"
)

// Converter runs grayscale conversions on either execution path.
//
// Both paths produce identical output for the same input. Thread safety:
// Converter is safe for concurrent use.
type Converter struct {
	opts options

	devCtx      *gpu.Context
	ownsContext bool
	dispatcher  *gpu.Dispatcher

	mu     sync.RWMutex
	closed bool
}

// New creates a converter.
func New(opts ...Option) *Converter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Converter{opts: o}
	if o.open != nil {
		c.devCtx = gpu.NewContext(o.open)
		c.ownsContext = true
	} else {
		c.devCtx = gpu.Default()
	}
	c.dispatcher = gpu.NewDispatcher(c.devCtx)
	return c
}

// Convert converts img with the given mode. ctx cancels host runs only;
// a device launch always runs to completion.
func (c *Converter) Convert(ctx context.Context, img *Image, mode Mode) (*Image, error) {
	switch mode {
	case ModeHost:
		return c.RunParallel(ctx, img)
	case ModeDevice:
		return c.RunOnDevice(img)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
}

// RunParallel converts img on the host worker pool. It returns an error
// wrapping ErrCancelled if ctx is cancelled while results are collected.
func (c *Converter) RunParallel(ctx context.Context, img *Image) (*Image, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrClosed
	}

	opts := []parallel.Option{parallel.WithWorkers(c.opts.workers)}
	if c.opts.masker != nil {
		opts = append(opts, parallel.WithMasker(c.opts.masker))
	}

	start := time.Now()
	out, err := parallel.Run(ctx, img, opts...)
	if err != nil {
		return nil, err
	}
	Logger().Info("imgray: converted",
		"mode", ModeHost, "width", img.Width, "height", img.Height,
		"elapsed", time.Since(start))
	return out, nil
}

// RunOnDevice converts img with one kernel launch on the converter's
// device.
func (c *Converter) RunOnDevice(img *Image) (*Image, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrClosed
	}

	start := time.Now()
	out, err := c.dispatcher.Run(img)
	if err != nil {
		return nil, err
	}
	Logger().Info("imgray: converted",
		"mode", ModeDevice, "width", img.Width, "height", img.Height,
		"elapsed", time.Since(start))
	return out, nil
}

// Close releases the compiled kernel and, for a device chosen with
// WithDevice, the device itself. The process-wide GPU context stays open.
// Close is safe to call multiple times.
func (c *Converter) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true

	c.dispatcher.Close()
	if c.ownsContext {
		c.devCtx.Close()
	}
}
