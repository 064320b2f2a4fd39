// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/imgray/internal/image"
)

// Dispatcher runs the grayscale kernel on the device of a Context.
//
// The kernel is compiled on first use and reused by later runs on the same
// device. Thread safety: Dispatcher is safe for concurrent use; launches are
// serialized.
type Dispatcher struct {
	ctx *Context

	mu        sync.Mutex
	kernel    Kernel
	kernelDev Device
}

// NewDispatcher returns a dispatcher using ctx. A nil ctx selects Default().
func NewDispatcher(ctx *Context) *Dispatcher {
	if ctx == nil {
		ctx = Default()
	}
	return &Dispatcher{ctx: ctx}
}

// Run converts img to grayscale on the device and returns a new image.
//
// The launch grid is validated before the kernel is compiled or any plane is
// uploaded; a grid over the device limit fails with ErrGridTooLarge and no
// device work. Compile and launch failures are reported as
// *KernelCompileError and *KernelLaunchError. img is never modified.
func (d *Dispatcher) Run(img *image.Image) (*image.Image, error) {
	if img.Empty() {
		return image.New(img.Width, img.Height)
	}

	dev, err := d.ctx.Device()
	if err != nil {
		return nil, err
	}

	cfg, err := NewLaunchConfig(img.Width, img.Height)
	if err != nil {
		return nil, err
	}
	maxX, maxY := dev.MaxGridDim()
	if err := cfg.Validate(maxX, maxY); err != nil {
		return nil, err
	}

	planes, err := splitPlanes(img)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	kernel, err := d.kernelFor(dev)
	if err != nil {
		return nil, err
	}

	slogger().Debug("gpu: launching kernel",
		"kernel", luminanceKernel, "device", dev.Name(),
		"grid_x", cfg.GridX, "grid_y", cfg.GridY, "block", BlockSize)

	if err := kernel.Launch(cfg, planes); err != nil {
		var le *KernelLaunchError
		if errors.As(err, &le) {
			return nil, err
		}
		return nil, &KernelLaunchError{Kernel: luminanceKernel, Config: cfg, Err: err}
	}

	return image.MergePlanes(planes[0], planes[1], planes[2])
}

// kernelFor returns the cached kernel for dev, compiling it if needed.
// Must be called with d.mu held.
func (d *Dispatcher) kernelFor(dev Device) (Kernel, error) {
	if d.kernel != nil && d.kernelDev == dev {
		return d.kernel, nil
	}
	if d.kernel != nil {
		d.kernel.Release()
		d.kernel, d.kernelDev = nil, nil
	}

	k, err := dev.Compile(LuminanceShader)
	if err != nil {
		var ce *KernelCompileError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, &KernelCompileError{Kernel: luminanceKernel, Device: dev.Name(), Err: err}
	}
	if k == nil {
		return nil, &KernelCompileError{Kernel: luminanceKernel, Device: dev.Name(),
			Err: errors.New("device returned no kernel")}
	}

	slogger().Debug("gpu: kernel compiled", "kernel", luminanceKernel, "device", dev.Name())
	d.kernel, d.kernelDev = k, dev
	return k, nil
}

// Close releases the cached kernel. The context is not closed.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.kernel != nil {
		d.kernel.Release()
		d.kernel, d.kernelDev = nil, nil
	}
}

// splitPlanes copies each channel of img into its own plane, one goroutine
// per channel.
func splitPlanes(img *image.Image) ([image.Channels]*image.Plane, error) {
	var planes [image.Channels]*image.Plane
	var g errgroup.Group
	for c := range image.Channels {
		g.Go(func() error {
			planes[c] = image.ExtractPlane(img, c)
			if len(planes[c].Pix) != img.Width*img.Height {
				return fmt.Errorf("gpu: plane %d has %d samples, want %d",
					c, len(planes[c].Pix), img.Width*img.Height)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return planes, err
	}
	return planes, nil
}
