// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/imgray/internal/filter"
	"github.com/gogpu/imgray/internal/image"
)

// CPUDevice executes kernels on the host by walking the launch grid block by
// block and thread by thread, with the same bounds check the device kernel
// applies. Rows of blocks run concurrently.
//
// Its grid limits are configurable, and it counts compilations and launches.
type CPUDevice struct {
	maxX, maxY uint32

	compiles atomic.Int64
	launches atomic.Int64
	closed   atomic.Bool
}

var _ Device = (*CPUDevice)(nil)

// NewCPUDevice returns a host device reporting the given grid maxima.
func NewCPUDevice(maxX, maxY uint32) *CPUDevice {
	return &CPUDevice{maxX: maxX, maxY: maxY}
}

// OpenCPU opens a host device with the default WebGPU grid limits.
func OpenCPU() (Device, error) {
	return NewCPUDevice(DefaultMaxGridDim, DefaultMaxGridDim), nil
}

func (d *CPUDevice) Name() string { return "cpu" }

func (d *CPUDevice) MaxGridDim() (x, y uint32) { return d.maxX, d.maxY }

// Compile accepts any source declaring a compute entry point; the kernel it
// returns always performs the grayscale transform.
func (d *CPUDevice) Compile(source string) (Kernel, error) {
	if d.closed.Load() {
		return nil, ErrContextClosed
	}
	if !strings.Contains(source, "@compute") || !strings.Contains(source, "fn "+kernelEntryPoint) {
		return nil, errors.New("cpu: no compute entry point " + kernelEntryPoint)
	}
	d.compiles.Add(1)
	return &cpuKernel{dev: d}, nil
}

func (d *CPUDevice) Close() { d.closed.Store(true) }

// Compiles returns the number of successful Compile calls.
func (d *CPUDevice) Compiles() int64 { return d.compiles.Load() }

// Launches returns the number of kernel launches started.
func (d *CPUDevice) Launches() int64 { return d.launches.Load() }

type cpuKernel struct {
	dev *CPUDevice
}

func (k *cpuKernel) Launch(cfg LaunchConfig, planes [image.Channels]*image.Plane) error {
	k.dev.launches.Add(1)

	if cfg.GridX > k.dev.maxX || cfg.GridY > k.dev.maxY {
		return fmt.Errorf("cpu: grid %dx%d exceeds axis limits %dx%d",
			cfg.GridX, cfg.GridY, k.dev.maxX, k.dev.maxY)
	}
	n := int(cfg.Width) * int(cfg.Height)
	for c, p := range planes {
		if p == nil || len(p.Pix) < n {
			return fmt.Errorf("cpu: plane %d smaller than %dx%d", c, cfg.Width, cfg.Height)
		}
	}

	r, g, b := planes[0].Pix, planes[1].Pix, planes[2].Pix
	width := int(cfg.Width)

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for by := range cfg.GridY {
		eg.Go(func() error {
			// Each thread row of a block covers a contiguous run of pixels.
			for bx := range cfg.GridX {
				x0 := bx * cfg.BlockX
				if x0 >= cfg.Width {
					break
				}
				x1 := min(x0+cfg.BlockX, cfg.Width)
				for ty := range cfg.BlockY {
					y := by*cfg.BlockY + ty
					if y >= cfg.Height {
						break
					}
					lo, hi := int(y)*width+int(x0), int(y)*width+int(x1)
					filter.ApplyPlanes(r[lo:hi], g[lo:hi], b[lo:hi])
				}
			}
			return nil
		})
	}
	return eg.Wait()
}

func (k *cpuKernel) Release() {}
