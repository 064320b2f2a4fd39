package gpu

import (
	"sync/atomic"

	"github.com/gogpu/imgray/internal/image"
)

// mockDevice wraps a CPUDevice and records every call, optionally failing
// compilation or launch.
type mockDevice struct {
	cpu *CPUDevice

	compileErr error
	launchErr  error

	compiles atomic.Int64
	launches atomic.Int64
	releases atomic.Int64
	closes   atomic.Int64
}

func newMockDevice(maxX, maxY uint32) *mockDevice {
	return &mockDevice{cpu: NewCPUDevice(maxX, maxY)}
}

func (d *mockDevice) Name() string { return "mock" }

func (d *mockDevice) MaxGridDim() (x, y uint32) { return d.cpu.MaxGridDim() }

func (d *mockDevice) Compile(source string) (Kernel, error) {
	d.compiles.Add(1)
	if d.compileErr != nil {
		return nil, d.compileErr
	}
	k, err := d.cpu.Compile(source)
	if err != nil {
		return nil, err
	}
	return &mockKernel{dev: d, inner: k}, nil
}

func (d *mockDevice) Close() { d.closes.Add(1) }

type mockKernel struct {
	dev   *mockDevice
	inner Kernel
}

func (k *mockKernel) Launch(cfg LaunchConfig, planes [image.Channels]*image.Plane) error {
	k.dev.launches.Add(1)
	if k.dev.launchErr != nil {
		return k.dev.launchErr
	}
	return k.inner.Launch(cfg, planes)
}

func (k *mockKernel) Release() { k.dev.releases.Add(1) }

// contextFor returns a Context that opens dev.
func contextFor(dev Device) *Context {
	return NewContext(func() (Device, error) { return dev, nil })
}
