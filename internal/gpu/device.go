package gpu

import (
	"sync"

	"github.com/gogpu/imgray/internal/image"
)

// Device is a compute device able to build and run grayscale kernels.
type Device interface {
	// Name identifies the device in logs and errors.
	Name() string

	// MaxGridDim returns the maximum number of blocks along each grid axis.
	MaxGridDim() (x, y uint32)

	// Compile builds kernel source into a launchable kernel.
	Compile(source string) (Kernel, error)

	// Close releases the device. Kernels compiled on it become invalid.
	Close()
}

// Kernel is a compiled kernel bound to the device that built it.
type Kernel interface {
	// Launch runs the kernel over cfg and blocks until it completes. The
	// planes are rewritten in place; on error their contents are undefined.
	Launch(cfg LaunchConfig, planes [image.Channels]*image.Plane) error

	// Release frees device resources held by the kernel.
	Release()
}

// Context is an explicit, lazily opened handle to a compute device.
//
// The device is opened on the first call to Device. An open failure is
// remembered and returned to every later caller.
type Context struct {
	open func() (Device, error)

	mu     sync.Mutex
	opened bool
	closed bool
	dev    Device
	err    error
}

// NewContext returns a context that obtains its device from open.
func NewContext(open func() (Device, error)) *Context {
	return &Context{open: open}
}

// Device returns the context's device, opening it on first use.
func (c *Context) Device() (Device, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrContextClosed
	}
	if !c.opened {
		c.opened = true
		c.dev, c.err = c.open()
		if c.err == nil && c.dev == nil {
			c.err = ErrNoDevice
		}
		if c.err != nil {
			slogger().Warn("gpu: device open failed", "err", c.err)
		} else {
			slogger().Info("gpu: device opened", "device", c.dev.Name())
		}
	}
	return c.dev, c.err
}

// Opened reports whether the device has been requested at least once.
func (c *Context) Opened() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened
}

// Close closes the device, if one was opened. Later calls to Device return
// ErrContextClosed. Close is safe to call multiple times.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.dev != nil {
		c.dev.Close()
		c.dev = nil
	}
}

var defaultContext = sync.OnceValue(func() *Context {
	return NewContext(OpenHAL)
})

// Default returns the process-wide context backed by OpenHAL.
func Default() *Context {
	return defaultContext()
}
