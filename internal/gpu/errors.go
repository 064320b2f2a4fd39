package gpu

import (
	"errors"
	"fmt"
)

// Device errors.
var (
	// ErrNoDevice is returned when no compute device can be opened.
	ErrNoDevice = errors.New("gpu: no compute device available")

	// ErrGridTooLarge is returned when the launch grid exceeds the
	// device's maximum grid extents. It is reported before any device work.
	ErrGridTooLarge = errors.New("gpu: grid exceeds device limits")

	// ErrPlaneTooLarge is returned by a launch whose packed plane exceeds the
	// device's storage binding limit. It is reported before any upload.
	ErrPlaneTooLarge = errors.New("gpu: plane exceeds storage binding limit")

	// ErrContextClosed is returned by a Context that has been closed.
	ErrContextClosed = errors.New("gpu: context closed")
)

// KernelCompileError reports a failure to build kernel source for a device.
type KernelCompileError struct {
	Kernel string
	Device string
	Err    error
}

func (e *KernelCompileError) Error() string {
	return fmt.Sprintf("gpu: compile kernel %q on %s: %v", e.Kernel, e.Device, e.Err)
}

func (e *KernelCompileError) Unwrap() error { return e.Err }

// KernelLaunchError reports a failed or incomplete kernel launch.
type KernelLaunchError struct {
	Kernel string
	Config LaunchConfig
	Err    error
}

func (e *KernelLaunchError) Error() string {
	return fmt.Sprintf("gpu: launch kernel %q (%s): %v", e.Kernel, e.Config, e.Err)
}

func (e *KernelLaunchError) Unwrap() error { return e.Err }
