package imgray

import (
	"errors"

	"github.com/gogpu/imgray/internal/gpu"
	"github.com/gogpu/imgray/internal/parallel"
)

// Errors reported by conversions.
var (
	// ErrCancelled is returned when a host run is cancelled while results
	// are being collected. The worker pool has been shut down by the time
	// it is returned. The error also wraps the context's cause.
	ErrCancelled = parallel.ErrCancelled

	// ErrGridTooLarge is returned when the image needs more thread blocks
	// than the device supports. No device work has been done.
	ErrGridTooLarge = gpu.ErrGridTooLarge

	// ErrPlaneTooLarge is wrapped by the KernelLaunchError of an image too
	// large for one storage binding on the device. Nothing was uploaded.
	ErrPlaneTooLarge = gpu.ErrPlaneTooLarge

	// ErrNoDevice is returned when no compute device can be opened.
	ErrNoDevice = gpu.ErrNoDevice

	// ErrUnknownMode is returned for an unrecognized execution mode.
	ErrUnknownMode = errors.New("imgray: unknown mode")

	// ErrClosed is returned by a Converter after Close.
	ErrClosed = errors.New("imgray: converter closed")
)

// KernelCompileError reports that the device could not build the kernel.
type KernelCompileError = gpu.KernelCompileError

// KernelLaunchError reports a failed kernel launch.
type KernelLaunchError = gpu.KernelLaunchError
