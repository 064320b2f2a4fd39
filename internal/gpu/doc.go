// Package gpu runs the grayscale transform as a device kernel.
//
// The image is split into three channel planes, a 2-D grid of
// [BlockSize] x [BlockSize] thread blocks is sized to cover it, the grid is
// validated against the device limits, and a single kernel launch rewrites
// every plane in place with the pixel's luminance. The planes are then
// interleaved back into an image.
//
// # Devices
//
// A [Device] compiles kernel source and reports its grid limits. Two
// implementations are provided:
//
//   - [OpenHAL] opens a Vulkan adapter through gogpu/wgpu's HAL and compiles
//     the WGSL kernel to SPIR-V with naga. Build with -tags nogpu to leave it
//     out; OpenHAL then returns [ErrNoDevice].
//   - [NewCPUDevice] executes the kernel's grid and block structure on the
//     host. It accepts configurable limits, which makes grid validation
//     testable without hardware.
//
// Devices are reached through a [Context], which opens the device lazily on
// first use and keeps it for the life of the handle.
package gpu
