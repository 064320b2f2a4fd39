package gpu

import _ "embed"

// Embedded WGSL kernel sources.

// LuminanceShader is the grayscale kernel. Entry point: main.
//
//go:embed shaders/luminance.wgsl
var LuminanceShader string

// luminanceKernel names the kernel in errors and logs.
const luminanceKernel = "luminance"

// kernelEntryPoint is the compute entry point of every embedded kernel.
const kernelEntryPoint = "main"
