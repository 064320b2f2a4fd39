// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/imgray/internal/image"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// fenceTimeout bounds the wait for a submitted launch.
const fenceTimeout = 5 * time.Second

// halDevice is a compute device opened through wgpu/hal.
type halDevice struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	name     string
	limits   gputypes.Limits
}

var _ Device = (*halDevice)(nil)

// OpenHAL opens the first discrete or integrated Vulkan adapter, falling
// back to any adapter. It returns an error wrapping ErrNoDevice when no
// adapter can be opened.
func OpenHAL() (Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrNoDevice)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", ErrNoDevice, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no GPU adapters found", ErrNoDevice)
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
		slogger().Warn("gpu: no hardware adapter, using fallback", "adapter", selected.Info.Name)
	}

	limits := gputypes.DefaultLimits()
	openDev, err := selected.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %w", ErrNoDevice, err)
	}

	return &halDevice{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		name:     selected.Info.Name,
		limits:   limits,
	}, nil
}

func (d *halDevice) Name() string { return d.name }

// MaxGridDim reports the workgroups-per-dimension limit the device was
// opened with.
func (d *halDevice) MaxGridDim() (x, y uint32) {
	n := uint32(d.limits.MaxComputeWorkgroupsPerDimension)
	if n == 0 {
		n = DefaultMaxGridDim
	}
	return n, n
}

// maxPlaneSize is the largest storage buffer the device can bind.
func (d *halDevice) maxPlaneSize() uint64 {
	binding := uint64(d.limits.MaxStorageBufferBindingSize)
	if buf := uint64(d.limits.MaxBufferSize); buf > 0 && (binding == 0 || buf < binding) {
		return buf
	}
	return binding
}

// Compile translates WGSL to SPIR-V and builds the compute pipeline.
func (d *halDevice) Compile(source string) (Kernel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.device == nil {
		return nil, ErrContextClosed
	}

	spirv, err := compileSPIRV(source)
	if err != nil {
		return nil, err
	}

	k := &halKernel{dev: d}
	if err := k.build(spirv); err != nil {
		k.destroy()
		return nil, err
	}
	return k, nil
}

func (d *halDevice) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.queue = nil
}

// compileSPIRV compiles WGSL source to SPIR-V words.
func compileSPIRV(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("naga: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("naga: SPIR-V length %d is not a multiple of 4", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}

// halKernel is the grayscale compute pipeline on a halDevice.
type halKernel struct {
	dev *halDevice

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
}

func (k *halKernel) build(spirv []uint32) error {
	device := k.dev.device

	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "luminance",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	k.shader = shader

	storage := &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}
	readOnly := &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}
	bindLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "luminance_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: storage},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: readOnly},
			{Binding: 3, Visibility: gputypes.ShaderStageCompute, Buffer: readOnly},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	k.bindLayout = bindLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "luminance_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{k.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	k.pipeLayout = pipeLayout

	pipeline, err := device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "luminance_pipeline", Layout: k.pipeLayout,
		Compute: hal.ComputeState{Module: k.shader, EntryPoint: kernelEntryPoint},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	k.pipeline = pipeline
	return nil
}

// Launch uploads the packed planes, dispatches the grid, copies the red
// plane (which receives the luminance) to a staging buffer and reads it back
// into all three planes.
func (k *halKernel) Launch(cfg LaunchConfig, planes [image.Channels]*image.Plane) error {
	k.dev.mu.Lock()
	defer k.dev.mu.Unlock()

	if k.dev.device == nil || k.pipeline == nil {
		return errors.New("kernel released")
	}
	device, queue := k.dev.device, k.dev.queue

	n := int(cfg.Width) * int(cfg.Height)
	for c, p := range planes {
		if p == nil || len(p.Pix) < n {
			return fmt.Errorf("plane %d smaller than %dx%d", c, cfg.Width, cfg.Height)
		}
	}
	planeSize := planeBufferSize(n)
	if err := checkPlaneSize(planeSize, k.dev.maxPlaneSize()); err != nil {
		return err
	}

	var res launchResources
	defer res.destroy(device)

	params, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "luminance_params", Size: paramsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create params buffer: %w", err)
	}
	res.buffers = append(res.buffers, params)
	queue.WriteBuffer(params, 0, packParams(cfg))

	var storage [image.Channels]hal.Buffer
	for c := range image.Channels {
		storage[c], err = device.CreateBuffer(&hal.BufferDescriptor{
			Label: "luminance_plane", Size: planeSize,
			Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create plane buffer %d: %w", c, err)
		}
		res.buffers = append(res.buffers, storage[c])
		queue.WriteBuffer(storage[c], 0, packPlane(planes[c].Pix[:n]))
	}

	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "luminance_staging", Size: planeSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	res.buffers = append(res.buffers, staging)

	bg, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "luminance_bind", Layout: k.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: params.NativeHandle(), Offset: 0, Size: paramsSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: storage[0].NativeHandle(), Offset: 0, Size: planeSize}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: storage[1].NativeHandle(), Offset: 0, Size: planeSize}},
			{Binding: 3, Resource: gputypes.BufferBinding{Buffer: storage[2].NativeHandle(), Offset: 0, Size: planeSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	res.bindGroup = bg

	if err := k.submit(cfg, bg, storage[0], staging, planeSize); err != nil {
		return err
	}

	readback := make([]byte, planeSize)
	if err := queue.ReadBuffer(staging, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	for c := range image.Channels {
		unpackPlane(readback, planes[c].Pix[:n])
	}
	return nil
}

// submit encodes one compute pass plus the staging copy, submits it and
// waits on a fence.
func (k *halKernel) submit(cfg LaunchConfig, bg hal.BindGroup, result, staging hal.Buffer, size uint64) error {
	device, queue := k.dev.device, k.dev.queue

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "luminance_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("luminance"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "luminance_pass"})
	pass.SetPipeline(k.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(cfg.GridX, cfg.GridY, 1)
	pass.End()

	encoder.CopyBufferToBuffer(result, staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	fence, err := device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer device.DestroyFence(fence)
	if err := queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !fenceOK {
		return fmt.Errorf("wait for GPU: timed out after %v", fenceTimeout)
	}
	return nil
}

func (k *halKernel) Release() {
	k.dev.mu.Lock()
	defer k.dev.mu.Unlock()
	k.destroy()
}

// destroy frees the pipeline objects. Must be called with dev.mu held.
func (k *halKernel) destroy() {
	device := k.dev.device
	if device == nil {
		return
	}
	if k.pipeline != nil {
		device.DestroyComputePipeline(k.pipeline)
		k.pipeline = nil
	}
	if k.pipeLayout != nil {
		device.DestroyPipelineLayout(k.pipeLayout)
		k.pipeLayout = nil
	}
	if k.bindLayout != nil {
		device.DestroyBindGroupLayout(k.bindLayout)
		k.bindLayout = nil
	}
	if k.shader != nil {
		device.DestroyShaderModule(k.shader)
		k.shader = nil
	}
}

// launchResources collects per-launch objects for cleanup.
type launchResources struct {
	buffers   []hal.Buffer
	bindGroup hal.BindGroup
}

func (r *launchResources) destroy(device hal.Device) {
	if r.bindGroup != nil {
		device.DestroyBindGroup(r.bindGroup)
	}
	for _, b := range r.buffers {
		if b != nil {
			device.DestroyBuffer(b)
		}
	}
}
