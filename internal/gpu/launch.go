// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"
	"math"
)

// BlockSize is the side of the square thread block. 16 x 16 = 256 is the
// default per-workgroup invocation limit of WebGPU. The kernel's
// @workgroup_size must agree with it.
const BlockSize = 16

// DefaultMaxGridDim is WebGPU's default maxComputeWorkgroupsPerDimension.
const DefaultMaxGridDim = 65535

// LaunchConfig describes one kernel launch over a Width x Height image.
type LaunchConfig struct {
	BlockX, BlockY uint32
	GridX, GridY   uint32
	Width, Height  uint32
}

// NewLaunchConfig returns the configuration covering a width x height image
// with BlockSize blocks: GridX = ceil(width/BlockSize), GridY likewise.
func NewLaunchConfig(width, height int) (LaunchConfig, error) {
	if width < 0 || height < 0 || uint64(width) > math.MaxUint32 || uint64(height) > math.MaxUint32 {
		return LaunchConfig{}, fmt.Errorf("gpu: invalid launch dimensions %dx%d", width, height)
	}
	return LaunchConfig{
		BlockX: BlockSize,
		BlockY: BlockSize,
		GridX:  ceilDiv(uint32(width), BlockSize),  //nolint:gosec // checked above
		GridY:  ceilDiv(uint32(height), BlockSize), //nolint:gosec // checked above
		Width:  uint32(width),                      //nolint:gosec // checked above
		Height: uint32(height),                     //nolint:gosec // checked above
	}, nil
}

// Blocks returns the number of thread blocks in the grid.
func (c LaunchConfig) Blocks() uint64 {
	return uint64(c.GridX) * uint64(c.GridY)
}

// Validate checks the grid against the device maxima. The total block count
// must not exceed maxX*maxY; the comparison is done in 64 bits.
func (c LaunchConfig) Validate(maxX, maxY uint32) error {
	limit := uint64(maxX) * uint64(maxY)
	if c.Blocks() > limit {
		return fmt.Errorf("%w: grid %dx%d (%d blocks) > device %dx%d (%d blocks)",
			ErrGridTooLarge, c.GridX, c.GridY, c.Blocks(), maxX, maxY, limit)
	}
	return nil
}

func (c LaunchConfig) String() string {
	return fmt.Sprintf("grid %dx%d block %dx%d image %dx%d",
		c.GridX, c.GridY, c.BlockX, c.BlockY, c.Width, c.Height)
}

func ceilDiv(n, d uint32) uint32 {
	return uint32((uint64(n) + uint64(d) - 1) / uint64(d)) //nolint:gosec // result <= n
}
