// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"encoding/binary"
	"fmt"
)

// paramsSize is the size of the kernel's uniform Params block.
const paramsSize = 16

// samplesPerWord is the number of 8-bit samples packed into one u32.
const samplesPerWord = 4

// packParams serializes the kernel's uniform Params block.
func packParams(cfg LaunchConfig) []byte {
	out := make([]byte, paramsSize)
	binary.LittleEndian.PutUint32(out[0:], cfg.Width)
	binary.LittleEndian.PutUint32(out[4:], cfg.Height)
	binary.LittleEndian.PutUint32(out[8:], cfg.Width*cfg.Height)
	return out
}

// planeBufferSize returns the byte size of a packed plane of n samples,
// rounded up to whole words.
func planeBufferSize(n int) uint64 {
	words := (uint64(n) + samplesPerWord - 1) / samplesPerWord //nolint:gosec // n is non-negative
	return words * 4
}

// checkPlaneSize fails with ErrPlaneTooLarge when a packed plane of size
// bytes cannot be bound as one storage buffer. A zero limit is unbounded.
func checkPlaneSize(size, limit uint64) error {
	if limit > 0 && size > limit {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrPlaneTooLarge, size, limit)
	}
	return nil
}

// packPlane packs four samples per little-endian u32: sample i occupies bits
// 8*(i%4) of word i/4. That is the byte order of pix itself, so packing is a
// copy padded with zeros to a whole word.
func packPlane(pix []uint8) []byte {
	out := make([]byte, planeBufferSize(len(pix)))
	copy(out, pix)
	return out
}

// unpackPlane extracts len(dst) samples from a packed plane.
func unpackPlane(packed []byte, dst []uint8) {
	copy(dst, packed[:len(dst)])
}
