// Package image provides the RGB raster buffer shared by the host and device
// grayscale paths, plus the file codec used by the command line.
//
// An [Image] stores 8-bit samples in R,G,B order, row by row. Sub-images are
// views into the parent's pixel slice, so a worker can read its tile without
// copying and the coordinator can paste results back with whole-row copies.
package image

import (
	"errors"
	"fmt"
)

// Channels is the number of samples per pixel.
const Channels = 3

// Common errors for image operations.
var (
	// ErrInvalidDimensions is returned when width or height is negative.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("image: data buffer too small")

	// ErrOutOfBounds is returned when a region lies outside the image.
	ErrOutOfBounds = errors.New("image: region out of bounds")
)

// Image is an interleaved RGB buffer of shape (Height, Width, 3).
//
// Pixel (x, y) starts at Pix[y*Stride+x*3]. Stride may exceed Width*3 for
// sub-images that share the parent's storage.
//
// Thread safety: concurrent reads are safe. Writers must own disjoint
// regions; the package performs no locking.
type Image struct {
	Pix    []uint8
	Width  int
	Height int
	Stride int
}

// New allocates a zeroed image. Zero dimensions are allowed and produce an
// empty image.
func New(width, height int) (*Image, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	stride := width * Channels
	return &Image{
		Pix:    make([]uint8, stride*height),
		Width:  width,
		Height: height,
		Stride: stride,
	}, nil
}

// FromRaw wraps existing interleaved RGB data without copying.
// The caller must ensure data remains valid for the lifetime of the Image.
func FromRaw(data []uint8, width, height int) (*Image, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	stride := width * Channels
	if len(data) < stride*height {
		return nil, ErrDataTooSmall
	}
	return &Image{
		Pix:    data[:stride*height],
		Width:  width,
		Height: height,
		Stride: stride,
	}, nil
}

// Empty reports whether the image has no pixels.
func (m *Image) Empty() bool {
	return m.Width == 0 || m.Height == 0
}

// PixelOffset returns the offset of pixel (x, y) in Pix, or -1 when the
// coordinates are outside the image.
func (m *Image) PixelOffset(x, y int) int {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return -1
	}
	return y*m.Stride + x*Channels
}

// At returns the samples of pixel (x, y). Out-of-bounds reads return zeros.
func (m *Image) At(x, y int) (r, g, b uint8) {
	off := m.PixelOffset(x, y)
	if off < 0 {
		return 0, 0, 0
	}
	return m.Pix[off], m.Pix[off+1], m.Pix[off+2]
}

// Set writes pixel (x, y). Out-of-bounds writes are ignored.
func (m *Image) Set(x, y int, r, g, b uint8) {
	off := m.PixelOffset(x, y)
	if off < 0 {
		return
	}
	m.Pix[off] = r
	m.Pix[off+1] = g
	m.Pix[off+2] = b
}

// Row returns the samples of row y, without stride padding.
// Returns nil if y is out of bounds.
func (m *Image) Row(y int) []uint8 {
	if y < 0 || y >= m.Height {
		return nil
	}
	start := y * m.Stride
	return m.Pix[start : start+m.Width*Channels]
}

// SubImage returns a view of the half-open region [x0,x1) x [y0,y1).
// The view shares Pix with m. Degenerate regions yield an empty image.
func (m *Image) SubImage(x0, x1, y0, y1 int) (*Image, error) {
	if x0 < 0 || y0 < 0 || x1 > m.Width || y1 > m.Height || x1 < x0 || y1 < y0 {
		return nil, fmt.Errorf("%w: [%d,%d)x[%d,%d) in %dx%d",
			ErrOutOfBounds, x0, x1, y0, y1, m.Width, m.Height)
	}
	w, h := x1-x0, y1-y0
	if w == 0 || h == 0 {
		return &Image{Width: w, Height: h, Stride: m.Stride}, nil
	}
	start := y0*m.Stride + x0*Channels
	end := (y1-1)*m.Stride + x1*Channels
	return &Image{
		Pix:    m.Pix[start:end:end],
		Width:  w,
		Height: h,
		Stride: m.Stride,
	}, nil
}

// Paste copies tile into m with its top-left corner at (x0, y0).
// The tile must fit entirely inside m.
func (m *Image) Paste(x0, y0 int, tile *Image) error {
	if tile.Empty() {
		return nil
	}
	if x0 < 0 || y0 < 0 || x0+tile.Width > m.Width || y0+tile.Height > m.Height {
		return fmt.Errorf("%w: %dx%d tile at (%d,%d) in %dx%d",
			ErrOutOfBounds, tile.Width, tile.Height, x0, y0, m.Width, m.Height)
	}
	rowBytes := tile.Width * Channels
	for y := range tile.Height {
		dst := (y0+y)*m.Stride + x0*Channels
		copy(m.Pix[dst:dst+rowBytes], tile.Row(y))
	}
	return nil
}

// Clone returns a compact deep copy of m.
func (m *Image) Clone() *Image {
	out, _ := New(m.Width, m.Height)
	for y := range m.Height {
		copy(out.Row(y), m.Row(y))
	}
	return out
}

// Equal reports whether a and b have the same shape and samples.
// Stride padding is ignored.
func Equal(a, b *Image) bool {
	if a.Width != b.Width || a.Height != b.Height {
		return false
	}
	for y := range a.Height {
		ra, rb := a.Row(y), b.Row(y)
		for i := range ra {
			if ra[i] != rb[i] {
				return false
			}
		}
	}
	return true
}
