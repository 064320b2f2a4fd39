package imgray

import (
	stdimage "image"

	"github.com/gogpu/imgray/internal/gpu"
	"github.com/gogpu/imgray/internal/image"
)

// Image is an interleaved 8-bit RGB image.
type Image = image.Image

// NewImage allocates a black width x height image.
func NewImage(width, height int) (*Image, error) {
	return image.New(width, height)
}

// Load decodes an image file. PNG, JPEG, GIF, BMP, TIFF and WebP are
// recognized by content.
func Load(path string) (*Image, error) {
	return image.Load(path)
}

// Save encodes img to path in the format implied by its extension
// (.png, .jpg/.jpeg, .bmp, .tif/.tiff).
func Save(img *Image, path string) error {
	return image.Save(img, path)
}

// FromImage converts any image.Image to RGB, dropping alpha.
func FromImage(img stdimage.Image) *Image {
	return image.FromStdImage(img)
}

// FromRGB wraps interleaved 8-bit RGB samples, three per pixel in row-major
// order, without copying. pix must hold at least width*height*3 bytes and
// must not be modified while the image is in use.
func FromRGB(pix []uint8, width, height int) (*Image, error) {
	return image.FromRaw(pix, width, height)
}

// Device is a compute device usable by ModeDevice.
type Device = gpu.Device

// OpenHAL opens a GPU through the Vulkan HAL.
func OpenHAL() (Device, error) {
	return gpu.OpenHAL()
}

// OpenCPU opens the host emulation device.
func OpenCPU() (Device, error) {
	return gpu.OpenCPU()
}
