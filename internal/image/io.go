package image

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when the image format is not supported.
	ErrUnsupportedFormat = errors.New("image: unsupported format")
)

// Format names an encoding supported by Encode.
type Format string

// Encodings supported by Save and Encode.
const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// jpegQuality is the quality used when saving JPEG output.
const jpegQuality = 95

// FormatFromPath derives the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".bmp":
		return FormatBMP, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads an image file, auto-detecting the format from its content.
// Supported formats: PNG, JPEG, GIF, BMP, TIFF, WebP.
func Load(path string) (*Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("image: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// Decode decodes an image from the given reader, auto-detecting the format.
func Decode(r io.Reader) (*Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("image: decode: %w", err)
	}
	return FromStdImage(img), nil
}

// Save writes m to path, choosing the encoding from the file extension.
func Save(m *Image, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("image: create file: %w", err)
	}

	if err := Encode(f, m, format); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// Encode writes m to w in the given format.
func Encode(w io.Writer, m *Image, format Format) error {
	img := m.ToStdImage()
	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("image: encode %s: %w", format, err)
	}
	return nil
}

// FromStdImage converts any image.Image into an RGB Image. Alpha is dropped;
// samples are taken from the non-premultiplied color.
func FromStdImage(img image.Image) *Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out, _ := New(width, height)

	// Fast path for NRGBA and opaque RGBA images
	var src []uint8
	var srcStride int
	switch s := img.(type) {
	case *image.NRGBA:
		src, srcStride = s.Pix, s.Stride
	case *image.RGBA:
		if s.Opaque() {
			src, srcStride = s.Pix, s.Stride
		}
	}
	if src == nil {
		nrgba := image.NewNRGBA(image.Rect(0, 0, width, height))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
		src, srcStride = nrgba.Pix, nrgba.Stride
	}

	for y := range height {
		row := out.Row(y)
		in := src[y*srcStride : y*srcStride+width*4]
		for x := range width {
			row[x*Channels] = in[x*4]
			row[x*Channels+1] = in[x*4+1]
			row[x*Channels+2] = in[x*4+2]
		}
	}
	return out
}

// ToStdImage expands m into an opaque *image.RGBA.
func (m *Image) ToStdImage() *image.RGBA {
	rgba := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := range m.Height {
		row := m.Row(y)
		dst := rgba.Pix[y*rgba.Stride:]
		for x := range m.Width {
			dst[x*4] = row[x*Channels]
			dst[x*4+1] = row[x*Channels+1]
			dst[x*4+2] = row[x*Channels+2]
			dst[x*4+3] = 0xff
		}
	}
	return rgba
}
