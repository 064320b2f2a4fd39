package image

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func testImage() *Image {
	img, _ := New(7, 5)
	for y := range img.Height {
		for x := range img.Width {
			img.Set(x, y, uint8(x*30), uint8(y*40), uint8(255-x*y))
		}
	}
	return img
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  error
	}{
		{"out.png", FormatPNG, nil},
		{"OUT.PNG", FormatPNG, nil},
		{"photo.jpg", FormatJPEG, nil},
		{"photo.jpeg", FormatJPEG, nil},
		{"scan.bmp", FormatBMP, nil},
		{"scan.tif", FormatTIFF, nil},
		{"scan.tiff", FormatTIFF, nil},
		{"anim.gif", "", ErrUnsupportedFormat},
		{"noext", "", ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if !errors.Is(err, tt.err) {
				t.Fatalf("FormatFromPath() error = %v, want %v", err, tt.err)
			}
			if got != tt.want {
				t.Errorf("FormatFromPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeDecode_Lossless(t *testing.T) {
	for _, format := range []Format{FormatPNG, FormatBMP, FormatTIFF} {
		t.Run(string(format), func(t *testing.T) {
			src := testImage()
			var buf bytes.Buffer
			if err := Encode(&buf, src, format); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			got, err := Decode(&buf)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !Equal(got, src) {
				t.Error("lossless round trip changed pixels")
			}
		})
	}
}

func TestEncodeDecode_JPEG(t *testing.T) {
	src := testImage()
	var buf bytes.Buffer
	if err := Encode(&buf, src, FormatJPEG); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Width != src.Width || got.Height != src.Height {
		t.Errorf("size = %dx%d, want %dx%d", got.Width, got.Height, src.Width, src.Height)
	}
}

func TestEncode_Unsupported(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testImage(), Format("gif")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Encode() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	src := testImage()
	if err := Save(src, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !Equal(got, src) {
		t.Error("Save/Load changed pixels")
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/image.png")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want os.ErrNotExist", err)
	}
}

func TestDecode_InvalidData(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("Decode should fail for invalid data")
	}
}

func TestFromStdImage(t *testing.T) {
	t.Run("NRGBA", func(t *testing.T) {
		src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
		src.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
		got := FromStdImage(src)
		if r, g, b := got.At(1, 1); r != 10 || g != 20 || b != 30 {
			t.Errorf("At(1,1) = (%d,%d,%d), want (10,20,30)", r, g, b)
		}
	})

	t.Run("Gray", func(t *testing.T) {
		src := image.NewGray(image.Rect(0, 0, 2, 2))
		src.SetGray(0, 1, color.Gray{Y: 77})
		got := FromStdImage(src)
		if r, g, b := got.At(0, 1); r != 77 || g != 77 || b != 77 {
			t.Errorf("At(0,1) = (%d,%d,%d), want (77,77,77)", r, g, b)
		}
	})

	t.Run("offset bounds", func(t *testing.T) {
		full := image.NewNRGBA(image.Rect(0, 0, 4, 4))
		full.SetNRGBA(2, 3, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
		sub := full.SubImage(image.Rect(1, 1, 4, 4))
		got := FromStdImage(sub)
		if got.Width != 3 || got.Height != 3 {
			t.Fatalf("size = %dx%d, want 3x3", got.Width, got.Height)
		}
		if r, g, b := got.At(1, 2); r != 1 || g != 2 || b != 3 {
			t.Errorf("At(1,2) = (%d,%d,%d), want (1,2,3)", r, g, b)
		}
	})
}

func TestToStdImage_Opaque(t *testing.T) {
	rgba := testImage().ToStdImage()
	if !rgba.Opaque() {
		t.Error("ToStdImage should produce an opaque image")
	}
	c := rgba.RGBAAt(2, 3)
	if c.R != 60 || c.G != 120 || c.B != 249 {
		t.Errorf("RGBAAt(2,3) = %v", c)
	}
}
