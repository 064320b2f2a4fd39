package image

import (
	"errors"
	"fmt"
)

// ErrPlaneMismatch is returned when planes being merged differ in size.
var ErrPlaneMismatch = errors.New("image: plane dimensions mismatch")

// Plane is one color channel of an image, stored compactly (stride == Width).
type Plane struct {
	Pix    []uint8
	Width  int
	Height int
}

// NewPlane allocates a zeroed plane.
func NewPlane(width, height int) *Plane {
	return &Plane{
		Pix:    make([]uint8, width*height),
		Width:  width,
		Height: height,
	}
}

// ExtractPlane copies channel c (0=R, 1=G, 2=B) of m into a new plane.
func ExtractPlane(m *Image, c int) *Plane {
	p := NewPlane(m.Width, m.Height)
	for y := range m.Height {
		row := m.Row(y)
		dst := p.Pix[y*p.Width : (y+1)*p.Width]
		for x := range dst {
			dst[x] = row[x*Channels+c]
		}
	}
	return p
}

// SplitPlanes copies m into three independent planes in R, G, B order.
func SplitPlanes(m *Image) [Channels]*Plane {
	var planes [Channels]*Plane
	for c := range Channels {
		planes[c] = ExtractPlane(m, c)
	}
	return planes
}

// MergePlanes interleaves three planes of equal size into a new image.
func MergePlanes(r, g, b *Plane) (*Image, error) {
	if r.Width != g.Width || r.Width != b.Width || r.Height != g.Height || r.Height != b.Height {
		return nil, fmt.Errorf("%w: R=%dx%d G=%dx%d B=%dx%d", ErrPlaneMismatch,
			r.Width, r.Height, g.Width, g.Height, b.Width, b.Height)
	}
	out, err := New(r.Width, r.Height)
	if err != nil {
		return nil, err
	}
	for i := range r.Pix {
		off := i * Channels
		out.Pix[off] = r.Pix[i]
		out.Pix[off+1] = g.Pix[i]
		out.Pix[off+2] = b.Pix[i]
	}
	return out, nil
}
