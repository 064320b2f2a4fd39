package filter

import "github.com/gogpu/imgray/internal/image"

// Fixed-point luminance weights, scaled by WeightScale.
// Must match the constants in the device kernel (luminance.wgsl).
const (
	WeightR     = 2126
	WeightG     = 7152
	WeightB     = 722
	WeightScale = WeightR + WeightG + WeightB // 10000
)

// Luminance returns floor(0.2126*r + 0.7152*g + 0.0722*b).
//
// The largest intermediate value is 255*10000, which fits in 32 bits.
func Luminance(r, g, b uint8) uint8 {
	sum := WeightR*uint32(r) + WeightG*uint32(g) + WeightB*uint32(b)
	return uint8(sum / WeightScale) //nolint:gosec // sum/WeightScale <= 255
}

// Apply returns a new compact image of tile's shape in which every pixel is
// (L, L, L). The input is not modified. Empty tiles return immediately.
func Apply(tile *image.Image) *image.Image {
	out, _ := image.New(tile.Width, tile.Height)
	if tile.Empty() {
		return out
	}

	for y := range tile.Height {
		src := tile.Row(y)
		dst := out.Row(y)
		for i := 0; i < len(src); i += image.Channels {
			l := Luminance(src[i], src[i+1], src[i+2])
			dst[i] = l
			dst[i+1] = l
			dst[i+2] = l
		}
	}
	return out
}

// ApplyPlanes transforms three equally sized channel slices in place, writing
// L to all of them. Extra samples beyond the shortest slice are ignored.
func ApplyPlanes(r, g, b []uint8) {
	n := min(len(r), len(g), len(b))
	for i := range n {
		l := Luminance(r[i], g[i], b[i])
		r[i] = l
		g[i] = l
		b[i] = l
	}
}
