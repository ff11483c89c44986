package resample

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestParseMethod(t *testing.T) {
	tests := map[string]Method{
		"lanczos":  Lanczos,
		"LANCZOS":  Lanczos,
		"bilinear": Bilinear,
		"Bicubic":  Bicubic,
		"nearest":  Nearest,
		" nearest": Nearest,
		"":         Lanczos,
		"box":      Lanczos,
	}
	for name, want := range tests {
		assert.Equal(t, want, ParseMethod(name), "ParseMethod(%q)", name)
	}
}

func TestMethodStringRoundTrip(t *testing.T) {
	for _, m := range []Method{Lanczos, Bilinear, Bicubic, Nearest} {
		assert.Equal(t, m, ParseMethod(m.String()))
	}
	assert.Equal(t, "unknown", Method(42).String())
}

func TestParseBackend(t *testing.T) {
	r, err := ParseBackend("")
	require.NoError(t, err)
	assert.IsType(t, Imaging{}, r)

	for _, name := range Backends() {
		_, err := ParseBackend(name)
		assert.NoError(t, err, name)
	}

	_, err = ParseBackend("magick")
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestBackendsScaleSolidColor(t *testing.T) {
	red := color.NRGBA{R: 0xff, A: 0xff}
	src := solid(8, 6, red)
	for _, name := range Backends() {
		r, err := ParseBackend(name)
		require.NoError(t, err)
		for _, m := range []Method{Lanczos, Bilinear, Bicubic, Nearest} {
			dst := r.Resample(src, 4, 3, m)
			require.Equal(t, image.Rect(0, 0, 4, 3), dst.Bounds(), "%s/%s", name, m)
			for y := 0; y < 3; y++ {
				for x := 0; x < 4; x++ {
					c := dst.NRGBAAt(x, y)
					assert.InDelta(t, 0xff, int(c.R), 2, "%s/%s (%d,%d)", name, m, x, y)
					assert.InDelta(t, 0xff, int(c.A), 2, "%s/%s (%d,%d)", name, m, x, y)
				}
			}
		}
	}
}

func TestBackendsUpscale(t *testing.T) {
	src := solid(2, 2, color.NRGBA{G: 0x80, A: 0xff})
	for _, name := range Backends() {
		r, _ := ParseBackend(name)
		dst := r.Resample(src, 5, 7, Nearest)
		assert.Equal(t, image.Rect(0, 0, 5, 7), dst.Bounds(), name)
		assert.Equal(t, color.NRGBA{G: 0x80, A: 0xff}, dst.NRGBAAt(4, 6), name)
	}
}

func TestResampleLeavesSourceIntact(t *testing.T) {
	src := solid(4, 4, color.NRGBA{B: 0xff, A: 0xff})
	src.SetNRGBA(0, 0, color.NRGBA{R: 0xff, A: 0xff})
	before := append([]uint8(nil), src.Pix...)
	for _, name := range Backends() {
		r, _ := ParseBackend(name)
		r.Resample(src, 2, 2, Bilinear)
		assert.Equal(t, before, src.Pix, name)
	}
}

func TestToNRGBA(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(2, 3, 4, 5))
	rgba.Set(2, 3, color.RGBA{0x10, 0x20, 0x30, 0xff})
	n := toNRGBA(rgba)
	assert.Equal(t, image.Rect(0, 0, 2, 2), n.Bounds())
	assert.Equal(t, color.NRGBA{0x10, 0x20, 0x30, 0xff}, n.NRGBAAt(0, 0))

	same := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	assert.Same(t, same, toNRGBA(same))
}
