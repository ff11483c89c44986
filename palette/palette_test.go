package palette

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

// gradient has w*h distinct colors.
func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(y), uint8(x ^ y), 0xff})
		}
	}
	return img
}

func TestColorTable_Bytes(t *testing.T) {
	tbl := NewColorTable([]RGB{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
	assert.Equal(t, 4, tbl.EncodedLen())
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 0, 0, 0}, tbl.Bytes())

	back := FromBytes(tbl.Bytes())
	assert.Equal(t, 4, back.Len())
	assert.True(t, tbl.SameColors(back))
	assert.False(t, tbl.Equal(back))

	single := NewColorTable([]RGB{{9, 9, 9}})
	assert.Equal(t, 2, single.EncodedLen())
}

func TestColorTable_PaletteAndClone(t *testing.T) {
	tbl := &ColorTable{Colors: []RGB{{255, 0, 0}, {0, 0, 0}}, HasTransparent: true, TransparentIndex: 1}
	p := tbl.Palette()
	require.Len(t, p, 2)
	_, _, _, a := p[1].RGBA()
	assert.Zero(t, a)

	back := FromPalette(p)
	assert.True(t, back.HasTransparent)
	assert.Equal(t, uint8(1), back.TransparentIndex)

	c := tbl.Clone()
	c.Colors[0] = RGB{}
	assert.Equal(t, RGB{255, 0, 0}, tbl.Colors[0])
	assert.Nil(t, (*ColorTable)(nil).Clone())
}

func TestBuildGlobalPalette_Empty(t *testing.T) {
	_, _, err := BuildGlobalPalette(nil, 256)
	assert.ErrorIs(t, err, ErrEmptyFrameSet)
}

func TestBuildGlobalPalette_InvalidBudget(t *testing.T) {
	frames := []image.Image{solid(2, 2, color.NRGBA{A: 0xff})}
	_, _, err := BuildGlobalPalette(frames, 1)
	assert.ErrorIs(t, err, ErrInvalidColorCount)
	_, _, err = BuildGlobalPalette(frames, 257)
	assert.ErrorIs(t, err, ErrInvalidColorCount)
}

func TestBuildGlobalPalette_ExactColors(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}
	green := color.NRGBA{0, 255, 0, 255}
	blue := color.NRGBA{0, 0, 255, 255}
	frames := []image.Image{solid(4, 4, red), solid(4, 4, green), solid(2, 2, blue)}

	tbl, remap, err := BuildGlobalPalette(frames, 256)
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())
	assert.False(t, tbl.HasTransparent)
	// Most frequent first, ties by packed value.
	assert.Equal(t, []RGB{{0, 255, 0}, {255, 0, 0}, {0, 0, 255}}, tbl.Colors)
	assert.Equal(t, uint8(1), remap[RGB{255, 0, 0}])
	assert.Equal(t, uint8(2), remap[RGB{0, 0, 255}])
}

func TestBuildGlobalPalette_Transparency(t *testing.T) {
	img := solid(2, 1, color.NRGBA{10, 20, 30, 255})
	img.SetNRGBA(1, 0, color.NRGBA{})

	tbl, _, err := BuildGlobalPalette([]image.Image{img}, 2)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	assert.True(t, tbl.HasTransparent)
	assert.Equal(t, uint8(1), tbl.TransparentIndex)

	pix := QuantizeFrame(img, tbl)
	assert.Equal(t, []uint8{0, 1}, pix)
}

func TestBuildGlobalPalette_Quantizes(t *testing.T) {
	frames := []image.Image{gradient(64, 64)}
	for _, name := range []string{QuantizerMedianCut, QuantizerGoQuantize} {
		t.Run(name, func(t *testing.T) {
			q, err := ParseQuantizer(name)
			require.NoError(t, err)
			tbl, remap, err := Builder{Quantizer: q}.Build(frames, 16)
			require.NoError(t, err)
			assert.LessOrEqual(t, tbl.Len(), 16)
			assert.GreaterOrEqual(t, tbl.Len(), 2)
			assert.Len(t, remap, 64*64)
			for _, idx := range remap {
				assert.Less(t, int(idx), tbl.Len())
			}
		})
	}
}

func TestBuildGlobalPalette_PalettedFastPath(t *testing.T) {
	pal := color.Palette{color.NRGBA{1, 1, 1, 255}, color.NRGBA{2, 2, 2, 255}, color.NRGBA{}}
	m := image.NewPaletted(image.Rect(0, 0, 3, 1), pal)
	m.Pix = []uint8{0, 0, 2}

	tbl, _, err := BuildGlobalPalette([]image.Image{m}, 256)
	require.NoError(t, err)
	// Unused palette entries are not counted.
	assert.Equal(t, []RGB{{1, 1, 1}, {}}, tbl.Colors)
	assert.True(t, tbl.HasTransparent)
}

func TestParseQuantizer_Unknown(t *testing.T) {
	_, err := ParseQuantizer("octree")
	assert.ErrorIs(t, err, ErrUnknownQuantizer)
	q, err := ParseQuantizer("")
	require.NoError(t, err)
	assert.Equal(t, QuantizerMedianCut, q.Name())
}

func TestMedianCut_Deterministic(t *testing.T) {
	h := make(Histogram)
	h.Add(gradient(40, 40))
	a := MedianCut{}.Quantize(h, 32)
	b := MedianCut{}.Quantize(h, 32)
	assert.Equal(t, a, b)
	assert.LessOrEqual(t, len(a), 32)
	assert.Greater(t, len(a), 16)
}

func TestMedianCut_SeparatesClusters(t *testing.T) {
	h := Histogram{
		{0, 0, 0}: 100, {2, 2, 2}: 100,
		{250, 250, 250}: 100, {252, 252, 252}: 100,
	}
	got := MedianCut{}.Quantize(h, 2)
	require.Len(t, got, 2)
	dark, light := got[0], got[1]
	if dark.R > light.R {
		dark, light = light, dark
	}
	assert.Equal(t, RGB{1, 1, 1}, dark)
	assert.Equal(t, RGB{251, 251, 251}, light)
}

func TestMapper_Nearest(t *testing.T) {
	tbl := NewColorTable([]RGB{{0, 0, 0}, {100, 100, 100}, {100, 100, 100}, {255, 255, 255}})
	m := NewMapper(tbl)
	assert.Equal(t, uint8(0), m.Nearest(RGB{10, 10, 10}))
	// Duplicate entries: lowest index wins.
	assert.Equal(t, uint8(1), m.Nearest(RGB{100, 100, 100}))
	assert.Equal(t, uint8(3), m.Nearest(RGB{200, 220, 240}))
	// Equidistant from 0 and 100: lowest index.
	assert.Equal(t, uint8(0), m.Nearest(RGB{50, 50, 50}))
	// Cached lookups return the same answer.
	assert.Equal(t, uint8(3), m.Nearest(RGB{200, 220, 240}))
}

func TestMapper_SkipsTransparentEntry(t *testing.T) {
	tbl := &ColorTable{Colors: []RGB{{0, 0, 0}, {200, 0, 0}}, HasTransparent: true, TransparentIndex: 0}
	m := NewMapper(tbl)
	assert.Equal(t, uint8(1), m.Nearest(RGB{1, 1, 1}))
	assert.Equal(t, uint8(0), m.Index(color.NRGBA{A: 10}))
}

func TestQuantizeFrame_GenericImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 7, 6))
	img.Set(5, 5, color.White)
	img.Set(6, 5, color.Black)
	tbl := NewColorTable([]RGB{{0, 0, 0}, {255, 255, 255}})
	assert.Equal(t, []uint8{1, 0}, QuantizeFrame(img, tbl))
}

func TestCompact(t *testing.T) {
	tbl := &ColorTable{
		Colors:         []RGB{{1, 0, 0}, {2, 0, 0}, {3, 0, 0}, {4, 0, 0}},
		HasTransparent: true, TransparentIndex: 3,
	}
	pix := []uint8{3, 1, 1, 3}
	np, nt := Compact(pix, tbl)
	assert.Equal(t, []uint8{1, 0, 0, 1}, np)
	assert.Equal(t, []RGB{{2, 0, 0}, {4, 0, 0}}, nt.Colors)
	assert.True(t, nt.HasTransparent)
	assert.Equal(t, uint8(1), nt.TransparentIndex)
	// Input untouched.
	assert.Equal(t, []uint8{3, 1, 1, 3}, pix)
	assert.Equal(t, 4, tbl.Len())

	_, nt = Compact([]uint8{0}, tbl)
	assert.False(t, nt.HasTransparent)
}
