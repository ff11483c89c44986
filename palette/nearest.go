package palette

import (
	"image"
	"image/color"
)

// cacheBits sizes the nearest-color cache (2^cacheBits slots).
const cacheBits = 12

// kHashMul is the multiplicative hash constant used to address the cache.
const kHashMul = 0x1e35a7bd

// colorCache is a direct-mapped cache from packed RGB to table index.
// A slot holds 1<<24 | rgb when valid.
type colorCache struct {
	keys []uint32
	idx  []uint8
}

func newColorCache() *colorCache {
	return &colorCache{
		keys: make([]uint32, 1<<cacheBits),
		idx:  make([]uint8, 1<<cacheBits),
	}
}

func hashPix(rgb uint32) int {
	return int((rgb * kHashMul) >> (32 - cacheBits))
}

func (c *colorCache) lookup(rgb uint32) (uint8, bool) {
	k := hashPix(rgb)
	if c.keys[k] == 1<<24|rgb {
		return c.idx[k], true
	}
	return 0, false
}

func (c *colorCache) insert(rgb uint32, i uint8) {
	k := hashPix(rgb)
	c.keys[k] = 1<<24 | rgb
	c.idx[k] = i
}

// Mapper maps true colors to the nearest entry of a color table. A Mapper
// is not safe for concurrent use; create one per goroutine.
type Mapper struct {
	table *ColorTable
	cache *colorCache
}

// NewMapper returns a Mapper for t.
func NewMapper(t *ColorTable) *Mapper {
	return &Mapper{table: t, cache: newColorCache()}
}

// Nearest returns the index of the entry closest to c by Euclidean RGB
// distance, skipping the transparent entry. Ties go to the lowest index.
func (m *Mapper) Nearest(c RGB) uint8 {
	key := c.packed()
	if i, ok := m.cache.lookup(key); ok {
		return i
	}
	best, bestD := 0, -1
	for i, e := range m.table.Colors {
		if m.table.HasTransparent && i == int(m.table.TransparentIndex) {
			continue
		}
		d := distance(c, e)
		if bestD < 0 || d < bestD {
			best, bestD = i, d
			if d == 0 {
				break
			}
		}
	}
	m.cache.insert(key, uint8(best))
	return uint8(best)
}

// Index maps one pixel. Pixels with alpha below one half map to the
// transparent entry when the table has one.
func (m *Mapper) Index(c color.NRGBA) uint8 {
	if c.A < alphaThreshold && m.table.HasTransparent {
		return m.table.TransparentIndex
	}
	return m.Nearest(RGB{c.R, c.G, c.B})
}

// QuantizeFrame maps every pixel of img to its nearest entry in table and
// returns the row-major indices.
func QuantizeFrame(img image.Image, table *ColorTable) []uint8 {
	m := NewMapper(table)
	b := img.Bounds()
	out := make([]uint8, b.Dx()*b.Dy())
	o := 0
	if src, ok := img.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, y):src.PixOffset(b.Max.X, y)]
			for i := 0; i < len(row); i += 4 {
				out[o] = m.Index(color.NRGBA{row[i], row[i+1], row[i+2], row[i+3]})
				o++
			}
		}
		return out
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out[o] = m.Index(color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA))
			o++
		}
	}
	return out
}
