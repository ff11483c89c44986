// Package palette builds, compares and applies GIF color tables: histogram
// collection, quantization to a color budget and nearest-color mapping of
// true-color pixels.
package palette

import (
	"errors"
	"image/color"
)

// MaxColors is the largest color table GIF can describe.
const MaxColors = 256

var (
	ErrEmptyFrameSet     = errors.New("palette: empty frame set")
	ErrInvalidColorCount = errors.New("palette: color count out of range")
	ErrUnknownQuantizer  = errors.New("palette: unknown quantizer")
)

// RGB is one color table entry.
type RGB struct {
	R, G, B uint8
}

// RGBA implements color.Color. Entries are always opaque.
func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

func (c RGB) packed() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// distance returns the squared Euclidean distance between a and b.
func distance(a, b RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// ColorTable is an ordered list of at most 256 colors with an optional
// entry reserved for transparent pixels.
type ColorTable struct {
	Colors           []RGB
	HasTransparent   bool
	TransparentIndex uint8
}

// NewColorTable returns a table holding a copy of colors.
func NewColorTable(colors []RGB) *ColorTable {
	return &ColorTable{Colors: append([]RGB(nil), colors...)}
}

// FromBytes decodes packed RGB triplets.
func FromBytes(b []byte) *ColorTable {
	t := &ColorTable{Colors: make([]RGB, len(b)/3)}
	for i := range t.Colors {
		t.Colors[i] = RGB{b[3*i], b[3*i+1], b[3*i+2]}
	}
	return t
}

// FromPalette converts a color.Palette. Entries with alpha below one half
// become the transparent entry; the first such entry wins.
func FromPalette(p color.Palette) *ColorTable {
	t := &ColorTable{Colors: make([]RGB, len(p))}
	for i, c := range p {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		t.Colors[i] = RGB{n.R, n.G, n.B}
		if n.A < 0x80 && !t.HasTransparent {
			t.HasTransparent = true
			t.TransparentIndex = uint8(i)
		}
	}
	return t
}

// Len returns the number of entries.
func (t *ColorTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Colors)
}

// EncodedLen returns the entry count as stored in a GIF file: the next
// power of two, at least 2.
func (t *ColorTable) EncodedLen() int {
	n := 2
	for n < t.Len() {
		n <<= 1
	}
	return n
}

// Bytes returns the table as packed RGB triplets padded with black to
// EncodedLen entries.
func (t *ColorTable) Bytes() []byte {
	b := make([]byte, 3*t.EncodedLen())
	for i, c := range t.Colors {
		b[3*i] = c.R
		b[3*i+1] = c.G
		b[3*i+2] = c.B
	}
	return b
}

// Palette converts the table for use with image.Paletted. The transparent
// entry, if any, becomes fully transparent.
func (t *ColorTable) Palette() color.Palette {
	p := make(color.Palette, len(t.Colors))
	for i, c := range t.Colors {
		p[i] = color.NRGBA{c.R, c.G, c.B, 0xff}
	}
	if t.HasTransparent && int(t.TransparentIndex) < len(p) {
		p[t.TransparentIndex] = color.NRGBA{}
	}
	return p
}

// Clone returns a deep copy of t. A nil table clones to nil.
func (t *ColorTable) Clone() *ColorTable {
	if t == nil {
		return nil
	}
	c := *t
	c.Colors = append([]RGB(nil), t.Colors...)
	return &c
}

// Equal reports whether both tables hold the same colors in the same order
// with the same transparent entry.
func (t *ColorTable) Equal(o *ColorTable) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.Colors) != len(o.Colors) || t.HasTransparent != o.HasTransparent {
		return false
	}
	if t.HasTransparent && t.TransparentIndex != o.TransparentIndex {
		return false
	}
	for i := range t.Colors {
		if t.Colors[i] != o.Colors[i] {
			return false
		}
	}
	return true
}

// SameColors reports whether t and o hold the same colors in the same
// order, ignoring the transparent entry and black padding.
func (t *ColorTable) SameColors(o *ColorTable) bool {
	a, b := t.Colors, o.Colors
	if len(a) < len(b) {
		a, b = b, a
	}
	for i := range a {
		var c RGB
		if i < len(b) {
			c = b[i]
		}
		if a[i] != c {
			return false
		}
	}
	return true
}
