// Package animation provides the in-memory model of a GIF animation:
// indexed frames with their timing, disposal and transparency, the logical
// canvas they are drawn on, and compositing of frames into the images a
// viewer displays.
package animation

import (
	"image"
	"image/color"
	"time"

	"github.com/deepteams/gifkit/palette"
)

// DisposeMethod controls how the frame region is treated after the frame
// has been displayed. Values match the GIF graphic control extension.
type DisposeMethod int

const (
	// DisposeUnspecified lets the viewer decide; viewers leave the frame
	// in place.
	DisposeUnspecified DisposeMethod = 0
	// DisposeNone leaves the frame in place (do not dispose).
	DisposeNone DisposeMethod = 1
	// DisposeBackground clears the frame region to transparent.
	DisposeBackground DisposeMethod = 2
	// DisposePrevious restores the frame region to what it was before the
	// frame was drawn.
	DisposePrevious DisposeMethod = 3
)

func (d DisposeMethod) String() string {
	switch d {
	case DisposeUnspecified:
		return "unspecified"
	case DisposeNone:
		return "none"
	case DisposeBackground:
		return "background"
	case DisposePrevious:
		return "previous"
	}
	return "unknown"
}

// Frame holds one indexed image and its rendering parameters.
type Frame struct {
	// Pix holds Width*Height palette indices, row-major.
	Pix []uint8

	Width  int
	Height int

	// OffsetX and OffsetY place the frame on the canvas.
	OffsetX int
	OffsetY int

	// LocalTable overrides the animation's global table when non-nil.
	LocalTable *palette.ColorTable

	// Delay is the display duration. GIF stores it in hundredths of a
	// second.
	Delay time.Duration

	// Dispose specifies canvas cleanup after this frame is displayed.
	Dispose DisposeMethod

	// HasTransparency marks TransparentIndex as see-through.
	HasTransparency  bool
	TransparentIndex uint8

	// Interlaced requests interlaced row order when encoding.
	Interlaced bool
}

// Bounds returns the frame's rectangle on the canvas.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(f.OffsetX, f.OffsetY, f.OffsetX+f.Width, f.OffsetY+f.Height)
}

// Table returns the color table that applies to the frame.
func (f *Frame) Table(global *palette.ColorTable) *palette.ColorTable {
	if f.LocalTable != nil {
		return f.LocalTable
	}
	return global
}

// Clone returns a deep copy of f.
func (f *Frame) Clone() Frame {
	c := *f
	c.Pix = append([]uint8(nil), f.Pix...)
	c.LocalTable = f.LocalTable.Clone()
	return c
}

// Palette returns the color.Palette for drawing the frame: the applicable
// table padded to its encoded size, with the transparent index (if any)
// fully transparent.
func (f *Frame) Palette(global *palette.ColorTable) color.Palette {
	t := f.Table(global)
	n := 2
	if t != nil {
		n = t.EncodedLen()
	}
	p := make(color.Palette, n)
	for i := range p {
		var c palette.RGB
		if t != nil && i < t.Len() {
			c = t.Colors[i]
		}
		p[i] = color.NRGBA{c.R, c.G, c.B, 0xff}
	}
	if f.HasTransparency && int(f.TransparentIndex) < n {
		p[f.TransparentIndex] = color.NRGBA{}
	}
	return p
}

// Paletted returns the frame as an image.Paletted positioned at its canvas
// offset. The pixel slice is shared, not copied.
func (f *Frame) Paletted(global *palette.ColorTable) *image.Paletted {
	return &image.Paletted{
		Pix:     f.Pix,
		Stride:  f.Width,
		Rect:    f.Bounds(),
		Palette: f.Palette(global),
	}
}

// NRGBA returns the frame's own pixels (not composited) as an NRGBA image
// with origin (0,0). Transparent pixels have zero alpha.
func (f *Frame) NRGBA(global *palette.ColorTable) *image.NRGBA {
	pal := f.Palette(global)
	lut := make([]color.NRGBA, len(pal))
	for i, c := range pal {
		lut[i] = c.(color.NRGBA)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, idx := range f.Pix {
		var c color.NRGBA
		if int(idx) < len(lut) {
			c = lut[idx]
		}
		o := 4 * i
		dst.Pix[o], dst.Pix[o+1], dst.Pix[o+2], dst.Pix[o+3] = c.R, c.G, c.B, c.A
	}
	return dst
}

// toNRGBA converts any image.Image to *image.NRGBA with origin (0,0).
func toNRGBA(src image.Image) *image.NRGBA {
	if nrgba, ok := src.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return nrgba
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x-b.Min.X, y-b.Min.Y, src.At(x, y))
		}
	}
	return dst
}

// ToNRGBA converts any image to an NRGBA image whose bounds start at (0,0).
// NRGBA input already at the origin is returned as-is.
func ToNRGBA(src image.Image) *image.NRGBA {
	return toNRGBA(src)
}
