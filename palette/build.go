package palette

import (
	"fmt"
	"image"
)

// Remap maps every distinct opaque source color to its table index.
type Remap map[RGB]uint8

// Builder builds shared color tables with a chosen Quantizer.
type Builder struct {
	Quantizer Quantizer // nil selects MedianCut
}

// BuildGlobalPalette builds one table of at most maxColors entries covering
// all frames using the built-in median cut.
func BuildGlobalPalette(frames []image.Image, maxColors int) (*ColorTable, Remap, error) {
	return Builder{}.Build(frames, maxColors)
}

// Build collects the distinct colors of all frames. If they fit in the
// budget they are used as-is, most frequent first; otherwise they are
// quantized. When any pixel is transparent one entry is reserved for
// transparency and appended last.
func (bd Builder) Build(frames []image.Image, maxColors int) (*ColorTable, Remap, error) {
	if len(frames) == 0 {
		return nil, nil, ErrEmptyFrameSet
	}
	h := make(Histogram)
	transparent := false
	for _, f := range frames {
		if h.Add(f) {
			transparent = true
		}
	}
	return bd.FromHistogram(h, transparent, maxColors)
}

// FromHistogram builds a table from an already collected histogram.
func (bd Builder) FromHistogram(h Histogram, transparent bool, maxColors int) (*ColorTable, Remap, error) {
	if maxColors < 2 || maxColors > MaxColors {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidColorCount, maxColors)
	}
	budget := maxColors
	if transparent {
		budget--
	}

	var colors []RGB
	if len(h) <= budget {
		colors = h.Colors()
	} else {
		q := bd.Quantizer
		if q == nil {
			q = MedianCut{}
		}
		colors = q.Quantize(h, budget)
	}
	if len(colors) == 0 {
		// Fully transparent input still needs one opaque entry.
		colors = []RGB{{}}
	}

	t := NewColorTable(colors)
	if transparent {
		t.Colors = append(t.Colors, RGB{})
		t.HasTransparent = true
		t.TransparentIndex = uint8(len(t.Colors) - 1)
	}

	m := NewMapper(t)
	remap := make(Remap, len(h))
	for c := range h {
		remap[c] = m.Nearest(c)
	}
	return t, remap, nil
}
