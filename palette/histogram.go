package palette

import (
	"image"
	"image/color"
	"sort"
)

// alphaThreshold is the alpha below which a pixel is treated as transparent.
const alphaThreshold = 0x80

// Histogram counts opaque pixels per color.
type Histogram map[RGB]int

// Add counts the pixels of img and reports whether any pixel is transparent.
func (h Histogram) Add(img image.Image) (transparent bool) {
	switch m := img.(type) {
	case *image.Paletted:
		return h.addPaletted(m)
	case *image.NRGBA:
		b := m.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := m.Pix[m.PixOffset(b.Min.X, y):m.PixOffset(b.Max.X, y)]
			for i := 0; i < len(row); i += 4 {
				if row[i+3] < alphaThreshold {
					transparent = true
					continue
				}
				h[RGB{row[i], row[i+1], row[i+2]}]++
			}
		}
		return transparent
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A < alphaThreshold {
				transparent = true
				continue
			}
			h[RGB{c.R, c.G, c.B}]++
		}
	}
	return transparent
}

// addPaletted counts index frequencies first so large indexed frames cost
// one map update per palette entry.
func (h Histogram) addPaletted(m *image.Paletted) (transparent bool) {
	var counts [MaxColors]int
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := m.Pix[m.PixOffset(b.Min.X, y):m.PixOffset(b.Max.X, y)]
		for _, idx := range row {
			counts[idx]++
		}
	}
	for idx, n := range counts {
		if n == 0 || idx >= len(m.Palette) {
			continue
		}
		c := color.NRGBAModel.Convert(m.Palette[idx]).(color.NRGBA)
		if c.A < alphaThreshold {
			transparent = true
			continue
		}
		h[RGB{c.R, c.G, c.B}] += n
	}
	return transparent
}

// weighted is a histogram entry.
type weighted struct {
	c RGB
	n int
}

// entries returns the histogram sorted by descending count, ties broken by
// ascending packed color, so iteration order never depends on map order.
func (h Histogram) entries() []weighted {
	out := make([]weighted, 0, len(h))
	for c, n := range h {
		out = append(out, weighted{c, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].c.packed() < out[j].c.packed()
	})
	return out
}

// Colors returns the distinct colors, most frequent first.
func (h Histogram) Colors() []RGB {
	e := h.entries()
	out := make([]RGB, len(e))
	for i := range e {
		out[i] = e[i].c
	}
	return out
}
