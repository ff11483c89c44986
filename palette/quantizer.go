package palette

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/ericpauley/go-quantize/quantize"
)

// Quantizer names accepted by ParseQuantizer.
const (
	QuantizerMedianCut  = "median-cut"
	QuantizerGoQuantize = "go-quantize"
)

// Quantizer reduces a histogram to at most n representative colors.
type Quantizer interface {
	Quantize(h Histogram, n int) []RGB
	Name() string
}

// ParseQuantizer returns the quantizer registered under name. An empty
// name selects the built-in median cut.
func ParseQuantizer(name string) (Quantizer, error) {
	switch name {
	case "", QuantizerMedianCut:
		return MedianCut{}, nil
	case QuantizerGoQuantize:
		return DrawQuantizer{Q: quantize.MedianCutQuantizer{}, Label: QuantizerGoQuantize}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownQuantizer, name)
}

// mosaicBudget caps the number of pixels synthesized for a draw.Quantizer.
const mosaicBudget = 1 << 16

// DrawQuantizer adapts an image/draw Quantizer, which works on images, to
// histograms. The histogram is rendered as a mosaic in which every color
// covers an area proportional to its count.
type DrawQuantizer struct {
	Q     draw.Quantizer
	Label string
}

// Name implements Quantizer.
func (d DrawQuantizer) Name() string {
	if d.Label == "" {
		return "draw"
	}
	return d.Label
}

// Quantize implements Quantizer. It falls back to MedianCut if the wrapped
// quantizer yields no colors.
func (d DrawQuantizer) Quantize(h Histogram, n int) []RGB {
	entries := h.entries()
	if len(entries) <= n {
		return h.Colors()
	}
	p := d.Q.Quantize(make(color.Palette, 0, n), mosaic(entries))
	out := make([]RGB, 0, len(p))
	seen := make(map[RGB]bool, len(p))
	for _, c := range p {
		nc := color.NRGBAModel.Convert(c).(color.NRGBA)
		if nc.A < alphaThreshold {
			continue
		}
		rgb := RGB{nc.R, nc.G, nc.B}
		if !seen[rgb] && len(out) < n {
			seen[rgb] = true
			out = append(out, rgb)
		}
	}
	if len(out) == 0 {
		return MedianCut{}.Quantize(h, n)
	}
	return out
}

// mosaic renders weighted colors into a 256-pixel-wide image. Every color
// gets at least one pixel; the tail of the last row repeats the most
// frequent color.
func mosaic(entries []weighted) *image.NRGBA {
	total := 0
	for _, e := range entries {
		total += e.n
	}
	budget := mosaicBudget
	if len(entries) > budget {
		budget = len(entries)
	}
	counts := make([]int, len(entries))
	area := 0
	for i, e := range entries {
		c := int(int64(e.n) * int64(budget) / int64(total))
		if c < 1 {
			c = 1
		}
		counts[i] = c
		area += c
	}

	const w = 256
	h := (area + w - 1) / w
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	px := 0
	put := func(c RGB) {
		o := 4 * px
		img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = c.R, c.G, c.B, 0xff
		px++
	}
	for i, e := range entries {
		for j := 0; j < counts[i]; j++ {
			put(e.c)
		}
	}
	for px < w*h {
		put(entries[0].c)
	}
	return img
}
