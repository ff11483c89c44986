package transform

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	"golang.org/x/image/draw"

	"github.com/deepteams/gifkit/animation"
)

// Still-image formats accepted by Split.
var splitFormats = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "bmp": true, "tiff": true,
}

// SplitParams configures Split.
type SplitParams struct {
	// Format is the still-image format handed to the FrameStore. Empty
	// selects png.
	Format string
}

// Validate normalizes and checks the format name.
func (p *SplitParams) Validate() error {
	p.Format = strings.ToLower(strings.TrimPrefix(p.Format, "."))
	if p.Format == "" {
		p.Format = "png"
	}
	if !splitFormats[p.Format] {
		return invalidf("format %q", p.Format)
	}
	return nil
}

// SplitResult describes the stored frames.
type SplitResult struct {
	Handles    []string
	FrameCount int
	Delays     []time.Duration
}

// Split renders every frame onto the full canvas with disposal applied and
// hands the images to store in display order. Formats without alpha get
// frames flattened onto the background color (black when there is no
// global table).
func Split(a *animation.Animation, p SplitParams, store FrameStore) (*SplitResult, error) {
	if err := requireFrames(a); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, invalidf("nil frame store")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	res := &SplitResult{
		Handles:    make([]string, 0, len(a.Frames)),
		FrameCount: len(a.Frames),
		Delays:     make([]time.Duration, 0, len(a.Frames)),
	}
	flatten := p.Format == "jpg" || p.Format == "jpeg"
	bg := background(a)

	r := animation.NewRenderer(a)
	for i := 0; r.HasNext(); i++ {
		canvas, delay, err := r.NextFrame()
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		var img image.Image = canvas
		if flatten {
			img = flattenRGB(canvas, bg)
		}
		h, err := store.StoreFrame(i, img, a.Frames[i].Table(a.GlobalTable), p.Format)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		res.Handles = append(res.Handles, h)
		res.Delays = append(res.Delays, delay)
	}
	return res, nil
}

func background(a *animation.Animation) color.RGBA {
	t := a.GlobalTable
	if int(a.BackgroundIndex) < t.Len() {
		c := t.Colors[a.BackgroundIndex]
		return color.RGBA{c.R, c.G, c.B, 0xff}
	}
	return color.RGBA{A: 0xff}
}

// flattenRGB composites img over an opaque background.
func flattenRGB(img *image.NRGBA, bg color.RGBA) *image.RGBA {
	dst := image.NewRGBA(img.Bounds())
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Over)
	return dst
}
