package transform

import (
	"image"
	"time"

	"github.com/deepteams/gifkit/animation"
	"github.com/deepteams/gifkit/palette"
)

// ComposeParams configures Compose.
type ComposeParams struct {
	// Delay is applied to every frame. Zero selects animation.DefaultDelay.
	Delay time.Duration
	// LoopCount is 0 for infinite, N for N plays or animation.LoopOnce.
	LoopCount int
	// MaxColors bounds the shared color table. Zero selects 256.
	MaxColors int
	// Quantizer reduces colors when the images use more than MaxColors.
	// Nil selects median cut.
	Quantizer palette.Quantizer
}

// Validate checks the parameter ranges.
func (p *ComposeParams) Validate() error {
	if p.Delay < 0 {
		return invalidf("delay %v", p.Delay)
	}
	if p.LoopCount < animation.LoopOnce || p.LoopCount > 0xFFFF {
		return invalidf("loop count %d", p.LoopCount)
	}
	if p.MaxColors != 0 && (p.MaxColors < 2 || p.MaxColors > palette.MaxColors) {
		return invalidf("max colors %d", p.MaxColors)
	}
	return nil
}

// Compose builds an animation with one frame per image. All images are
// converted to NRGBA and share one global color table. The canvas is as
// large as the largest image; every frame sits at the origin and is cleared
// after display so smaller frames never show their predecessors.
func Compose(images []image.Image, p ComposeParams) (*animation.Animation, error) {
	if len(images) == 0 {
		return nil, ErrEmptyInputSet
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	delay := p.Delay
	if delay == 0 {
		delay = animation.DefaultDelay
	}
	maxColors := p.MaxColors
	if maxColors == 0 {
		maxColors = palette.MaxColors
	}

	rgba := make([]*image.NRGBA, len(images))
	err := forEachFrame(len(images), func(i int) error {
		if images[i] == nil || images[i].Bounds().Empty() {
			return invalidf("empty image")
		}
		rgba[i] = animation.ToNRGBA(images[i])
		return nil
	})
	if err != nil {
		return nil, err
	}

	frames := make([]image.Image, len(rgba))
	w, h := 0, 0
	for i, img := range rgba {
		frames[i] = img
		w = max(w, img.Rect.Dx())
		h = max(h, img.Rect.Dy())
	}
	table, _, err := palette.Builder{Quantizer: p.Quantizer}.Build(frames, maxColors)
	if err != nil {
		return nil, err
	}

	anim := &animation.Animation{
		CanvasWidth:  w,
		CanvasHeight: h,
		GlobalTable:  table,
		LoopCount:    p.LoopCount,
		Frames:       make([]animation.Frame, len(rgba)),
	}
	err = forEachFrame(len(rgba), func(i int) error {
		f := &anim.Frames[i]
		indexed(f, rgba[i], table)
		f.Delay = delay
		f.Dispose = animation.DisposeBackground
		return nil
	})
	if err != nil {
		return nil, err
	}
	return anim, nil
}
