package transform

import (
	"image"
	"math"

	"github.com/deepteams/gifkit/animation"
	"github.com/deepteams/gifkit/palette"
	"github.com/deepteams/gifkit/resample"
)

// ResizeParams selects the target canvas size. Width and Height together
// give an exact size; either one alone keeps the aspect ratio; otherwise
// ScalePercent scales both dimensions.
type ResizeParams struct {
	Width        int
	Height       int
	ScalePercent float64
	Method       resample.Method
}

// Validate checks the parameters without reference to a canvas.
func (p *ResizeParams) Validate() error {
	if p.Width < 0 || p.Height < 0 {
		return invalidf("size %dx%d", p.Width, p.Height)
	}
	if math.IsNaN(p.ScalePercent) || math.IsInf(p.ScalePercent, 0) || p.ScalePercent < 0 {
		return invalidf("scale percent %v", p.ScalePercent)
	}
	if p.Width == 0 && p.Height == 0 && p.ScalePercent == 0 {
		return invalidf("no target size")
	}
	return nil
}

// TargetSize resolves the output canvas size for a w x h canvas.
func (p *ResizeParams) TargetSize(w, h int) (int, int, error) {
	if err := p.Validate(); err != nil {
		return 0, 0, err
	}
	var nw, nh int
	switch {
	case p.Width > 0 && p.Height > 0:
		nw, nh = p.Width, p.Height
	case p.Width > 0:
		nw = p.Width
		nh = int(math.Round(float64(h) * float64(p.Width) / float64(w)))
	case p.Height > 0:
		nh = p.Height
		nw = int(math.Round(float64(w) * float64(p.Height) / float64(h)))
	default:
		nw = int(math.Round(float64(w) * p.ScalePercent / 100))
		nh = int(math.Round(float64(h) * p.ScalePercent / 100))
	}
	if nw < 1 || nh < 1 || nw > 0xFFFF || nh > 0xFFFF {
		return 0, 0, invalidf("target size %dx%d", nw, nh)
	}
	return nw, nh, nil
}

// Resize scales every frame with r. Frame offsets and sizes are scaled with
// the canvas; each resampled frame gets its own color table built from its
// new pixels. Frames are processed in parallel.
func Resize(a *animation.Animation, p ResizeParams, r resample.Resampler) (*animation.Animation, error) {
	if err := requireFrames(a); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, invalidf("nil resampler")
	}
	nw, nh, err := p.TargetSize(a.CanvasWidth, a.CanvasHeight)
	if err != nil {
		return nil, err
	}
	sx := float64(nw) / float64(a.CanvasWidth)
	sy := float64(nh) / float64(a.CanvasHeight)

	out := &animation.Animation{
		CanvasWidth:     nw,
		CanvasHeight:    nh,
		BackgroundIndex: a.BackgroundIndex,
		LoopCount:       a.LoopCount,
		Comments:        append([]string(nil), a.Comments...),
		Frames:          make([]animation.Frame, len(a.Frames)),
	}
	err = forEachFrame(len(a.Frames), func(i int) error {
		src := &a.Frames[i]
		x0, x1 := scaleSpan(src.OffsetX, src.Width, sx, nw)
		y0, y1 := scaleSpan(src.OffsetY, src.Height, sy, nh)

		img := r.Resample(src.NRGBA(a.GlobalTable), x1-x0, y1-y0, p.Method)
		table, _, err := palette.Builder{}.Build([]image.Image{img}, palette.MaxColors)
		if err != nil {
			return err
		}
		f := &out.Frames[i]
		indexed(f, img, table)
		f.OffsetX, f.OffsetY = x0, y0
		f.LocalTable = table
		f.Delay = src.Delay
		f.Dispose = src.Dispose
		f.Interlaced = src.Interlaced
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// scaleSpan scales the interval [off, off+size) by s and clamps it to
// [0, limit) while keeping it at least one pixel long.
func scaleSpan(off, size int, s float64, limit int) (int, int) {
	lo := int(math.Round(float64(off) * s))
	hi := int(math.Round(float64(off+size) * s))
	lo = min(max(lo, 0), limit-1)
	hi = min(max(hi, lo+1), limit)
	return lo, hi
}
