package transform

import (
	"fmt"
	"image"

	"github.com/deepteams/gifkit/animation"
	"github.com/deepteams/gifkit/palette"
)

// CropParams selects the canvas rectangle to keep.
type CropParams struct {
	X, Y          int
	Width, Height int
}

// Rect returns the crop rectangle.
func (p *CropParams) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

// Validate checks the rectangle against a canvas of canvasW x canvasH.
func (p *CropParams) Validate(canvasW, canvasH int) error {
	if p.Width <= 0 || p.Height <= 0 {
		return invalidf("crop size %dx%d", p.Width, p.Height)
	}
	if p.X < 0 || p.Y < 0 || !p.Rect().In(image.Rect(0, 0, canvasW, canvasH)) {
		return fmt.Errorf("%w: %v not in %dx%d", ErrCropOutOfBounds, p.Rect(), canvasW, canvasH)
	}
	return nil
}

// Crop keeps the given rectangle of every frame. Frames are intersected with
// the rectangle and shifted so that it becomes the new canvas. A frame that
// lies entirely outside is replaced by a transparent 1x1 frame so that the
// frame count and timing are preserved.
func Crop(a *animation.Animation, p CropParams) (*animation.Animation, error) {
	if err := requireFrames(a); err != nil {
		return nil, err
	}
	if err := p.Validate(a.CanvasWidth, a.CanvasHeight); err != nil {
		return nil, err
	}
	crop := p.Rect()

	out := &animation.Animation{
		CanvasWidth:     p.Width,
		CanvasHeight:    p.Height,
		GlobalTable:     a.GlobalTable.Clone(),
		BackgroundIndex: a.BackgroundIndex,
		LoopCount:       a.LoopCount,
		Comments:        append([]string(nil), a.Comments...),
		Frames:          make([]animation.Frame, len(a.Frames)),
	}
	for i := range a.Frames {
		out.Frames[i] = cropFrame(&a.Frames[i], a.GlobalTable, crop)
	}
	return out, nil
}

func cropFrame(f *animation.Frame, global *palette.ColorTable, crop image.Rectangle) animation.Frame {
	r := f.Bounds().Intersect(crop)
	if r.Empty() {
		return emptyFrame(f, global)
	}
	c := animation.Frame{
		Pix:              make([]uint8, 0, r.Dx()*r.Dy()),
		Width:            r.Dx(),
		Height:           r.Dy(),
		OffsetX:          r.Min.X - crop.Min.X,
		OffsetY:          r.Min.Y - crop.Min.Y,
		LocalTable:       f.LocalTable.Clone(),
		Delay:            f.Delay,
		Dispose:          f.Dispose,
		HasTransparency:  f.HasTransparency,
		TransparentIndex: f.TransparentIndex,
		Interlaced:       f.Interlaced,
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := (y-f.OffsetY)*f.Width + r.Min.X - f.OffsetX
		c.Pix = append(c.Pix, f.Pix[off:off+r.Dx()]...)
	}
	return c
}

// emptyFrame returns a 1x1 fully transparent frame carrying f's delay. The
// frame's own transparent index is reused only when it lies inside its
// encoded table.
func emptyFrame(f *animation.Frame, global *palette.ColorTable) animation.Frame {
	e := animation.Frame{
		Width:   1,
		Height:  1,
		Delay:   f.Delay,
		Dispose: animation.DisposeNone,
	}
	if f.HasTransparency && int(f.TransparentIndex) < f.Table(global).EncodedLen() {
		e.Pix = []uint8{f.TransparentIndex}
		e.LocalTable = f.LocalTable.Clone()
		e.HasTransparency = true
		e.TransparentIndex = f.TransparentIndex
		return e
	}
	e.Pix = []uint8{0}
	e.LocalTable = palette.NewColorTable([]palette.RGB{{}})
	e.HasTransparency = true
	return e
}
