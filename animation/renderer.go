package animation

import (
	"bytes"
	"fmt"
	"image"
	"time"

	"golang.org/x/image/draw"
)

// Renderer reconstructs the full canvas frame by frame, applying each
// frame's disposal method before the next one is drawn. It keeps two
// buffers:
//   - curr: the canvas with the current frame drawn
//   - disposed: the canvas after the previous frame's disposal
//
// The canvas starts fully transparent.
type Renderer struct {
	anim     *Animation
	curr     *image.NRGBA
	disposed *image.NRGBA
	pos      int
}

// NewRenderer creates a Renderer for anim.
func NewRenderer(anim *Animation) *Renderer {
	bounds := image.Rect(0, 0, anim.CanvasWidth, anim.CanvasHeight)
	return &Renderer{
		anim:     anim,
		curr:     image.NewNRGBA(bounds),
		disposed: image.NewNRGBA(bounds),
	}
}

// HasNext reports whether more frames are available.
func (r *Renderer) HasNext() bool {
	return r.pos < len(r.anim.Frames)
}

// NextFrame draws the next frame and returns a snapshot of the canvas
// together with the frame delay. The snapshot is owned by the caller.
func (r *Renderer) NextFrame() (*image.NRGBA, time.Duration, error) {
	if !r.HasNext() {
		return nil, 0, ErrNoFrames
	}
	f := &r.anim.Frames[r.pos]
	t := f.Table(r.anim.GlobalTable)
	if t.Len() == 0 {
		return nil, 0, ErrNoColorTable
	}
	if len(f.Pix) != f.Width*f.Height {
		return nil, 0, fmt.Errorf("frame %d: %w", r.pos, ErrInvalidFrame)
	}
	n := t.EncodedLen()
	for _, idx := range f.Pix {
		if int(idx) >= n {
			return nil, 0, fmt.Errorf("frame %d: %w: %d >= %d", r.pos, ErrIndexOutOfRange, idx, n)
		}
	}

	copy(r.curr.Pix, r.disposed.Pix)
	rect := f.Bounds().Intersect(r.curr.Bounds())
	if !rect.Empty() {
		src := f.Paletted(r.anim.GlobalTable)
		draw.Copy(r.curr, rect.Min, src, rect, draw.Over, nil)
	}

	snap := cloneNRGBA(r.curr)

	// For DisposePrevious the disposed buffer already holds the canvas as
	// it was before this frame.
	switch f.Dispose {
	case DisposePrevious:
	case DisposeBackground:
		copy(r.disposed.Pix, r.curr.Pix)
		clearRect(r.disposed, rect)
	default:
		copy(r.disposed.Pix, r.curr.Pix)
	}

	r.pos++
	return snap, f.Delay, nil
}

// Reset rewinds the renderer to the first frame and clears the canvas.
func (r *Renderer) Reset() {
	r.pos = 0
	clear(r.curr.Pix)
	clear(r.disposed.Pix)
}

// Canvas returns the current canvas state (not a copy).
func (r *Renderer) Canvas() *image.NRGBA {
	return r.curr
}

// Render composites every frame of a and returns one full-canvas image per
// frame.
func (a *Animation) Render() ([]*image.NRGBA, error) {
	r := NewRenderer(a)
	out := make([]*image.NRGBA, 0, len(a.Frames))
	for r.HasNext() {
		img, _, err := r.NextFrame()
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

// clearRect sets rect to transparent. Disposal to background clears to
// transparency rather than the background color, as browsers do.
func clearRect(canvas *image.NRGBA, rect image.Rectangle) {
	draw.Draw(canvas, rect, image.Transparent, image.Point{}, draw.Src)
}

// cloneNRGBA creates a deep copy of an NRGBA image.
func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// ChangedRect returns the smallest rectangle containing every pixel that
// differs between prev and curr, which must have the same bounds. The
// result is empty when the images are identical.
func ChangedRect(prev, curr *image.NRGBA) image.Rectangle {
	w := prev.Bounds().Dx()
	h := prev.Bounds().Dy()
	if w == 0 || h == 0 {
		return image.Rectangle{}
	}
	stride := prev.Stride
	rowLen := w * 4

	minY := h
	for y := 0; y < h; y++ {
		off := y * stride
		if !bytes.Equal(prev.Pix[off:off+rowLen], curr.Pix[off:off+rowLen]) {
			minY = y
			break
		}
	}
	if minY == h {
		return image.Rectangle{}
	}

	maxY := minY + 1
	for y := h - 1; y > minY; y-- {
		off := y * stride
		if !bytes.Equal(prev.Pix[off:off+rowLen], curr.Pix[off:off+rowLen]) {
			maxY = y + 1
			break
		}
	}

	// Narrow X progressively: each row only needs to scan outside the
	// range found so far.
	minX, maxX := w, 0
	for y := minY; y < maxY; y++ {
		rowOff := y * stride
		for x := 0; x < minX; x++ {
			off := rowOff + x*4
			if !bytes.Equal(prev.Pix[off:off+4], curr.Pix[off:off+4]) {
				minX = x
				break
			}
		}
		for x := w - 1; x >= maxX; x-- {
			off := rowOff + x*4
			if !bytes.Equal(prev.Pix[off:off+4], curr.Pix[off:off+4]) {
				maxX = x + 1
				break
			}
		}
		if minX == 0 && maxX == w {
			break
		}
	}
	b := prev.Bounds().Min
	return image.Rect(minX, minY, maxX, maxY).Add(b)
}
