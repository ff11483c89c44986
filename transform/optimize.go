package transform

import (
	"image"

	"github.com/deepteams/gifkit/animation"
	"github.com/deepteams/gifkit/palette"
)

// Optimization levels.
const (
	// LevelNone leaves color tables untouched.
	LevelNone = 0
	// LevelCompact drops unused entries from every color table.
	LevelCompact = 1
	// LevelGlobal requantizes all frames to one global table.
	LevelGlobal = 2
	// LevelDiff additionally replaces pixels that did not change since the
	// previous frame with transparency and crops every frame to its changed
	// rectangle.
	LevelDiff = 3
)

// OptimizeParams configures Optimize.
type OptimizeParams struct {
	Level int
	// MaxColors bounds the global table at LevelGlobal and above. Values
	// are clamped to [2, 256]; zero selects 256.
	MaxColors int
	// ReduceFPS keeps every Nth frame. Values below 1 keep every frame.
	ReduceFPS int
	// Quantizer used at LevelGlobal and above. Nil selects median cut.
	Quantizer palette.Quantizer
}

// Validate rejects negative levels and normalizes the remaining fields.
func (p *OptimizeParams) Validate() error {
	if p.Level < 0 {
		return invalidf("optimize level %d", p.Level)
	}
	if p.Level > LevelDiff {
		p.Level = LevelDiff
	}
	if p.MaxColors == 0 {
		p.MaxColors = palette.MaxColors
	}
	p.MaxColors = min(max(p.MaxColors, 2), palette.MaxColors)
	p.ReduceFPS = max(p.ReduceFPS, 1)
	return nil
}

// Optimize reduces the size of a. Frame-rate decimation keeps frames 0, N,
// 2N... and adds the delays of skipped frames to the frame kept before
// them, so the total duration is preserved. Palette work then follows the
// level.
func Optimize(a *animation.Animation, p OptimizeParams) (*animation.Animation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if a == nil || len(a.Frames) == 0 {
		return nil, ErrNoFramesRemain
	}

	out := decimate(a, p.ReduceFPS)
	if len(out.Frames) == 0 {
		return nil, ErrNoFramesRemain
	}

	switch {
	case p.Level >= LevelGlobal:
		if err := requantize(out, p); err != nil {
			return nil, err
		}
		if p.Level >= LevelDiff {
			if err := diffFrames(out); err != nil {
				return nil, err
			}
		}
	case p.Level == LevelCompact:
		if err := compact(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// decimate returns a deep copy of a holding every nth frame.
func decimate(a *animation.Animation, n int) *animation.Animation {
	out := &animation.Animation{
		CanvasWidth:     a.CanvasWidth,
		CanvasHeight:    a.CanvasHeight,
		GlobalTable:     a.GlobalTable.Clone(),
		BackgroundIndex: a.BackgroundIndex,
		LoopCount:       a.LoopCount,
		Comments:        append([]string(nil), a.Comments...),
		Frames:          make([]animation.Frame, 0, (len(a.Frames)+n-1)/n),
	}
	for i := 0; i < len(a.Frames); i += n {
		f := a.Frames[i].Clone()
		for j := i + 1; j < i+n && j < len(a.Frames); j++ {
			f.Delay += a.Frames[j].Delay
		}
		out.Frames = append(out.Frames, f)
	}
	return out
}

// compact gives every frame a local table holding only the entries it uses.
func compact(a *animation.Animation) error {
	err := forEachFrame(len(a.Frames), func(i int) error {
		f := &a.Frames[i]
		t := f.Table(a.GlobalTable).Clone()
		if t == nil {
			return animation.ErrNoColorTable
		}
		t.HasTransparent = f.HasTransparency
		t.TransparentIndex = f.TransparentIndex
		hi := 0
		for _, p := range f.Pix {
			hi = max(hi, int(p))
		}
		for len(t.Colors) <= hi {
			t.Colors = append(t.Colors, palette.RGB{})
		}
		pix, ct := palette.Compact(f.Pix, t)
		f.Pix = pix
		f.LocalTable = ct
		f.HasTransparency = ct.HasTransparent
		f.TransparentIndex = ct.TransparentIndex
		return nil
	})
	if err != nil {
		return err
	}
	a.GlobalTable = nil
	return nil
}

// requantize maps every frame onto a single global table built from the
// colors of all frames. At LevelDiff a transparent entry is always reserved.
func requantize(a *animation.Animation, p OptimizeParams) error {
	imgs := make([]*image.NRGBA, len(a.Frames))
	for i := range a.Frames {
		if a.Frames[i].Table(a.GlobalTable) == nil {
			return animation.ErrNoColorTable
		}
	}
	err := forEachFrame(len(a.Frames), func(i int) error {
		imgs[i] = a.Frames[i].NRGBA(a.GlobalTable)
		return nil
	})
	if err != nil {
		return err
	}

	h := make(palette.Histogram)
	transparent := p.Level >= LevelDiff
	for _, img := range imgs {
		if h.Add(img) {
			transparent = true
		}
	}
	table, _, err := palette.Builder{Quantizer: p.Quantizer}.FromHistogram(h, transparent, p.MaxColors)
	if err != nil {
		return err
	}

	err = forEachFrame(len(a.Frames), func(i int) error {
		f := &a.Frames[i]
		indexed(f, imgs[i], table)
		f.LocalTable = nil
		return nil
	})
	if err != nil {
		return err
	}
	a.GlobalTable = table
	return nil
}

// diffFrames rewrites a, whose frames share a global table with a
// transparent entry, so that every frame after the first only covers the
// pixels that changed on the rendered canvas. Unchanged pixels inside that
// rectangle become transparent. Animations where a frame turns a visible
// canvas pixel transparent are left as they are: a transparent pixel drawn
// over the canvas cannot erase it.
func diffFrames(a *animation.Animation) error {
	canvases, err := a.Render()
	if err != nil {
		return err
	}
	for i := 1; i < len(canvases); i++ {
		if erases(canvases[i-1], canvases[i]) {
			return nil
		}
	}

	table := a.GlobalTable
	ti := table.TransparentIndex
	err = forEachFrame(len(canvases), func(i int) error {
		f := &a.Frames[i]
		f.OffsetX, f.OffsetY = 0, 0
		f.Dispose = animation.DisposeNone
		f.LocalTable = nil
		f.HasTransparency = true
		f.TransparentIndex = ti
		curr := canvases[i]
		if i == 0 {
			f.Pix = palette.QuantizeFrame(curr, table)
			f.Width, f.Height = curr.Rect.Dx(), curr.Rect.Dy()
			return nil
		}

		prev := canvases[i-1]
		r := animation.ChangedRect(prev, curr)
		if r.Empty() {
			f.Pix = []uint8{ti}
			f.Width, f.Height = 1, 1
			return nil
		}
		m := palette.NewMapper(table)
		f.Pix = make([]uint8, 0, r.Dx()*r.Dy())
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				c := curr.NRGBAAt(x, y)
				if c == prev.NRGBAAt(x, y) {
					f.Pix = append(f.Pix, ti)
					continue
				}
				f.Pix = append(f.Pix, m.Index(c))
			}
		}
		f.OffsetX, f.OffsetY = r.Min.X, r.Min.Y
		f.Width, f.Height = r.Dx(), r.Dy()
		return nil
	})
	return err
}

// erases reports whether any pixel visible in prev is transparent in curr.
func erases(prev, curr *image.NRGBA) bool {
	for i := 3; i < len(curr.Pix); i += 4 {
		if curr.Pix[i] == 0 && prev.Pix[i] != 0 {
			return true
		}
	}
	return false
}
