package animation

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/deepteams/gifkit/mux"
	"github.com/deepteams/gifkit/palette"
)

// Animation holds all frames and parameters of a GIF animation.
type Animation struct {
	// CanvasWidth and CanvasHeight are the logical screen dimensions.
	CanvasWidth  int
	CanvasHeight int

	// GlobalTable applies to frames without a local table. May be nil.
	GlobalTable *palette.ColorTable

	// BackgroundIndex is the logical screen background color index.
	BackgroundIndex uint8

	// Frames in display order.
	Frames []Frame

	// LoopCount is the number of times to play (0 = infinite, LoopOnce =
	// no loop extension).
	LoopCount int

	// Comments from comment extensions, written back on encode.
	Comments []string
}

const (
	// LoopForever plays the animation indefinitely.
	LoopForever = 0
	// LoopOnce omits the loop extension; viewers play the frames once.
	LoopOnce = -1

	// DefaultDelay is used for frames that carry no delay.
	DefaultDelay = 100 * time.Millisecond
	// MinDelay is one GIF time unit.
	MinDelay = 10 * time.Millisecond
)

var (
	ErrNoFrames        = errors.New("animation: no frames")
	ErrCanvasSize      = errors.New("animation: invalid canvas size")
	ErrFrameOutOfRect  = errors.New("animation: frame outside canvas")
	ErrInvalidFrame    = errors.New("animation: invalid frame")
	ErrNoColorTable    = errors.New("animation: frame has no color table")
	ErrIndexOutOfRange = errors.New("animation: pixel index outside color table")
)

// maxDimension is the 16-bit limit of the logical screen fields.
const maxDimension = 0xFFFF

// maxDelay is the largest delay a graphic control extension can carry.
const maxDelay = 0xFFFF * MinDelay

// Decode reads a GIF from r.
func Decode(r io.Reader) (*Animation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(data)
}

// DecodeBytes parses a GIF from raw bytes. Frames carrying a zero delay, or
// no graphic control extension, get DefaultDelay.
func DecodeBytes(data []byte) (*Animation, error) {
	dmx, err := mux.NewDemuxer(data)
	if err != nil {
		return nil, err
	}

	feat := dmx.GetFeatures()
	anim := &Animation{
		CanvasWidth:     feat.Width,
		CanvasHeight:    feat.Height,
		GlobalTable:     dmx.GlobalTable(),
		BackgroundIndex: dmx.BackgroundIndex(),
		LoopCount:       dmx.LoopCount(),
		Comments:        dmx.Comments(),
	}
	if anim.LoopCount < 0 {
		anim.LoopCount = LoopOnce
	}

	it := dmx.NewFrameIterator()
	for it.HasNext() {
		fi, err := it.Next()
		if err != nil {
			return nil, err
		}
		anim.Frames = append(anim.Frames, Frame{
			Pix:              fi.Pix,
			Width:            fi.Width,
			Height:           fi.Height,
			OffsetX:          fi.OffsetX,
			OffsetY:          fi.OffsetY,
			LocalTable:       fi.LocalTable,
			Delay:            centisToDelay(fi.Delay),
			Dispose:          DisposeMethod(fi.DisposeMode),
			HasTransparency:  fi.HasTransparency,
			TransparentIndex: fi.TransparentIndex,
			Interlaced:       fi.Interlaced,
		})
	}
	return anim, nil
}

// centisToDelay converts a GIF delay to a duration.
func centisToDelay(cs int) time.Duration {
	if cs <= 0 {
		return DefaultDelay
	}
	return time.Duration(cs) * MinDelay
}

// DelayToCentis rounds d to the nearest hundredth of a second, with a
// minimum of one.
func DelayToCentis(d time.Duration) int {
	if d > maxDelay {
		d = maxDelay
	}
	cs := int((d + MinDelay/2) / MinDelay)
	return max(cs, 1)
}

// TotalDuration returns the sum of all frame delays, i.e. the length of a
// single pass.
func (a *Animation) TotalDuration() time.Duration {
	var total time.Duration
	for i := range a.Frames {
		total += a.Frames[i].Delay
	}
	return total
}

// EncodedDuration returns the length of a single pass as stored in a GIF
// file, with every delay rounded by DelayToCentis.
func (a *Animation) EncodedDuration() time.Duration {
	var total time.Duration
	for i := range a.Frames {
		total += time.Duration(DelayToCentis(a.Frames[i].Delay)) * MinDelay
	}
	return total
}

// PlaybackDuration returns the total playback time implied by the loop
// count. infinite is true when the animation loops forever, in which case
// d is the duration of one pass.
func (a *Animation) PlaybackDuration() (d time.Duration, infinite bool) {
	pass := a.TotalDuration()
	switch {
	case a.LoopCount == LoopForever:
		return pass, true
	case a.LoopCount < 0:
		return pass, false
	}
	return pass * time.Duration(a.LoopCount), false
}

// Clone returns a deep copy of a. Transforms work on clones so their input
// is never modified.
func (a *Animation) Clone() *Animation {
	c := *a
	c.GlobalTable = a.GlobalTable.Clone()
	c.Comments = append([]string(nil), a.Comments...)
	c.Frames = make([]Frame, len(a.Frames))
	for i := range a.Frames {
		c.Frames[i] = a.Frames[i].Clone()
	}
	return &c
}

// Validate checks the structural invariants required for encoding: at
// least one frame, a canvas within 16-bit limits that contains every frame,
// and pixel indices that resolve against each frame's color table.
func (a *Animation) Validate() error {
	if len(a.Frames) == 0 {
		return ErrNoFrames
	}
	if a.CanvasWidth <= 0 || a.CanvasHeight <= 0 ||
		a.CanvasWidth > maxDimension || a.CanvasHeight > maxDimension {
		return fmt.Errorf("%w: %dx%d", ErrCanvasSize, a.CanvasWidth, a.CanvasHeight)
	}
	canvas := image.Rect(0, 0, a.CanvasWidth, a.CanvasHeight)
	for i := range a.Frames {
		if err := a.validateFrame(&a.Frames[i], canvas); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return nil
}

func (a *Animation) validateFrame(f *Frame, canvas image.Rectangle) error {
	if f.Width <= 0 || f.Height <= 0 || len(f.Pix) != f.Width*f.Height {
		return fmt.Errorf("%w: %d pixels for %dx%d", ErrInvalidFrame, len(f.Pix), f.Width, f.Height)
	}
	if f.OffsetX < 0 || f.OffsetY < 0 || !f.Bounds().In(canvas) {
		return fmt.Errorf("%w: %v not in %v", ErrFrameOutOfRect, f.Bounds(), canvas)
	}
	t := f.Table(a.GlobalTable)
	if t.Len() == 0 {
		return ErrNoColorTable
	}
	n := t.EncodedLen()
	for _, idx := range f.Pix {
		if int(idx) >= n {
			return fmt.Errorf("%w: %d >= %d", ErrIndexOutOfRange, idx, n)
		}
	}
	return nil
}

// EncodeOptions configures Encode.
type EncodeOptions struct {
	// Interlace writes every frame interlaced. Otherwise each frame keeps
	// its own Interlaced flag.
	Interlace bool

	// OmitComments drops comment extensions.
	OmitComments bool
}

// Encode writes a as a GIF89a stream to w. The animation is validated first;
// nothing is written when validation fails.
func (a *Animation) Encode(w io.Writer, opts *EncodeOptions) error {
	if opts == nil {
		opts = &EncodeOptions{}
	}
	if err := a.Validate(); err != nil {
		return err
	}

	m := mux.NewMuxer()
	m.SetCanvasSize(a.CanvasWidth, a.CanvasHeight)
	m.SetGlobalTable(a.GlobalTable)
	m.SetBackgroundIndex(a.BackgroundIndex)
	m.SetLoopCount(a.LoopCount)
	if !opts.OmitComments {
		for _, c := range a.Comments {
			m.AddComment(c)
		}
	}
	for i := range a.Frames {
		f := &a.Frames[i]
		fo := &mux.FrameOptions{
			OffsetX:          f.OffsetX,
			OffsetY:          f.OffsetY,
			Delay:            DelayToCentis(f.Delay),
			DisposeMode:      mux.DisposeMode(f.Dispose),
			HasTransparency:  f.HasTransparency,
			TransparentIndex: f.TransparentIndex,
			LocalTable:       f.LocalTable,
			Interlaced:       f.Interlaced || opts.Interlace,
		}
		if err := m.AddFrame(f.Pix, f.Width, f.Height, fo); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return m.Assemble(w)
}

// EncodeBytes encodes a and returns the GIF bytes.
func (a *Animation) EncodeBytes(opts *EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := a.Encode(&buf, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
