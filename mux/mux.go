package mux

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/deepteams/gifkit/internal/bitio"
	"github.com/deepteams/gifkit/internal/container"
	"github.com/deepteams/gifkit/internal/lzw"
	"github.com/deepteams/gifkit/internal/pool"
	"github.com/deepteams/gifkit/palette"
)

// FrameOptions specifies per-frame parameters.
type FrameOptions struct {
	OffsetX          int
	OffsetY          int
	Delay            int // hundredths of a second
	DisposeMode      DisposeMode
	HasTransparency  bool
	TransparentIndex uint8
	LocalTable       *palette.ColorTable
	Interlaced       bool
}

type muxFrame struct {
	pix    []uint8
	width  int
	height int
	opts   FrameOptions
}

// Muxer assembles a GIF89a file from indexed frames.
type Muxer struct {
	frames     []muxFrame
	global     *palette.ColorTable
	background uint8
	loopCount  int
	comments   []string
	// Explicit canvas dimensions. When set (>0), these take priority over
	// the canvas size computed from frame extents.
	canvasWidth  int
	canvasHeight int
}

// maxDelay and maxDimension are the 16-bit field limits.
const (
	maxDelay     = 0xFFFF
	maxLoopCount = 0xFFFF
	maxDimension = 0xFFFF
)

var (
	ErrNoFrames      = errors.New("mux: no frames to assemble")
	ErrFrameEmpty    = errors.New("mux: frame data is empty")
	ErrMuxValidation = errors.New("mux: validation failed")
)

// NewMuxer creates a new Muxer. No loop extension is written until
// SetLoopCount is called with a non-negative count.
func NewMuxer() *Muxer {
	return &Muxer{loopCount: -1}
}

// SetLoopCount sets the NETSCAPE2.0 loop count (0 = infinite). A negative
// count omits the extension so viewers play the animation once. Values are
// clamped to 65535.
func (m *Muxer) SetLoopCount(count int) {
	if count > maxLoopCount {
		count = maxLoopCount
	}
	if count < 0 {
		count = -1
	}
	m.loopCount = count
}

// SetCanvasSize explicitly sets the logical screen dimensions.
func (m *Muxer) SetCanvasSize(width, height int) {
	m.canvasWidth = width
	m.canvasHeight = height
}

// SetGlobalTable sets the global color table. Frames whose local table
// holds the same colors are written without one.
func (m *Muxer) SetGlobalTable(t *palette.ColorTable) {
	m.global = t
}

// SetBackgroundIndex sets the logical screen background color index.
func (m *Muxer) SetBackgroundIndex(i uint8) {
	m.background = i
}

// AddComment adds a comment extension written before the first frame.
func (m *Muxer) AddComment(text string) {
	m.comments = append(m.comments, text)
}

// AddFrame adds a frame of width*height palette indices. opts may be nil.
// The delay is clamped to [0, 65535].
func (m *Muxer) AddFrame(pix []uint8, width, height int, opts *FrameOptions) error {
	if len(pix) == 0 || width <= 0 || height <= 0 {
		return ErrFrameEmpty
	}
	if len(pix) != width*height {
		return fmt.Errorf("%w: %d pixels for %dx%d frame", ErrMuxValidation, len(pix), width, height)
	}
	fo := FrameOptions{}
	if opts != nil {
		fo = *opts
	}
	fo.Delay = min(max(fo.Delay, 0), maxDelay)
	m.frames = append(m.frames, muxFrame{pix: pix, width: width, height: height, opts: fo})
	return nil
}

// NumFrames returns the number of frames added so far.
func (m *Muxer) NumFrames() int {
	return len(m.frames)
}

// canvasSize returns the explicit canvas size or the union of all frame
// rectangles.
func (m *Muxer) canvasSize() (int, int) {
	if m.canvasWidth > 0 && m.canvasHeight > 0 {
		return m.canvasWidth, m.canvasHeight
	}
	w, h := 0, 0
	for _, f := range m.frames {
		w = max(w, f.opts.OffsetX+f.width)
		h = max(h, f.opts.OffsetY+f.height)
	}
	return w, h
}

// globalTable returns the table to write as global: the explicit one, or
// the local table shared by every frame.
func (m *Muxer) globalTable() *palette.ColorTable {
	if m.global != nil {
		return m.global
	}
	first := m.frames[0].opts.LocalTable
	if first == nil {
		return nil
	}
	for _, f := range m.frames[1:] {
		if !sameTable(f.opts.LocalTable, first) {
			return nil
		}
	}
	return first
}

// sameTable reports whether a and b encode to identical table bytes.
func sameTable(a, b *palette.ColorTable) bool {
	if a == nil || b == nil {
		return false
	}
	return a.EncodedLen() == b.EncodedLen() && a.SameColors(b)
}

// validate checks the muxer state for consistency before assembling.
func (m *Muxer) validate(global *palette.ColorTable) error {
	if len(m.frames) == 0 {
		return ErrNoFrames
	}
	canvasW, canvasH := m.canvasSize()
	if canvasW > maxDimension || canvasH > maxDimension {
		return fmt.Errorf("%w: canvas %dx%d exceeds 65535", ErrMuxValidation, canvasW, canvasH)
	}
	for i, f := range m.frames {
		endX := f.opts.OffsetX + f.width
		endY := f.opts.OffsetY + f.height
		if f.opts.OffsetX < 0 || f.opts.OffsetY < 0 || endX > canvasW || endY > canvasH {
			return fmt.Errorf("%w: frame %d (%dx%d at %d,%d) exceeds canvas (%dx%d)",
				ErrMuxValidation, i, f.width, f.height, f.opts.OffsetX, f.opts.OffsetY, canvasW, canvasH)
		}
		table := f.opts.LocalTable
		if table == nil {
			table = global
		}
		if table == nil {
			return fmt.Errorf("frame %d: %w", i, ErrNoColorTable)
		}
		if table.Len() > palette.MaxColors {
			return fmt.Errorf("%w: frame %d table has %d colors", ErrMuxValidation, i, table.Len())
		}
		n := table.EncodedLen()
		for _, p := range f.pix {
			if int(p) >= n {
				return fmt.Errorf("frame %d: %w: index %d, table of %d", i, ErrIndexOutOfRange, p, n)
			}
		}
	}
	return nil
}

// Assemble writes the complete GIF file to w. The file is built in memory
// first; nothing is written if any frame fails to encode.
func (m *Muxer) Assemble(w io.Writer) error {
	if len(m.frames) == 0 {
		return ErrNoFrames
	}
	global := m.globalTable()
	if err := m.validate(global); err != nil {
		return err
	}

	infos := make([]container.FrameInfo, len(m.frames))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range m.frames {
		i := i // per-iteration copy (go 1.21 loop semantics)
		g.Go(func() error {
			fi, err := encodeFrame(&m.frames[i], global)
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			infos[i] = fi
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	size := container.HeaderSize + container.ScreenDescriptorSize + 3*palette.MaxColors + 32
	for i := range infos {
		size += 32 + len(infos[i].LocalTable) + bitio.BlocksLen(len(infos[i].Data))
	}
	buf := pool.Get(size)
	defer func() { pool.Put(buf) }()

	canvasW, canvasH := m.canvasSize()
	sd := container.ScreenDescriptor{Width: canvasW, Height: canvasH, BackgroundIndex: m.background}
	if global != nil {
		sd.GlobalTable = global.Bytes()
	}
	buf = container.AppendHeader(buf, sd)
	if m.loopCount >= 0 {
		buf = container.AppendLoop(buf, m.loopCount)
	}
	for _, c := range m.comments {
		buf = container.AppendComment(buf, c)
	}
	for i := range infos {
		buf = container.AppendGCE(buf, &infos[i])
		buf = container.AppendImage(buf, &infos[i])
	}
	buf = container.AppendTrailer(buf)

	_, err := w.Write(buf)
	return err
}

func encodeFrame(f *muxFrame, global *palette.ColorTable) (container.FrameInfo, error) {
	fi := container.FrameInfo{
		Left:             f.opts.OffsetX,
		Top:              f.opts.OffsetY,
		Width:            f.width,
		Height:           f.height,
		Interlaced:       f.opts.Interlaced,
		HasGCE:           true,
		Dispose:          f.opts.DisposeMode,
		Delay:            f.opts.Delay,
		HasTransparency:  f.opts.HasTransparency,
		TransparentIndex: f.opts.TransparentIndex,
	}
	table := global
	if lt := f.opts.LocalTable; lt != nil && !sameTable(lt, global) {
		fi.LocalTable = lt.Bytes()
		table = lt
	}
	fi.LitWidth = lzw.LitWidth(table.EncodedLen())

	pix := f.pix
	if fi.Interlaced {
		pix = container.Interlace(pix, f.width, f.height)
	}
	data, err := lzw.Encode(pix, fi.LitWidth)
	if err != nil {
		return fi, err
	}
	fi.Data = data
	return fi, nil
}
