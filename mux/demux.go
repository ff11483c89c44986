package mux

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/deepteams/gifkit/internal/container"
	"github.com/deepteams/gifkit/internal/lzw"
	"github.com/deepteams/gifkit/palette"
)

// DisposeMode specifies how the frame area is treated before the next frame
// is drawn.
type DisposeMode = container.DisposeMethod

const (
	DisposeUnspecified = container.DisposeUnspecified
	DisposeNone        = container.DisposeNone
	DisposeBackground  = container.DisposeBackground
	DisposePrevious    = container.DisposePrevious
)

// Features describes the file-level properties of a GIF.
type Features struct {
	Width          int
	Height         int
	HasAnimation   bool
	FrameCount     int
	LoopCount      int // -1 when the file has no loop extension
	HasGlobalTable bool
	Version        string
	// DeclaredWidth and DeclaredHeight are the logical screen size written
	// in the file. Width and Height exceed them when a frame overflowed it.
	DeclaredWidth  int
	DeclaredHeight int
}

// FrameInfo holds the decoded indices and metadata of a single frame.
type FrameInfo struct {
	Pix              []uint8 // row-major palette indices, Width*Height
	Width            int
	Height           int
	OffsetX          int
	OffsetY          int
	LocalTable       *palette.ColorTable // nil when the global table applies
	Interlaced       bool
	Delay            int // hundredths of a second
	DisposeMode      DisposeMode
	HasTransparency  bool
	TransparentIndex uint8
}

// Demuxer parses a GIF file and decodes the image data of every frame.
type Demuxer struct {
	features   Features
	global     *palette.ColorTable
	background uint8
	comments   []string
	frames     []FrameInfo
}

var (
	ErrNoColorTable    = errors.New("mux: frame has no color table")
	ErrIndexOutOfRange = errors.New("mux: pixel index outside color table")
	ErrFrameOutRange   = errors.New("mux: frame index out of range")
)

// NewDemuxer parses a GIF file from data and returns a Demuxer. Frames are
// parsed sequentially and their LZW data decoded in parallel.
func NewDemuxer(data []byte) (*Demuxer, error) {
	p, err := container.NewParser(data)
	if err != nil {
		return nil, err
	}
	f := p.Features()
	d := &Demuxer{
		features: Features{
			Width:          f.CanvasWidth,
			Height:         f.CanvasHeight,
			HasAnimation:   f.HasAnimation(),
			FrameCount:     f.FrameCount,
			LoopCount:      f.LoopCount,
			HasGlobalTable: f.GlobalTable != nil,
			Version:        f.Version,
			DeclaredWidth:  f.DeclaredWidth,
			DeclaredHeight: f.DeclaredHeight,
		},
		background: f.BackgroundIndex,
		comments:   f.Comments,
	}
	if f.GlobalTable != nil {
		d.global = palette.FromBytes(f.GlobalTable)
	}

	raw := p.Frames()
	d.frames = make([]FrameInfo, len(raw))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range raw {
		i := i // per-iteration copy (go 1.21 loop semantics)
		g.Go(func() error {
			fi, err := decodeFrame(&raw[i], d.global)
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			d.frames[i] = fi
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

func decodeFrame(raw *container.FrameInfo, global *palette.ColorTable) (FrameInfo, error) {
	fi := FrameInfo{
		Width:            raw.Width,
		Height:           raw.Height,
		OffsetX:          raw.Left,
		OffsetY:          raw.Top,
		Interlaced:       raw.Interlaced,
		Delay:            raw.Delay,
		DisposeMode:      raw.Dispose,
		HasTransparency:  raw.HasTransparency,
		TransparentIndex: raw.TransparentIndex,
	}
	table := global
	if raw.LocalTable != nil {
		fi.LocalTable = palette.FromBytes(raw.LocalTable)
		table = fi.LocalTable
	}
	if table == nil {
		return fi, ErrNoColorTable
	}

	pix, err := lzw.Decode(raw.Data, raw.LitWidth, raw.Width*raw.Height)
	if err != nil {
		return fi, err
	}
	if raw.Interlaced {
		pix = container.Deinterlace(pix, raw.Width, raw.Height)
	}
	if n := table.Len(); n < palette.MaxColors {
		for _, p := range pix {
			if int(p) >= n {
				return fi, fmt.Errorf("%w: index %d, table of %d", ErrIndexOutOfRange, p, n)
			}
		}
	}
	fi.Pix = pix
	return fi, nil
}

// GetFeatures returns the features extracted from the GIF file.
func (d *Demuxer) GetFeatures() Features {
	return d.features
}

// NumFrames returns the number of frames.
func (d *Demuxer) NumFrames() int {
	return len(d.frames)
}

// Frame returns the frame at the given 0-based index.
func (d *Demuxer) Frame(index int) (*FrameInfo, error) {
	if index < 0 || index >= len(d.frames) {
		return nil, ErrFrameOutRange
	}
	return &d.frames[index], nil
}

// GlobalTable returns the global color table, or nil.
func (d *Demuxer) GlobalTable() *palette.ColorTable {
	return d.global
}

// BackgroundIndex returns the background color index of the logical screen.
func (d *Demuxer) BackgroundIndex() uint8 {
	return d.background
}

// LoopCount returns the loop count, or -1 when the file has no loop
// extension.
func (d *Demuxer) LoopCount() int {
	return d.features.LoopCount
}

// Comments returns the text of all comment extensions in file order.
func (d *Demuxer) Comments() []string {
	return d.comments
}

// FrameIterator walks the frames of a Demuxer in order.
type FrameIterator struct {
	d   *Demuxer
	idx int
}

// NewFrameIterator returns an iterator positioned before the first frame.
func (d *Demuxer) NewFrameIterator() *FrameIterator {
	return &FrameIterator{d: d}
}

// HasNext reports whether another frame remains.
func (it *FrameIterator) HasNext() bool {
	return it.idx < len(it.d.frames)
}

// Next returns the next frame.
func (it *FrameIterator) Next() (*FrameInfo, error) {
	f, err := it.d.Frame(it.idx)
	if err != nil {
		return nil, err
	}
	it.idx++
	return f, nil
}
