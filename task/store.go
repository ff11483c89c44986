package task

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/deepteams/gifkit/animation"
	"github.com/deepteams/gifkit/palette"
)

// DirStore writes frames into a directory as frame_NNNN.<format>.
type DirStore struct {
	Dir string

	ctx context.Context
}

// NewDirStore returns a DirStore writing into dir. StoreFrame fails once ctx
// is done.
func NewDirStore(ctx context.Context, dir string) *DirStore {
	return &DirStore{Dir: dir, ctx: ctx}
}

// StoreFrame implements transform.FrameStore. GIF frames are encoded with
// table when it holds every color of img; other formats use imaging's
// encoders.
func (s *DirStore) StoreFrame(index int, img image.Image, table *palette.ColorTable, format string) (string, error) {
	if s.ctx != nil {
		if err := s.ctx.Err(); err != nil {
			return "", err
		}
	}
	path := filepath.Join(s.Dir, fmt.Sprintf("frame_%04d.%s", index, format))

	var buf bytes.Buffer
	if format == "gif" {
		if err := encodeStill(&buf, img, table); err != nil {
			return "", err
		}
	} else {
		f, err := imaging.FormatFromExtension(format)
		if err != nil {
			return "", err
		}
		if err := imaging.Encode(&buf, img, f, imaging.JPEGQuality(95)); err != nil {
			return "", err
		}
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

// encodeStill writes img as a single-frame GIF.
func encodeStill(buf *bytes.Buffer, img image.Image, table *palette.ColorTable) error {
	h := make(palette.Histogram)
	transparent := h.Add(img)
	if !covers(table, h, transparent) {
		var err error
		table, _, err = palette.BuildGlobalPalette([]image.Image{img}, palette.MaxColors)
		if err != nil {
			return err
		}
	}
	b := img.Bounds()
	a := &animation.Animation{
		CanvasWidth:  b.Dx(),
		CanvasHeight: b.Dy(),
		GlobalTable:  table,
		LoopCount:    animation.LoopOnce,
		Frames: []animation.Frame{{
			Pix:              palette.QuantizeFrame(img, table),
			Width:            b.Dx(),
			Height:           b.Dy(),
			Delay:            animation.DefaultDelay,
			HasTransparency:  table.HasTransparent,
			TransparentIndex: table.TransparentIndex,
		}},
	}
	return a.Encode(buf, nil)
}

// covers reports whether every color in h is an entry of t and t can
// represent transparency when needed.
func covers(t *palette.ColorTable, h palette.Histogram, transparent bool) bool {
	if t.Len() == 0 || (transparent && !t.HasTransparent) {
		return false
	}
	have := make(map[palette.RGB]bool, t.Len())
	for i, c := range t.Colors {
		if t.HasTransparent && i == int(t.TransparentIndex) {
			continue
		}
		have[c] = true
	}
	for c := range h {
		if !have[c] {
			return false
		}
	}
	return true
}
