// Package transform implements the animation operations: Compose, Crop,
// Resize, Reverse, Retime, Optimize and Split.
//
// Every operation takes its input by pointer, never modifies it, validates
// its parameter record before doing any work and returns a new Animation.
package transform

import (
	"errors"
	"fmt"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/deepteams/gifkit/animation"
	"github.com/deepteams/gifkit/palette"
)

var (
	ErrEmptyInputSet    = errors.New("transform: empty input set")
	ErrCropOutOfBounds  = errors.New("transform: crop rectangle outside canvas")
	ErrInvalidParameter = errors.New("transform: invalid parameter")
	ErrNoFramesRemain   = errors.New("transform: no frames remain")
)

// FrameStore persists a rendered frame and returns a handle to it (a path,
// URL or key). format is a lower-case still-image format name.
type FrameStore interface {
	StoreFrame(index int, img image.Image, table *palette.ColorTable, format string) (string, error)
}

// invalidf wraps ErrInvalidParameter with a description.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// forEachFrame runs fn for indices [0, n) on at most GOMAXPROCS goroutines
// and returns the first error, annotated with its frame index.
func forEachFrame(n int, fn func(i int) error) error {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		i := i // per-iteration copy (go 1.21 loop semantics)
		g.Go(func() error {
			if err := fn(i); err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// indexed maps img onto table and fills the pixel and transparency fields
// of f.
func indexed(f *animation.Frame, img *image.NRGBA, table *palette.ColorTable) {
	b := img.Bounds()
	f.Pix = palette.QuantizeFrame(img, table)
	f.Width, f.Height = b.Dx(), b.Dy()
	f.HasTransparency = table.HasTransparent
	f.TransparentIndex = table.TransparentIndex
}

// requireFrames rejects animations without frames.
func requireFrames(a *animation.Animation) error {
	if a == nil || len(a.Frames) == 0 {
		return ErrEmptyInputSet
	}
	return nil
}
