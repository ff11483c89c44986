package task

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/deepteams/gifkit/transform"
)

// ComposeParams names the still images to combine.
type ComposeParams struct {
	ImagePaths []string `json:"image_paths"`
	OutputPath string   `json:"output_path"`
	// Duration is the per-frame delay in milliseconds; 0 selects 100.
	Duration float64 `json:"duration"`
	Loop     int     `json:"loop"`
}

// ComposeResult describes the written animation.
type ComposeResult struct {
	GIFPath    string `json:"gif_path"`
	FrameCount int    `json:"frame_count"`
	FileSize   int64  `json:"file_size"`
}

// Compose decodes the images (PNG, JPEG, GIF, BMP, TIFF or WebP) and writes
// them as an animated GIF, one frame per image.
func (r *Runner) Compose(ctx context.Context, p ComposeParams) (*ComposeResult, error) {
	start := time.Now()
	if len(p.ImagePaths) == 0 {
		return nil, transform.ErrEmptyInputSet
	}
	if err := requirePath("output_path", p.OutputPath); err != nil {
		return nil, err
	}
	if p.Duration < 0 {
		return nil, fmt.Errorf("%w: duration %v", transform.ErrInvalidParameter, p.Duration)
	}

	imgs := make([]image.Image, len(p.ImagePaths))
	for i, path := range p.ImagePaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := imaging.Open(path)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		imgs[i] = img
	}
	r.Logger.Debug("loaded images", "count", len(imgs))

	a, err := transform.Compose(imgs, transform.ComposeParams{
		Delay:     time.Duration(p.Duration * float64(time.Millisecond)),
		LoopCount: p.Loop,
		Quantizer: r.Quantizer,
	})
	if err != nil {
		return nil, err
	}
	size, err := r.writeGIF(ctx, p.OutputPath, a)
	if err != nil {
		return nil, err
	}
	r.done("compose", start, "frames", len(a.Frames), "bytes", size)
	return &ComposeResult{GIFPath: p.OutputPath, FrameCount: len(a.Frames), FileSize: size}, nil
}
