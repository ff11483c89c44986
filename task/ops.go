package task

import (
	"context"
	"time"

	"github.com/deepteams/gifkit/resample"
	"github.com/deepteams/gifkit/transform"
)

// CropParams selects the rectangle to keep.
type CropParams struct {
	GIFPath    string `json:"gif_path"`
	OutputPath string `json:"output_path"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// CropResult describes the written animation.
type CropResult struct {
	CroppedGIFPath string `json:"cropped_gif_path"`
	OriginalSize   [2]int `json:"original_size"`
	CropArea       [4]int `json:"crop_area"`
}

// Crop crops every frame of the GIF.
func (r *Runner) Crop(ctx context.Context, p CropParams) (*CropResult, error) {
	start := time.Now()
	if err := requirePath("output_path", p.OutputPath); err != nil {
		return nil, err
	}
	a, _, err := r.readGIF(ctx, p.GIFPath)
	if err != nil {
		return nil, err
	}
	out, err := transform.Crop(a, transform.CropParams{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height})
	if err != nil {
		return nil, err
	}
	if _, err := r.writeGIF(ctx, p.OutputPath, out); err != nil {
		return nil, err
	}
	r.done("crop", start, "frames", len(out.Frames))
	return &CropResult{
		CroppedGIFPath: p.OutputPath,
		OriginalSize:   [2]int{a.CanvasWidth, a.CanvasHeight},
		CropArea:       [4]int{p.X, p.Y, p.Width, p.Height},
	}, nil
}

// ResizeParams selects the target size. See transform.ResizeParams for the
// precedence rules.
type ResizeParams struct {
	GIFPath        string  `json:"gif_path"`
	OutputPath     string  `json:"output_path"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	ScalePercent   float64 `json:"scale_percent"`
	ResampleMethod string  `json:"resample_method"`
}

// ResizeResult describes the written animation.
type ResizeResult struct {
	ResizedGIFPath string `json:"resized_gif_path"`
	OriginalSize   [2]int `json:"original_size"`
	NewSize        [2]int `json:"new_size"`
}

// Resize scales the GIF with the runner's resampler.
func (r *Runner) Resize(ctx context.Context, p ResizeParams) (*ResizeResult, error) {
	start := time.Now()
	if err := requirePath("output_path", p.OutputPath); err != nil {
		return nil, err
	}
	tp := transform.ResizeParams{
		Width:        p.Width,
		Height:       p.Height,
		ScalePercent: p.ScalePercent,
		Method:       resample.ParseMethod(p.ResampleMethod),
	}
	if err := tp.Validate(); err != nil {
		return nil, err
	}
	a, _, err := r.readGIF(ctx, p.GIFPath)
	if err != nil {
		return nil, err
	}
	out, err := transform.Resize(a, tp, r.Resampler)
	if err != nil {
		return nil, err
	}
	if _, err := r.writeGIF(ctx, p.OutputPath, out); err != nil {
		return nil, err
	}
	r.done("resize", start, "frames", len(out.Frames), "method", tp.Method.String())
	return &ResizeResult{
		ResizedGIFPath: p.OutputPath,
		OriginalSize:   [2]int{a.CanvasWidth, a.CanvasHeight},
		NewSize:        [2]int{out.CanvasWidth, out.CanvasHeight},
	}, nil
}

// ReverseParams names the GIF to reverse.
type ReverseParams struct {
	GIFPath    string `json:"gif_path"`
	OutputPath string `json:"output_path"`
}

// ReverseResult describes the written animation.
type ReverseResult struct {
	ReversedGIFPath string `json:"reversed_gif_path"`
	FrameCount      int    `json:"frame_count"`
}

// Reverse writes the GIF with its frames in reverse order.
func (r *Runner) Reverse(ctx context.Context, p ReverseParams) (*ReverseResult, error) {
	start := time.Now()
	if err := requirePath("output_path", p.OutputPath); err != nil {
		return nil, err
	}
	a, _, err := r.readGIF(ctx, p.GIFPath)
	if err != nil {
		return nil, err
	}
	out, err := transform.Reverse(a)
	if err != nil {
		return nil, err
	}
	if _, err := r.writeGIF(ctx, p.OutputPath, out); err != nil {
		return nil, err
	}
	r.done("reverse", start, "frames", len(out.Frames))
	return &ReverseResult{ReversedGIFPath: p.OutputPath, FrameCount: len(out.Frames)}, nil
}

// SpeedParams selects the new timing. A positive FPS wins over the
// multiplier.
type SpeedParams struct {
	GIFPath         string  `json:"gif_path"`
	OutputPath      string  `json:"output_path"`
	SpeedMultiplier float64 `json:"speed_multiplier"`
	FPS             float64 `json:"fps"`
}

// SpeedResult reports the total single-pass durations in milliseconds, as
// stored in the files.
type SpeedResult struct {
	AdjustedGIFPath  string  `json:"adjusted_gif_path"`
	OriginalDuration float64 `json:"original_duration"`
	NewDuration      float64 `json:"new_duration"`
}

// Speed retimes the GIF.
func (r *Runner) Speed(ctx context.Context, p SpeedParams) (*SpeedResult, error) {
	start := time.Now()
	if err := requirePath("output_path", p.OutputPath); err != nil {
		return nil, err
	}
	tp := transform.RetimeParams{FPS: p.FPS, Multiplier: p.SpeedMultiplier}
	if err := tp.Validate(); err != nil {
		return nil, err
	}
	a, _, err := r.readGIF(ctx, p.GIFPath)
	if err != nil {
		return nil, err
	}
	out, err := transform.Retime(a, tp)
	if err != nil {
		return nil, err
	}
	if _, err := r.writeGIF(ctx, p.OutputPath, out); err != nil {
		return nil, err
	}
	r.done("speed", start, "frames", len(out.Frames), "duration", out.EncodedDuration())
	return &SpeedResult{
		AdjustedGIFPath:  p.OutputPath,
		OriginalDuration: millis(a.EncodedDuration()),
		NewDuration:      millis(out.EncodedDuration()),
	}, nil
}

// OptimizeParams configures size reduction.
type OptimizeParams struct {
	GIFPath       string `json:"gif_path"`
	OutputPath    string `json:"output_path"`
	OptimizeLevel int    `json:"optimize_level"`
	MaxColors     int    `json:"max_colors"`
	ReduceFPS     int    `json:"reduce_fps"`
}

// OptimizeResult compares input and output sizes. CompressionRatio is
// OriginalSize / OptimizedSize.
type OptimizeResult struct {
	OptimizedGIFPath string  `json:"optimized_gif_path"`
	OriginalSize     int64   `json:"original_size"`
	OptimizedSize    int64   `json:"optimized_size"`
	CompressionRatio float64 `json:"compression_ratio"`
}

// Optimize decimates and requantizes the GIF.
func (r *Runner) Optimize(ctx context.Context, p OptimizeParams) (*OptimizeResult, error) {
	start := time.Now()
	if err := requirePath("output_path", p.OutputPath); err != nil {
		return nil, err
	}
	a, origSize, err := r.readGIF(ctx, p.GIFPath)
	if err != nil {
		return nil, err
	}
	out, err := transform.Optimize(a, transform.OptimizeParams{
		Level:     p.OptimizeLevel,
		MaxColors: p.MaxColors,
		ReduceFPS: p.ReduceFPS,
		Quantizer: r.Quantizer,
	})
	if err != nil {
		return nil, err
	}
	size, err := r.writeGIF(ctx, p.OutputPath, out)
	if err != nil {
		return nil, err
	}
	ratio := 1.0
	if size > 0 {
		ratio = float64(origSize) / float64(size)
	}
	r.done("optimize", start, "frames", len(out.Frames), "original", origSize, "optimized", size)
	return &OptimizeResult{
		OptimizedGIFPath: p.OutputPath,
		OriginalSize:     origSize,
		OptimizedSize:    size,
		CompressionRatio: ratio,
	}, nil
}

// SplitParams selects where and how frames are written.
type SplitParams struct {
	GIFPath   string `json:"gif_path"`
	OutputDir string `json:"output_dir"`
	Format    string `json:"format"`
}

// SplitResult lists the written frames. Duration is the first frame's
// delay and Delays holds every frame's delay, all in milliseconds.
type SplitResult struct {
	FramePaths []string  `json:"frame_paths"`
	FrameCount int       `json:"frame_count"`
	Duration   float64   `json:"duration"`
	Delays     []float64 `json:"delays"`
}

// Split writes every rendered frame to OutputDir as frame_NNNN.<format>.
func (r *Runner) Split(ctx context.Context, p SplitParams) (*SplitResult, error) {
	start := time.Now()
	if err := requirePath("output_dir", p.OutputDir); err != nil {
		return nil, err
	}
	sp := transform.SplitParams{Format: p.Format}
	if err := sp.Validate(); err != nil {
		return nil, err
	}
	a, _, err := r.readGIF(ctx, p.GIFPath)
	if err != nil {
		return nil, err
	}
	store := NewDirStore(ctx, p.OutputDir)
	res, err := transform.Split(a, sp, store)
	if err != nil {
		return nil, err
	}
	out := &SplitResult{
		FramePaths: res.Handles,
		FrameCount: res.FrameCount,
		Delays:     make([]float64, len(res.Delays)),
	}
	for i, d := range res.Delays {
		out.Delays[i] = millis(d)
	}
	if len(out.Delays) > 0 {
		out.Duration = out.Delays[0]
	}
	r.done("split", start, "frames", out.FrameCount, "format", sp.Format, "dir", p.OutputDir)
	return out, nil
}
