package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/deepteams/gifkit/animation"
	"github.com/deepteams/gifkit/internal/container"
	"github.com/deepteams/gifkit/task"
)

// input returns the single positional argument.
func input(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", usagef("%s: expected one input file, got %d", fs.Name(), fs.NArg())
	}
	return fs.Arg(0), nil
}

func requireOutput(fs *flag.FlagSet, out string) error {
	if out == "" {
		return usagef("%s: -o is required", fs.Name())
	}
	return nil
}

func runCompose(ctx context.Context, e *env, args []string) (any, error) {
	fs, cfg := newFlagSet(e, "compose", "<image>...")
	out := fs.String("o", "", "output GIF path")
	delay := fs.Int("delay", 0, "frame delay in milliseconds (default from config, 100)")
	loop := fs.Int("loop", 0, "loop count: 0 = forever, -1 = play once")
	set, err := e.parse(fs, cfg, args)
	if err != nil {
		return nil, err
	}
	if fs.NArg() == 0 {
		return nil, usagef("compose: no input images")
	}
	if err := requireOutput(fs, *out); err != nil {
		return nil, err
	}
	p := task.ComposeParams{
		ImagePaths: fs.Args(),
		OutputPath: *out,
		Duration:   float64(e.cfg.Compose.DelayMS),
		Loop:       e.cfg.Compose.Loop,
	}
	if set["delay"] {
		p.Duration = float64(*delay)
	}
	if set["loop"] {
		p.Loop = *loop
	}
	return e.runner.Compose(ctx, p)
}

func runCrop(ctx context.Context, e *env, args []string) (any, error) {
	fs, cfg := newFlagSet(e, "crop", "<input.gif>")
	out := fs.String("o", "", "output GIF path")
	x := fs.Int("x", 0, "left edge of the crop rectangle")
	y := fs.Int("y", 0, "top edge of the crop rectangle")
	w := fs.Int("width", 0, "crop width")
	h := fs.Int("height", 0, "crop height")
	if _, err := e.parse(fs, cfg, args); err != nil {
		return nil, err
	}
	in, err := input(fs)
	if err != nil {
		return nil, err
	}
	if err := requireOutput(fs, *out); err != nil {
		return nil, err
	}
	return e.runner.Crop(ctx, task.CropParams{
		GIFPath: in, OutputPath: *out, X: *x, Y: *y, Width: *w, Height: *h,
	})
}

func runResize(ctx context.Context, e *env, args []string) (any, error) {
	fs, cfg := newFlagSet(e, "resize", "<input.gif>")
	out := fs.String("o", "", "output GIF path")
	w := fs.Int("width", 0, "target width (0 = keep aspect ratio)")
	h := fs.Int("height", 0, "target height (0 = keep aspect ratio)")
	scale := fs.Float64("scale", 0, "scale percentage, used when -width and -height are 0")
	method := fs.String("method", "", "resampling filter: lanczos, bilinear, bicubic, nearest")
	set, err := e.parse(fs, cfg, args)
	if err != nil {
		return nil, err
	}
	in, err := input(fs)
	if err != nil {
		return nil, err
	}
	if err := requireOutput(fs, *out); err != nil {
		return nil, err
	}
	p := task.ResizeParams{
		GIFPath: in, OutputPath: *out, Width: *w, Height: *h,
		ScalePercent: *scale, ResampleMethod: e.cfg.Resample.Method,
	}
	if set["method"] {
		p.ResampleMethod = *method
	}
	return e.runner.Resize(ctx, p)
}

func runReverse(ctx context.Context, e *env, args []string) (any, error) {
	fs, cfg := newFlagSet(e, "reverse", "<input.gif>")
	out := fs.String("o", "", "output GIF path")
	if _, err := e.parse(fs, cfg, args); err != nil {
		return nil, err
	}
	in, err := input(fs)
	if err != nil {
		return nil, err
	}
	if err := requireOutput(fs, *out); err != nil {
		return nil, err
	}
	return e.runner.Reverse(ctx, task.ReverseParams{GIFPath: in, OutputPath: *out})
}

func runSpeed(ctx context.Context, e *env, args []string) (any, error) {
	fs, cfg := newFlagSet(e, "speed", "<input.gif>")
	out := fs.String("o", "", "output GIF path")
	mult := fs.Float64("multiplier", 1, "speed factor; 2 plays twice as fast")
	fps := fs.Float64("fps", 0, "constant frame rate; overrides -multiplier when > 0")
	if _, err := e.parse(fs, cfg, args); err != nil {
		return nil, err
	}
	in, err := input(fs)
	if err != nil {
		return nil, err
	}
	if err := requireOutput(fs, *out); err != nil {
		return nil, err
	}
	return e.runner.Speed(ctx, task.SpeedParams{
		GIFPath: in, OutputPath: *out, SpeedMultiplier: *mult, FPS: *fps,
	})
}

func runOptimize(ctx context.Context, e *env, args []string) (any, error) {
	fs, cfg := newFlagSet(e, "optimize", "<input.gif>")
	out := fs.String("o", "", "output GIF path")
	level := fs.Int("level", 0, "0 = timing only, 1 = compact tables, 2 = global palette, 3 = frame differencing")
	colors := fs.Int("colors", 0, "maximum palette size 2-256")
	reduce := fs.Int("reduce-fps", 0, "keep every Nth frame")
	set, err := e.parse(fs, cfg, args)
	if err != nil {
		return nil, err
	}
	in, err := input(fs)
	if err != nil {
		return nil, err
	}
	if err := requireOutput(fs, *out); err != nil {
		return nil, err
	}
	p := task.OptimizeParams{
		GIFPath:       in,
		OutputPath:    *out,
		OptimizeLevel: e.cfg.Optimize.Level,
		MaxColors:     e.cfg.Optimize.MaxColors,
		ReduceFPS:     e.cfg.Optimize.ReduceFPS,
	}
	if set["level"] {
		p.OptimizeLevel = *level
	}
	if set["colors"] {
		p.MaxColors = *colors
	}
	if set["reduce-fps"] {
		p.ReduceFPS = *reduce
	}
	return e.runner.Optimize(ctx, p)
}

func runSplit(ctx context.Context, e *env, args []string) (any, error) {
	fs, cfg := newFlagSet(e, "split", "<input.gif>")
	dir := fs.String("dir", "", "output directory")
	format := fs.String("format", "", "png, jpg, gif, bmp or tiff (default from config, png)")
	set, err := e.parse(fs, cfg, args)
	if err != nil {
		return nil, err
	}
	in, err := input(fs)
	if err != nil {
		return nil, err
	}
	if *dir == "" {
		return nil, usagef("split: -dir is required")
	}
	p := task.SplitParams{GIFPath: in, OutputDir: *dir, Format: e.cfg.Split.Format}
	if set["format"] {
		p.Format = *format
	}
	return e.runner.Split(ctx, p)
}

// infoResult is printed by the info command.
type infoResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	// Declared size differs from Width/Height when frames overflow the
	// logical screen.
	DeclaredWidth  int      `json:"declared_width"`
	DeclaredHeight int      `json:"declared_height"`
	CanvasGrown    bool     `json:"canvas_grown"`
	FrameCount     int      `json:"frame_count"`
	LoopCount      int      `json:"loop_count"`
	DurationMS     float64  `json:"duration_ms"`
	GlobalColors   int      `json:"global_colors"`
	FileSize       int64    `json:"file_size"`
	DelaysMS       []int64  `json:"delays_ms"`
	Comments       []string `json:"comments,omitempty"`
}

func runInfo(_ context.Context, e *env, args []string) (any, error) {
	fs, cfg := newFlagSet(e, "info", "<input.gif>")
	if _, err := e.parse(fs, cfg, args); err != nil {
		return nil, err
	}
	in, err := input(fs)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return nil, err
	}
	a, err := animation.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in, err)
	}
	res := &infoResult{
		Width:        a.CanvasWidth,
		Height:       a.CanvasHeight,
		FrameCount:   len(a.Frames),
		LoopCount:    a.LoopCount,
		DurationMS:   float64(a.TotalDuration().Milliseconds()),
		GlobalColors: a.GlobalTable.Len(),
		FileSize:     int64(len(data)),
		Comments:     a.Comments,
	}
	if h, _, err := container.ParseHeader(data); err == nil {
		res.DeclaredWidth, res.DeclaredHeight = h.DeclaredWidth, h.DeclaredHeight
		res.CanvasGrown = h.DeclaredWidth != a.CanvasWidth || h.DeclaredHeight != a.CanvasHeight
	}
	for _, f := range a.Frames {
		res.DelaysMS = append(res.DelaysMS, f.Delay.Milliseconds())
	}
	return res, nil
}
