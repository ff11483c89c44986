// Package task runs the animation operations against files. Each operation
// has a parameter record and a JSON-tagged result record; outputs are
// written atomically and every completed task is logged.
package task

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/deepteams/gifkit/animation"
	"github.com/deepteams/gifkit/internal/container"
	"github.com/deepteams/gifkit/palette"
	"github.com/deepteams/gifkit/resample"
	"github.com/deepteams/gifkit/transform"
)

// Runner executes tasks with shared collaborators.
type Runner struct {
	Logger    *slog.Logger
	Resampler resample.Resampler
	Quantizer palette.Quantizer
	// Encode options for every written GIF.
	Encode animation.EncodeOptions
}

// NewRunner returns a Runner. Nil arguments select slog.Default, the
// imaging backend and median cut.
func NewRunner(logger *slog.Logger, r resample.Resampler, q palette.Quantizer) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if r == nil {
		r = resample.Imaging{}
	}
	if q == nil {
		q = palette.MedianCut{}
	}
	return &Runner{Logger: logger, Resampler: r, Quantizer: q}
}

// requirePath rejects an empty path parameter.
func requirePath(name, path string) error {
	if path == "" {
		return fmt.Errorf("%w: %s is required", transform.ErrInvalidParameter, name)
	}
	return nil
}

// readGIF decodes the GIF at path and returns it with the file size.
func (r *Runner) readGIF(ctx context.Context, path string) (*animation.Animation, int64, error) {
	if err := requirePath("gif_path", path); err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	a, err := animation.DecodeBytes(data)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	r.Logger.Debug("decoded", "path", path, "frames", len(a.Frames),
		"width", a.CanvasWidth, "height", a.CanvasHeight)
	if h, _, err := container.ParseHeader(data); err == nil &&
		(h.DeclaredWidth != a.CanvasWidth || h.DeclaredHeight != a.CanvasHeight) {
		r.Logger.Warn("canvas grown to fit frames", "path", path,
			"declared_width", h.DeclaredWidth, "declared_height", h.DeclaredHeight,
			"width", a.CanvasWidth, "height", a.CanvasHeight)
	}
	return a, int64(len(data)), nil
}

// writeGIF encodes a to path atomically and returns the written size.
func (r *Runner) writeGIF(ctx context.Context, path string, a *animation.Animation) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	data, err := a.EncodeBytes(&r.Encode)
	if err != nil {
		return 0, err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return 0, err
	}
	r.Logger.Debug("encoded", "path", path, "frames", len(a.Frames), "bytes", len(data))
	return int64(len(data)), nil
}

// done logs a completed task.
func (r *Runner) done(op string, start time.Time, attrs ...any) {
	attrs = append([]any{"op", op, "elapsed", time.Since(start)}, attrs...)
	r.Logger.Info("task complete", attrs...)
}

// millis converts a duration to fractional milliseconds.
func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
