package transform

import (
	"math"
	"time"

	"github.com/deepteams/gifkit/animation"
)

// RetimeParams selects new frame delays. A positive FPS sets every delay to
// round(1000/FPS) milliseconds and takes precedence; otherwise each delay is
// divided by Multiplier.
type RetimeParams struct {
	FPS        float64
	Multiplier float64
}

// Validate checks the parameters.
func (p *RetimeParams) Validate() error {
	if math.IsNaN(p.FPS) || math.IsInf(p.FPS, 0) {
		return invalidf("fps %v", p.FPS)
	}
	if p.FPS > 0 {
		return nil
	}
	if math.IsNaN(p.Multiplier) || math.IsInf(p.Multiplier, 0) || p.Multiplier <= 0 {
		return invalidf("speed multiplier %v", p.Multiplier)
	}
	return nil
}

// Delay returns the new delay for a frame whose delay is d. Results are
// whole milliseconds, at least animation.MinDelay.
func (p *RetimeParams) Delay(d time.Duration) time.Duration {
	var ms float64
	if p.FPS > 0 {
		ms = math.Round(1000 / p.FPS)
	} else {
		ms = math.Round(float64(d) / float64(time.Millisecond) / p.Multiplier)
	}
	// Clamp before converting so huge ratios cannot overflow.
	ms = math.Min(ms, maxDelayMS)
	nd := time.Duration(ms) * time.Millisecond
	return max(nd, animation.MinDelay)
}

// maxDelayMS is the longest delay a GIF frame can carry.
const maxDelayMS = 0xFFFF * 10

// Retime returns a copy of a with every frame delay rescaled.
func Retime(a *animation.Animation, p RetimeParams) (*animation.Animation, error) {
	if err := requireFrames(a); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	out := a.Clone()
	for i := range out.Frames {
		out.Frames[i].Delay = p.Delay(out.Frames[i].Delay)
	}
	return out, nil
}
