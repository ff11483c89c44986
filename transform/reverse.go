package transform

import "github.com/deepteams/gifkit/animation"

// Reverse returns a copy of a with the frame order reversed. Delays travel
// with their frames, so the delay sequence is mirrored as well.
func Reverse(a *animation.Animation) (*animation.Animation, error) {
	if err := requireFrames(a); err != nil {
		return nil, err
	}
	out := a.Clone()
	for i, j := 0, len(out.Frames)-1; i < j; i, j = i+1, j-1 {
		out.Frames[i], out.Frames[j] = out.Frames[j], out.Frames[i]
	}
	return out, nil
}
