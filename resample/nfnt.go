package resample

import (
	"image"

	"github.com/nfnt/resize"
)

// NFNT resamples with github.com/nfnt/resize.
type NFNT struct{}

func (NFNT) interp(m Method) resize.InterpolationFunction {
	switch m {
	case Bilinear:
		return resize.Bilinear
	case Bicubic:
		return resize.Bicubic
	case Nearest:
		return resize.NearestNeighbor
	}
	return resize.Lanczos3
}

// Resample implements Resampler.
func (r NFNT) Resample(src *image.NRGBA, dstW, dstH int, m Method) *image.NRGBA {
	return toNRGBA(resize.Resize(uint(dstW), uint(dstH), src, r.interp(m)))
}
