package resample

import (
	"image"

	"github.com/disintegration/imaging"
)

// Imaging resamples with github.com/disintegration/imaging.
type Imaging struct{}

func (Imaging) filter(m Method) imaging.ResampleFilter {
	switch m {
	case Bilinear:
		return imaging.Linear
	case Bicubic:
		return imaging.CatmullRom
	case Nearest:
		return imaging.NearestNeighbor
	}
	return imaging.Lanczos
}

// Resample implements Resampler.
func (r Imaging) Resample(src *image.NRGBA, dstW, dstH int, m Method) *image.NRGBA {
	return imaging.Resize(src, dstW, dstH, r.filter(m))
}
