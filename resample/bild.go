package resample

import (
	"image"

	"github.com/anthonynsimon/bild/transform"
)

// Bild resamples with github.com/anthonynsimon/bild. The library works in
// premultiplied RGBA; the result is converted back to NRGBA.
type Bild struct{}

func (Bild) filter(m Method) transform.ResampleFilter {
	switch m {
	case Bilinear:
		return transform.Linear
	case Bicubic:
		return transform.CatmullRom
	case Nearest:
		return transform.NearestNeighbor
	}
	return transform.Lanczos
}

// Resample implements Resampler.
func (r Bild) Resample(src *image.NRGBA, dstW, dstH int, m Method) *image.NRGBA {
	return toNRGBA(transform.Resize(src, dstW, dstH, r.filter(m)))
}
