package resample

import (
	"image"

	"golang.org/x/image/draw"
)

// XDraw resamples with the golang.org/x/image/draw scalers. That package
// has no Lanczos kernel; Lanczos maps to Catmull-Rom.
type XDraw struct{}

func (XDraw) scaler(m Method) draw.Scaler {
	switch m {
	case Bilinear:
		return draw.BiLinear
	case Nearest:
		return draw.NearestNeighbor
	}
	return draw.CatmullRom
}

// Resample implements Resampler.
func (r XDraw) Resample(src *image.NRGBA, dstW, dstH int, m Method) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))
	r.scaler(m).Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
