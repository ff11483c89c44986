// Package resample scales RGBA frames with interchangeable third-party
// backends. Transforms receive a Resampler so the backend is chosen by
// configuration rather than hard-wired.
package resample

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"
)

// Method selects the resampling filter.
type Method int

const (
	Lanczos Method = iota
	Bilinear
	Bicubic
	Nearest
)

func (m Method) String() string {
	switch m {
	case Lanczos:
		return "lanczos"
	case Bilinear:
		return "bilinear"
	case Bicubic:
		return "bicubic"
	case Nearest:
		return "nearest"
	}
	return "unknown"
}

// ParseMethod maps a filter name to a Method. Matching is case-insensitive
// and unknown names fall back to Lanczos.
func ParseMethod(name string) Method {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bilinear", "linear":
		return Bilinear
	case "bicubic", "cubic":
		return Bicubic
	case "nearest", "nearest-neighbor", "nearestneighbor":
		return Nearest
	}
	return Lanczos
}

// Resampler scales src to dstW x dstH. Implementations must not modify src
// and must return an image with origin (0,0).
type Resampler interface {
	Resample(src *image.NRGBA, dstW, dstH int, m Method) *image.NRGBA
}

// Backend names accepted by ParseBackend.
const (
	BackendImaging = "imaging"
	BackendNFNT    = "nfnt"
	BackendBild    = "bild"
	BackendXDraw   = "xdraw"
)

var ErrUnknownBackend = errors.New("resample: unknown backend")

// ParseBackend returns the Resampler registered under name. An empty name
// selects imaging.
func ParseBackend(name string) (Resampler, error) {
	switch strings.ToLower(name) {
	case "", BackendImaging:
		return Imaging{}, nil
	case BackendNFNT:
		return NFNT{}, nil
	case BackendBild:
		return Bild{}, nil
	case BackendXDraw:
		return XDraw{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}

// Backends lists the registered backend names.
func Backends() []string {
	return []string{BackendImaging, BackendNFNT, BackendBild, BackendXDraw}
}

// toNRGBA converts img to *image.NRGBA with origin (0,0).
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
