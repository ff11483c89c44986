package gifkit

import (
	"image"
	"image/color"
	"io"

	"github.com/deepteams/gifkit/animation"
	"github.com/deepteams/gifkit/internal/container"
	"github.com/deepteams/gifkit/internal/lzw"
	"github.com/deepteams/gifkit/mux"
	"github.com/deepteams/gifkit/palette"
	"github.com/deepteams/gifkit/transform"
)

// Errors returned by the decoder, the palette builder and the transforms.
var (
	ErrInvalidSignature = container.ErrInvalidSignature
	ErrTruncated        = container.ErrTruncated
	ErrCorruptStream    = lzw.ErrCorruptStream
	ErrUnsupportedBlock = container.ErrUnsupportedBlock
	ErrEmptyFrameSet    = palette.ErrEmptyFrameSet
	ErrEmptyInputSet    = transform.ErrEmptyInputSet
	ErrCropOutOfBounds  = transform.ErrCropOutOfBounds
	ErrInvalidParameter = transform.ErrInvalidParameter
	ErrNoFramesRemain   = transform.ErrNoFramesRemain
)

// Features describes a GIF file's properties.
type Features struct {
	Width          int
	Height         int
	HasAnimation   bool
	FrameCount     int
	LoopCount      int // 0 = infinite, -1 = no loop extension
	HasGlobalTable bool
	Version        string // "87a" or "89a"
	// CanvasGrown is set when a frame extends past the logical screen the
	// file declares; Width and Height then cover every frame.
	CanvasGrown    bool
	DeclaredWidth  int
	DeclaredHeight int
}

// readAll reads all data from r, using a single allocation when r reports
// its length.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		if n := lr.Len(); n > 0 {
			data := make([]byte, n)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, err
			}
			return data, nil
		}
	}
	return io.ReadAll(r)
}

// Decode reads a GIF from r and returns its first frame composited onto
// the logical screen.
func Decode(r io.Reader) (image.Image, error) {
	a, err := DecodeAll(r)
	if err != nil {
		return nil, err
	}
	img, _, err := animation.NewRenderer(a).NextFrame()
	return img, err
}

// DecodeAll reads every frame of a GIF from r.
func DecodeAll(r io.Reader) (*animation.Animation, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}
	return animation.DecodeBytes(data)
}

// DecodeConfig returns the canvas size and color model of a GIF without
// keeping its frames. The model is the global palette when the file has
// one.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := readAll(r)
	if err != nil {
		return image.Config{}, err
	}
	d, err := mux.NewDemuxer(data)
	if err != nil {
		return image.Config{}, err
	}
	f := d.GetFeatures()
	var model color.Model = color.NRGBAModel
	if t := d.GlobalTable(); t.Len() > 0 {
		model = t.Palette()
	}
	return image.Config{ColorModel: model, Width: f.Width, Height: f.Height}, nil
}

// GetFeatures parses r and reports its file-level properties.
func GetFeatures(r io.Reader) (*Features, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}
	d, err := mux.NewDemuxer(data)
	if err != nil {
		return nil, err
	}
	f := d.GetFeatures()
	return &Features{
		Width:          f.Width,
		Height:         f.Height,
		HasAnimation:   f.HasAnimation,
		FrameCount:     f.FrameCount,
		LoopCount:      f.LoopCount,
		HasGlobalTable: f.HasGlobalTable,
		Version:        f.Version,
		CanvasGrown:    f.Width != f.DeclaredWidth || f.Height != f.DeclaredHeight,
		DeclaredWidth:  f.DeclaredWidth,
		DeclaredHeight: f.DeclaredHeight,
	}, nil
}

// Options controls GIF encoding.
type Options struct {
	// MaxColors bounds the color table, 2-256. Zero selects 256.
	MaxColors int
	// Quantizer reduces images with more colors than MaxColors. Nil selects
	// median cut.
	Quantizer palette.Quantizer
	// Interlace writes rows in the four-pass interlaced order.
	Interlace bool
}

// Encode writes img to w as a single-frame GIF.
func Encode(w io.Writer, img image.Image, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	a, err := transform.Compose([]image.Image{img}, transform.ComposeParams{
		LoopCount: animation.LoopOnce,
		MaxColors: opts.MaxColors,
		Quantizer: opts.Quantizer,
	})
	if err != nil {
		return err
	}
	a.Frames[0].Dispose = animation.DisposeUnspecified
	return EncodeAll(w, a, opts)
}

// EncodeAll validates a and writes it to w. Nothing is written when a is
// invalid. Only opts.Interlace applies; frames keep their own tables.
func EncodeAll(w io.Writer, a *animation.Animation, opts *Options) error {
	eo := &animation.EncodeOptions{}
	if opts != nil {
		eo.Interlace = opts.Interlace
	}
	return a.Encode(w, eo)
}
