package container

import (
	"errors"
	"fmt"

	"github.com/deepteams/gifkit/internal/bitio"
)

// MaxFrames bounds the number of image descriptors accepted in one file.
const MaxFrames = 1 << 16

// Common errors.
var (
	ErrInvalidSignature = errors.New("gif: invalid signature")
	ErrTruncated        = bitio.ErrTruncated
	ErrUnsupportedBlock = errors.New("gif: unsupported block")
	ErrInvalidImage     = errors.New("gif: invalid image dimensions")
	ErrNoFrames         = errors.New("gif: no image data")
	ErrTooManyFrames    = errors.New("gif: too many frames")
)

// Features describes the file-level properties of a GIF: its logical
// screen descriptor, global color table and application data.
type Features struct {
	Version         string // "87a" or "89a"
	CanvasWidth     int
	CanvasHeight    int
	DeclaredWidth   int // logical screen size before frames grew the canvas
	DeclaredHeight  int
	GlobalTable     []byte // packed RGB triplets; nil when absent
	ColorResolution int    // bits per primary color, 1..8
	Sorted          bool
	BackgroundIndex uint8
	AspectRatio     uint8
	LoopCount       int // -1 when no loop extension is present
	FrameCount      int
	Comments        []string
}

// CanvasGrown reports whether a frame extended past the logical screen and
// the canvas was enlarged to contain it.
func (f Features) CanvasGrown() bool {
	return f.CanvasWidth != f.DeclaredWidth || f.CanvasHeight != f.DeclaredHeight
}

// HasAnimation reports whether the file carries more than one frame or a
// loop extension.
func (f Features) HasAnimation() bool {
	return f.FrameCount > 1 || f.LoopCount >= 0
}

// FrameInfo holds one image descriptor and the graphic control extension
// preceding it. Data is the LZW code stream with sub-block framing removed.
type FrameInfo struct {
	Left             int
	Top              int
	Width            int
	Height           int
	LocalTable       []byte // packed RGB triplets; nil when absent
	Interlaced       bool
	HasGCE           bool
	Dispose          DisposeMethod
	UserInput        bool
	Delay            int // hundredths of a second
	HasTransparency  bool
	TransparentIndex uint8
	LitWidth         int
	Data             []byte
}

// Table returns the color table that applies to the frame.
func (fi *FrameInfo) Table(global []byte) []byte {
	if fi.LocalTable != nil {
		return fi.LocalTable
	}
	return global
}

// Parser performs a single pass over a complete GIF byte slice.
type Parser struct {
	features Features
	frames   []FrameInfo
}

// NewParser creates a parser and immediately parses the provided GIF data.
func NewParser(data []byte) (*Parser, error) {
	p := &Parser{}
	if err := p.parse(data); err != nil {
		return nil, err
	}
	return p, nil
}

// Features returns the parsed file features.
func (p *Parser) Features() Features { return p.features }

// Frames returns all parsed image descriptors in file order.
func (p *Parser) Frames() []FrameInfo { return p.frames }

// ParseHeader validates the signature and reads the logical screen
// descriptor and global color table. It returns the position of the first
// block after them.
func ParseHeader(data []byte) (Features, int, error) {
	var f Features
	if err := checkSignature(data); err != nil {
		return f, 0, err
	}
	if len(data) < HeaderSize+ScreenDescriptorSize {
		return f, 0, fmt.Errorf("%w: logical screen descriptor", ErrTruncated)
	}
	f.Version = string(data[3:6])
	lsd := data[HeaderSize:]
	f.CanvasWidth = int(ReadLE16(lsd[0:2]))
	f.CanvasHeight = int(ReadLE16(lsd[2:4]))
	f.DeclaredWidth, f.DeclaredHeight = f.CanvasWidth, f.CanvasHeight
	packed := lsd[4]
	f.ColorResolution = int(packed>>4&0x07) + 1
	f.Sorted = packed&FlagSortLSD != 0
	f.BackgroundIndex = lsd[5]
	f.AspectRatio = lsd[6]
	f.LoopCount = -1

	pos := HeaderSize + ScreenDescriptorSize
	if packed&FlagColorTable != 0 {
		n := 3 * TableLen(int(packed))
		if pos+n > len(data) {
			return f, 0, fmt.Errorf("%w: global color table", ErrTruncated)
		}
		f.GlobalTable = copyBytes(data[pos : pos+n])
		pos += n
	}
	return f, pos, nil
}

func checkSignature(data []byte) error {
	n := len(data)
	if n > HeaderSize {
		n = HeaderSize
	}
	head := string(data[:n])
	if head != Signature89a[:n] && head != Signature87a[:n] {
		return ErrInvalidSignature
	}
	if n < HeaderSize {
		return fmt.Errorf("%w: header", ErrTruncated)
	}
	return nil
}

func (p *Parser) parse(data []byte) error {
	f, pos, err := ParseHeader(data)
	if err != nil {
		return err
	}
	p.features = f

	// A graphic control extension applies to the next graphic rendering
	// block only.
	var gce *FrameInfo

	for {
		if pos >= len(data) {
			return fmt.Errorf("%w: missing trailer", ErrTruncated)
		}
		switch data[pos] {
		case ExtensionIntroducer:
			if pos+2 > len(data) {
				return fmt.Errorf("%w: extension label", ErrTruncated)
			}
			label := data[pos+1]
			pos += 2
			switch label {
			case LabelGraphicControl:
				g, next, err := parseGCE(data, pos)
				if err != nil {
					return err
				}
				gce = &g
				pos = next
			case LabelApplication:
				next, err := p.parseApplication(data, pos)
				if err != nil {
					return err
				}
				pos = next
			case LabelComment:
				text, next, err := bitio.ReadBlocks(data, pos)
				if err != nil {
					return fmt.Errorf("%w: comment extension", err)
				}
				p.features.Comments = append(p.features.Comments, string(text))
				pos = next
			case LabelPlainText:
				next, err := bitio.SkipBlocks(data, pos)
				if err != nil {
					return fmt.Errorf("%w: plain text extension", err)
				}
				gce = nil
				pos = next
			default:
				next, err := bitio.SkipBlocks(data, pos)
				if err != nil {
					return fmt.Errorf("%w: extension 0x%02x", err, label)
				}
				pos = next
			}

		case ImageSeparator:
			if len(p.frames) >= MaxFrames {
				return ErrTooManyFrames
			}
			fi, next, err := parseImage(data, pos+1)
			if err != nil {
				return fmt.Errorf("frame %d: %w", len(p.frames), err)
			}
			if gce != nil {
				fi.HasGCE = true
				fi.Dispose = gce.Dispose
				fi.UserInput = gce.UserInput
				fi.Delay = gce.Delay
				fi.HasTransparency = gce.HasTransparency
				fi.TransparentIndex = gce.TransparentIndex
				gce = nil
			}
			if r := fi.Left + fi.Width; r > p.features.CanvasWidth {
				p.features.CanvasWidth = r
			}
			if b := fi.Top + fi.Height; b > p.features.CanvasHeight {
				p.features.CanvasHeight = b
			}
			p.frames = append(p.frames, fi)
			pos = next

		case Trailer:
			if len(p.frames) == 0 {
				return ErrNoFrames
			}
			p.features.FrameCount = len(p.frames)
			return nil

		default:
			return fmt.Errorf("%w: 0x%02x at offset %d", ErrUnsupportedBlock, data[pos], pos)
		}
	}
}

// parseGCE reads a graphic control extension body starting at its block
// size byte.
func parseGCE(data []byte, pos int) (FrameInfo, int, error) {
	var g FrameInfo
	if pos >= len(data) {
		return g, 0, fmt.Errorf("%w: graphic control extension", ErrTruncated)
	}
	if int(data[pos]) < GCEBlockSize {
		return g, 0, fmt.Errorf("%w: graphic control extension of size %d", ErrUnsupportedBlock, data[pos])
	}
	body := pos + 1
	if body+GCEBlockSize > len(data) {
		return g, 0, fmt.Errorf("%w: graphic control extension", ErrTruncated)
	}
	packed := data[body]
	g.Dispose = DisposeMethod(packed & GCEDisposeMask >> GCEDisposeShift)
	g.UserInput = packed&GCEUserInput != 0
	g.HasTransparency = packed&GCETransparent != 0
	g.Delay = int(ReadLE16(data[body+1 : body+3]))
	g.TransparentIndex = data[body+3]
	next, err := bitio.SkipBlocks(data, pos)
	if err != nil {
		return g, 0, fmt.Errorf("%w: graphic control extension", err)
	}
	return g, next, nil
}

// parseApplication reads an application extension. Loop counts are taken
// from NETSCAPE2.0 and ANIMEXTS1.0 blocks; other applications are skipped.
func (p *Parser) parseApplication(data []byte, pos int) (int, error) {
	next, err := bitio.SkipBlocks(data, pos)
	if err != nil {
		return 0, fmt.Errorf("%w: application extension", err)
	}
	n := int(data[pos])
	if n != AppIdentifierSize {
		return next, nil
	}
	id := string(data[pos+1 : pos+1+n])
	if id != AppNetscape && id != AppAnimExts {
		return next, nil
	}
	sub := pos + 1 + n
	if m := int(data[sub]); m >= 3 && data[sub+1] == 1 {
		p.features.LoopCount = int(ReadLE16(data[sub+2 : sub+4]))
	}
	return next, nil
}

// parseImage reads an image descriptor, its local color table and its
// image data. pos points just past the image separator.
func parseImage(data []byte, pos int) (FrameInfo, int, error) {
	var fi FrameInfo
	if pos+ImageDescriptorSize > len(data) {
		return fi, 0, fmt.Errorf("%w: image descriptor", ErrTruncated)
	}
	d := data[pos:]
	fi.Left = int(ReadLE16(d[0:2]))
	fi.Top = int(ReadLE16(d[2:4]))
	fi.Width = int(ReadLE16(d[4:6]))
	fi.Height = int(ReadLE16(d[6:8]))
	packed := d[8]
	fi.Interlaced = packed&FlagInterlace != 0
	pos += ImageDescriptorSize

	if fi.Width == 0 || fi.Height == 0 {
		return fi, 0, fmt.Errorf("%w: %dx%d", ErrInvalidImage, fi.Width, fi.Height)
	}

	if packed&FlagColorTable != 0 {
		n := 3 * TableLen(int(packed))
		if pos+n > len(data) {
			return fi, 0, fmt.Errorf("%w: local color table", ErrTruncated)
		}
		fi.LocalTable = copyBytes(data[pos : pos+n])
		pos += n
	}

	if pos >= len(data) {
		return fi, 0, fmt.Errorf("%w: minimum code size", ErrTruncated)
	}
	fi.LitWidth = int(data[pos])
	pos++

	payload, next, err := bitio.ReadBlocks(data, pos)
	if err != nil {
		return fi, 0, fmt.Errorf("%w: image data", err)
	}
	fi.Data = payload
	return fi, next, nil
}

// copyBytes returns a copy of the slice to avoid retaining the original buffer.
func copyBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
