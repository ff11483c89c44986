// Package container defines the GIF block layout and parses and serializes
// the GIF87a/GIF89a container structure: header, logical screen descriptor,
// color tables, extensions, image descriptors and the trailer.
//
// Image data is handled as raw LZW code streams; decompression lives in
// internal/lzw.
package container

import "encoding/binary"

// Signatures.
const (
	Signature87a = "GIF87a"
	Signature89a = "GIF89a"
)

// Top-level block introducers.
const (
	ExtensionIntroducer = 0x21
	ImageSeparator      = 0x2C
	Trailer             = 0x3B
)

// Extension labels.
const (
	LabelPlainText      = 0x01
	LabelGraphicControl = 0xF9
	LabelComment        = 0xFE
	LabelApplication    = 0xFF
)

// Logical screen descriptor and image descriptor packed-field bits.
const (
	FlagColorTable = 0x80 // global or local color table present
	FlagInterlace  = 0x40 // image descriptor only
	FlagSortLSD    = 0x08 // global table sorted
	FlagSortImage  = 0x20 // local table sorted
	MaskTableSize  = 0x07
)

// Graphic control extension packed-field bits.
const (
	GCETransparent  = 0x01
	GCEUserInput    = 0x02
	GCEDisposeMask  = 0x1C
	GCEDisposeShift = 2
)

// Structure sizes.
const (
	HeaderSize           = 6
	ScreenDescriptorSize = 7
	ImageDescriptorSize  = 9 // excluding the separator byte
	GCEBlockSize         = 4
	AppIdentifierSize    = 11
	MaxColors            = 256
)

// Application identifiers carrying a loop count.
const (
	AppNetscape = "NETSCAPE2.0"
	AppAnimExts = "ANIMEXTS1.0"
)

// DisposeMethod is the raw disposal value of a graphic control extension.
type DisposeMethod uint8

const (
	DisposeUnspecified DisposeMethod = 0
	DisposeNone        DisposeMethod = 1 // leave in place
	DisposeBackground  DisposeMethod = 2
	DisposePrevious    DisposeMethod = 3
)

// TableBits returns the packed size field for a color table of n entries:
// the table holds 1<<(bits+1) entries.
func TableBits(n int) int {
	bits := 0
	for 2<<uint(bits) < n && bits < 7 {
		bits++
	}
	return bits
}

// TableLen returns the entry count encoded by a packed size field.
func TableLen(bits int) int {
	return 2 << uint(bits&MaskTableSize)
}

// ReadLE16 reads a little-endian uint16 from data.
func ReadLE16(data []byte) uint16 {
	return binary.LittleEndian.Uint16(data)
}

// AppendLE16 appends v in little-endian order.
func AppendLE16(dst []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(dst, v)
}
