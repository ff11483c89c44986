// Package lzw implements the variable-length-code LZW compression used by
// GIF image data.
//
// Codes are packed least significant bit first. The code width starts at
// litWidth+1 bits and grows by one each time the next code to be assigned
// reaches a power of two, up to 12 bits. Encoder and decoder share this
// growth policy, so a stream produced by Encode decodes with Decode and with
// any other conforming GIF decoder.
package lzw

import "errors"

const (
	// MaxWidth is the widest code, in bits.
	MaxWidth = 12
	maxCode  = 1<<MaxWidth - 1
	// MinLitWidth and MaxLitWidth bound the minimum code size byte that
	// precedes the image data.
	MinLitWidth = 2
	MaxLitWidth = 8

	invalidCode = 0xffff
)

var (
	ErrCorruptStream   = errors.New("lzw: corrupt stream")
	ErrInvalidLitWidth = errors.New("lzw: minimum code size out of range")
	ErrPixelOutOfRange = errors.New("lzw: pixel index too large for the minimum code size")
)

// LitWidth returns the minimum code size for a color table with n entries.
// GIF requires at least 2 even for one- or two-color tables.
func LitWidth(n int) int {
	w := MinLitWidth
	for 1<<w < n && w < MaxLitWidth {
		w++
	}
	return w
}

func checkLitWidth(litWidth int) error {
	if litWidth < MinLitWidth || litWidth > MaxLitWidth {
		return ErrInvalidLitWidth
	}
	return nil
}
