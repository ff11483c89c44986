package lzw

import (
	"fmt"

	"github.com/deepteams/gifkit/internal/bitio"
)

// MaxPixels returns the most indices n bytes of code stream can expand to:
// every code is at least litWidth+1 bits and expands to at most 1<<MaxWidth
// indices.
func MaxPixels(n, litWidth int) int {
	return n * 8 / (litWidth + 1) << MaxWidth
}

// decoder holds the code table. Entry c expands to the expansion of
// prefix[c] followed by suffix[c]; codes below clear are literals.
type decoder struct {
	suffix [1 << MaxWidth]uint8
	prefix [1 << MaxWidth]uint16
	// scratch receives one expansion, written back to front.
	scratch [1 << MaxWidth]uint8
}

// Decode decompresses an LZW code stream (sub-block framing already
// removed) into exactly npixels palette indices.
//
// Indices past npixels are ignored. A stream that ends, with or without the
// end-of-information code, before npixels indices have been produced fails
// with ErrCorruptStream.
func Decode(data []byte, litWidth, npixels int) ([]uint8, error) {
	if err := checkLitWidth(litWidth); err != nil {
		return nil, err
	}
	if npixels < 0 {
		return nil, fmt.Errorf("%w: negative pixel count", ErrCorruptStream)
	}
	if limit := MaxPixels(len(data), litWidth); npixels > limit {
		return nil, fmt.Errorf("%w: %d pixels from %d bytes (at most %d)", ErrCorruptStream, npixels, len(data), limit)
	}

	d := new(decoder)
	out := make([]uint8, npixels)
	o := 0

	br := bitio.NewReader(data)
	clear := uint16(1) << uint(litWidth)
	eoi := clear + 1
	width := litWidth + 1
	hi := eoi
	overflow := uint16(1) << uint(width)
	last := uint16(invalidCode)

	for {
		v, err := br.ReadBits(width)
		if err != nil {
			if o == npixels {
				return out, nil
			}
			return nil, fmt.Errorf("%w: %w (%d of %d pixels)", ErrCorruptStream, err, o, npixels)
		}
		code := uint16(v)

		switch {
		case code < clear:
			if o < npixels {
				out[o] = uint8(code)
				o++
			}
			if last != invalidCode {
				d.suffix[hi] = uint8(code)
				d.prefix[hi] = last
			}
		case code == clear:
			width = litWidth + 1
			hi = eoi
			overflow = 1 << uint(width)
			last = invalidCode
			continue
		case code == eoi:
			if o < npixels {
				return nil, fmt.Errorf("%w: end of data after %d of %d pixels", ErrCorruptStream, o, npixels)
			}
			return out, nil
		case code <= hi:
			c, i := code, len(d.scratch)-1
			if code == hi && last != invalidCode {
				// hi is not defined yet: it expands to last's expansion
				// followed by that expansion's first index.
				c = last
				for c >= clear {
					c = d.prefix[c]
				}
				d.scratch[i] = uint8(c)
				i--
				c = last
			}
			for c >= clear {
				d.scratch[i] = d.suffix[c]
				i--
				c = d.prefix[c]
			}
			d.scratch[i] = uint8(c)
			o += copy(out[o:], d.scratch[i:])
			if last != invalidCode {
				d.suffix[hi] = uint8(c)
				d.prefix[hi] = last
			}
		default:
			return nil, fmt.Errorf("%w: code %d beyond table end %d", ErrCorruptStream, code, hi)
		}

		last, hi = code, hi+1
		if hi >= overflow {
			if width == MaxWidth {
				// Table full: stop adding entries until the next clear code.
				last = invalidCode
				hi--
			} else {
				width++
				overflow <<= 1
			}
		}
	}
}
