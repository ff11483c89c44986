package bitio

import "errors"

// ErrTruncated is returned when a read needs more bits or bytes than remain.
var ErrTruncated = errors.New("bitio: truncated data")

// MaxReadBits is the widest field a single ReadBits call accepts.
const MaxReadBits = 24

// Reader reads little-endian bit fields (least significant bit first) from
// a byte slice, the packing used by GIF LZW code streams.
//
// Bits are prefetched into a 64-bit window that is refilled a byte at a time.
type Reader struct {
	val uint64 // pre-fetched bits, next bit in bit 0
	n   int    // number of valid bits in val
	buf []byte
	pos int // next byte to load from buf
}

// NewReader creates a Reader over data. The slice is not copied.
func NewReader(data []byte) *Reader {
	br := &Reader{buf: data}
	br.fill()
	return br
}

// fill loads whole bytes into the window until it holds at least 56 bits or
// the input is exhausted.
func (br *Reader) fill() {
	for br.n <= 56 && br.pos < len(br.buf) {
		br.val |= uint64(br.buf[br.pos]) << uint(br.n)
		br.pos++
		br.n += 8
	}
}

// ReadBits reads nBits (0..24) and returns them right-aligned. Nothing is
// consumed when fewer than nBits remain.
func (br *Reader) ReadBits(nBits int) (uint32, error) {
	if nBits < 0 || nBits > MaxReadBits {
		return 0, errors.New("bitio: invalid bit count")
	}
	if br.n < nBits {
		br.fill()
		if br.n < nBits {
			return 0, ErrTruncated
		}
	}
	v := uint32(br.val) & (1<<uint(nBits) - 1)
	br.val >>= uint(nBits)
	br.n -= nBits
	if br.n < MaxReadBits {
		br.fill()
	}
	return v, nil
}

// BitsLeft returns the number of unread bits.
func (br *Reader) BitsLeft() int {
	return br.n + 8*(len(br.buf)-br.pos)
}
