package bitio

// Writer accumulates little-endian bit fields and flushes them a byte at a
// time. It is the counterpart of Reader.
type Writer struct {
	bits uint64 // bit accumulator
	used int    // number of bits used in accumulator
	buf  []byte
}

// NewWriter creates a Writer whose output buffer starts with room for
// expectedSize bytes.
func NewWriter(expectedSize int) *Writer {
	if expectedSize < 256 {
		expectedSize = 256
	}
	return &Writer{buf: make([]byte, 0, expectedSize)}
}

// WriteBits appends the low nBits (0..24) of v.
func (bw *Writer) WriteBits(v uint32, nBits int) {
	if nBits == 0 {
		return
	}
	bw.bits |= uint64(v&(1<<uint(nBits)-1)) << uint(bw.used)
	bw.used += nBits
	for bw.used >= 8 {
		bw.buf = append(bw.buf, byte(bw.bits))
		bw.bits >>= 8
		bw.used -= 8
	}
}

// Bytes flushes any partial byte, zero padded in its high bits, and returns
// the encoded bytes. The Writer may continue to be used afterwards; the
// next field starts on a fresh byte.
func (bw *Writer) Bytes() []byte {
	if bw.used > 0 {
		bw.buf = append(bw.buf, byte(bw.bits))
		bw.bits = 0
		bw.used = 0
	}
	return bw.buf
}

// NumBytes returns the number of encoded bytes, including any partial byte
// in the accumulator.
func (bw *Writer) NumBytes() int {
	return len(bw.buf) + (bw.used+7)/8
}

// Reset discards all output and reuses the buffer.
func (bw *Writer) Reset() {
	bw.buf = bw.buf[:0]
	bw.bits = 0
	bw.used = 0
}

// FlushToBlocks flushes the writer and appends its output to dst framed as
// GIF data sub-blocks.
func (bw *Writer) FlushToBlocks(dst []byte) []byte {
	return AppendBlocks(dst, bw.Bytes())
}
