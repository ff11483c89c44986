package bitio

// MaxBlockLen is the largest payload of a single data sub-block.
const MaxBlockLen = 255

// AppendBlocks appends data to dst as a sequence of sub-blocks, each
// prefixed by its length (1..255), followed by the zero-length terminator.
func AppendBlocks(dst, data []byte) []byte {
	for len(data) > 0 {
		n := len(data)
		if n > MaxBlockLen {
			n = MaxBlockLen
		}
		dst = append(dst, byte(n))
		dst = append(dst, data[:n]...)
		data = data[n:]
	}
	return append(dst, 0)
}

// BlocksLen returns the framed size of an n-byte payload.
func BlocksLen(n int) int {
	return n + (n+MaxBlockLen-1)/MaxBlockLen + 1
}

// ReadBlocks concatenates the sub-block chain starting at data[pos] and
// returns the payload together with the position just past the terminator.
func ReadBlocks(data []byte, pos int) ([]byte, int, error) {
	end, size, err := scanBlocks(data, pos)
	if err != nil {
		return nil, pos, err
	}
	out := make([]byte, 0, size)
	for pos < end-1 {
		n := int(data[pos])
		out = append(out, data[pos+1:pos+1+n]...)
		pos += 1 + n
	}
	return out, end, nil
}

// SkipBlocks returns the position just past the sub-block chain at data[pos].
func SkipBlocks(data []byte, pos int) (int, error) {
	end, _, err := scanBlocks(data, pos)
	return end, err
}

func scanBlocks(data []byte, pos int) (end, size int, err error) {
	for {
		if pos >= len(data) {
			return 0, 0, ErrTruncated
		}
		n := int(data[pos])
		pos++
		if n == 0 {
			return pos, size, nil
		}
		if pos+n > len(data) {
			return 0, 0, ErrTruncated
		}
		size += n
		pos += n
	}
}
