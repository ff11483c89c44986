package lzw

import (
	"errors"

	"github.com/deepteams/gifkit/internal/bitio"
	"github.com/deepteams/gifkit/internal/pool"
)

const (
	// Hash table entries pack key<<12 | code where key = prefix<<8 | literal.
	// Zero marks an empty slot; no valid entry is zero because assigned codes
	// are always above the end-of-information code.
	tableSize = pool.LZWTableSize
	tableMask = tableSize - 1
)

var errOutOfCodes = errors.New("lzw: out of codes")

type encoder struct {
	bw       *bitio.Writer
	table    []uint32
	litWidth int
	width    int
	hi       uint32
	overflow uint32
}

// Encode compresses palette indices into an LZW code stream without
// sub-block framing. Every index must be below 1<<litWidth.
//
// The stream opens with a clear code, matches the longest known string at
// each step, emits a clear code and restarts the table when the next code
// would be 4095, and ends with the end-of-information code.
func Encode(pix []uint8, litWidth int) ([]byte, error) {
	if err := checkLitWidth(litWidth); err != nil {
		return nil, err
	}
	if litWidth < 8 {
		maxLit := uint8(1<<uint(litWidth) - 1)
		for _, x := range pix {
			if x > maxLit {
				return nil, ErrPixelOutOfRange
			}
		}
	}

	table := pool.GetLZWTable()
	defer pool.PutLZWTable(table)

	clear := uint32(1) << uint(litWidth)
	e := &encoder{
		bw:       bitio.NewWriter(len(pix)/2 + 16),
		table:    table,
		litWidth: litWidth,
		width:    litWidth + 1,
		hi:       clear + 1,
		overflow: clear << 1,
	}

	e.bw.WriteBits(clear, e.width)
	if len(pix) == 0 {
		e.bw.WriteBits(clear+1, e.width)
		return e.bw.Bytes(), nil
	}

	code := uint32(pix[0])
loop:
	for _, x := range pix[1:] {
		literal := uint32(x)
		key := code<<8 | literal
		hash := (key>>12 ^ key) & tableMask
		for h, t := hash, e.table[hash]; t != 0; {
			if key == t>>12 {
				code = t & maxCode
				continue loop
			}
			h = (h + 1) & tableMask
			t = e.table[h]
		}
		e.bw.WriteBits(code, e.width)
		code = literal
		if e.incHi() == errOutOfCodes {
			continue
		}
		for e.table[hash] != 0 {
			hash = (hash + 1) & tableMask
		}
		e.table[hash] = key<<12 | e.hi
	}

	e.bw.WriteBits(code, e.width)
	e.incHi()
	e.bw.WriteBits(clear+1, e.width)
	return e.bw.Bytes(), nil
}

// incHi advances the next implied code. When the code space is exhausted
// it writes a clear code, resets the table and returns errOutOfCodes.
func (e *encoder) incHi() error {
	e.hi++
	if e.hi == e.overflow {
		e.width++
		e.overflow <<= 1
	}
	if e.hi == maxCode {
		clear := uint32(1) << uint(e.litWidth)
		e.bw.WriteBits(clear, e.width)
		e.width = e.litWidth + 1
		e.hi = clear + 1
		e.overflow = clear << 1
		clear32(e.table)
		return errOutOfCodes
	}
	return nil
}

func clear32(s []uint32) {
	for i := range s {
		s[i] = 0
	}
}
