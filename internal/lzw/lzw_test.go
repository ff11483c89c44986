package lzw

import (
	"bytes"
	"compress/lzw"
	"errors"
	"io"
	"math/rand"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepteams/gifkit/internal/bitio"
)

func stdEncode(t *testing.T, pix []uint8, litWidth int) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := lzw.NewWriter(&buf, lzw.LSB, litWidth)
	_, err := w.Write(pix)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func randomPixels(seed int64, n, litWidth int) []uint8 {
	rng := rand.New(rand.NewSource(seed))
	pix := make([]uint8, n)
	for i := range pix {
		pix[i] = uint8(rng.Intn(1 << uint(litWidth)))
	}
	return pix
}

// runs produces long stretches of repeated indices, which push the code
// table toward 4095 quickly.
func runs(n, litWidth int) []uint8 {
	pix := make([]uint8, n)
	for i := range pix {
		pix[i] = uint8((i / 37) % (1 << uint(litWidth)))
	}
	return pix
}

func TestLitWidth(t *testing.T) {
	tests := []struct {
		colors int
		want   int
	}{
		{1, 2}, {2, 2}, {4, 2}, {5, 3}, {8, 3}, {16, 4}, {17, 5}, {128, 7}, {129, 8}, {256, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LitWidth(tt.colors), "colors=%d", tt.colors)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		pix      []uint8
		litWidth int
	}{
		{"empty", nil, 2},
		{"single", []uint8{3}, 2},
		{"kwkwk", []uint8{1, 1, 1, 1, 1, 1, 1}, 2},
		{"random 4-bit", randomPixels(1, 5000, 4), 4},
		{"random 8-bit", randomPixels(2, 100000, 8), 8},
		{"runs 8-bit", runs(200000, 8), 8},
		{"runs 2-bit", runs(50000, 2), 2},
		{"constant", bytes.Repeat([]uint8{7}, 1<<16), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := Encode(tt.pix, tt.litWidth)
			require.NoError(t, err)
			dec, err := Decode(enc, tt.litWidth, len(tt.pix))
			require.NoError(t, err)
			assert.Equal(t, len(tt.pix), len(dec))
			assert.True(t, bytes.Equal(tt.pix, dec), "decoded pixels differ")
		})
	}
}

func TestEncode_MatchesStandardLibrary(t *testing.T) {
	inputs := map[string]struct {
		pix      []uint8
		litWidth int
	}{
		"empty":    {nil, 8},
		"one":      {[]uint8{0}, 2},
		"random-2": {randomPixels(3, 20000, 2), 2},
		"random-5": {randomPixels(4, 20000, 5), 5},
		"random-8": {randomPixels(5, 300000, 8), 8},
		"runs-8":   {runs(300000, 8), 8},
		"sequential": {func() []uint8 {
			p := make([]uint8, 70000)
			for i := range p {
				p[i] = uint8(i)
			}
			return p
		}(), 8},
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			got, err := Encode(in.pix, in.litWidth)
			require.NoError(t, err)
			want := stdEncode(t, in.pix, in.litWidth)
			assert.True(t, bytes.Equal(want, got), "encoded %d bytes, standard library %d", len(got), len(want))
		})
	}
}

func TestDecode_StandardLibraryStream(t *testing.T) {
	pix := randomPixels(6, 123456, 6)
	dec, err := Decode(stdEncode(t, pix, 6), 6, len(pix))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(pix, dec))
}

func TestEncode_DecodesWithStandardLibrary(t *testing.T) {
	pix := runs(100000, 7)
	enc, err := Encode(pix, 7)
	require.NoError(t, err)
	r := lzw.NewReader(bytes.NewReader(enc), lzw.LSB, 7)
	defer r.Close()
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(pix, got))
}

func TestEncode_Deterministic(t *testing.T) {
	pix := randomPixels(7, 40000, 8)
	a, err := Encode(pix, 8)
	require.NoError(t, err)
	b, err := Encode(pix, 8)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncode_Errors(t *testing.T) {
	_, err := Encode([]uint8{0, 4}, 2)
	assert.ErrorIs(t, err, ErrPixelOutOfRange)

	_, err = Encode([]uint8{0}, 1)
	assert.ErrorIs(t, err, ErrInvalidLitWidth)

	_, err = Encode([]uint8{0}, 9)
	assert.ErrorIs(t, err, ErrInvalidLitWidth)
}

func codes(width int, cs ...uint32) []byte {
	bw := bitio.NewWriter(0)
	for _, c := range cs {
		bw.WriteBits(c, width)
	}
	return bw.Bytes()
}

func TestDecode_Corrupt(t *testing.T) {
	// litWidth 2: clear=4, eoi=5, first new code 6, width 3.
	tests := []struct {
		name    string
		data    []byte
		npixels int
	}{
		{"code beyond table", codes(3, 4, 1, 7), 4},
		{"first code not defined", codes(3, 4, 6), 2},
		{"premature eoi", codes(3, 4, 1, 2, 5), 3},
		{"stream ends early", codes(3, 4, 1, 2), 8},
		{"empty stream", nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data, 2, tt.npixels)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCorruptStream)
		})
	}
}

func TestDecode_TruncationKeepsCause(t *testing.T) {
	_, err := Decode(codes(3, 4, 1, 2), 2, 8)
	assert.True(t, errors.Is(err, bitio.ErrTruncated))
	assert.True(t, errors.Is(err, ErrCorruptStream))
}

func TestDecode_Lenient(t *testing.T) {
	// Missing end-of-information after all pixels.
	dec, err := Decode(codes(3, 4, 1, 2, 3), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 3}, dec)

	// Surplus pixels are dropped.
	dec, err = Decode(codes(3, 4, 1, 2, 3), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2}, dec)

	// The leading clear code is optional.
	dec, err = Decode(codes(3, 3, 3, 5), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint8{3, 3}, dec)
}

func TestDecode_PixelCountBeyondInput(t *testing.T) {
	// Clear, end-of-information: 3 bytes claiming a 65535x65535 frame.
	data := []byte{0x2c, 0x00, 0x00}
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := Decode(data, 2, 0xFFFF*0xFFFF)
	runtime.ReadMemStats(&after)
	require.ErrorIs(t, err, ErrCorruptStream)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
}

func TestMaxPixels(t *testing.T) {
	pix := make([]uint8, 100000)
	data := stdEncode(t, pix, 2)
	assert.GreaterOrEqual(t, MaxPixels(len(data), 2), len(pix))
	got, err := Decode(data, 2, len(pix))
	require.NoError(t, err)
	assert.Equal(t, pix, got)
	assert.Equal(t, 0, MaxPixels(0, 8))
}

func TestDecode_InvalidLitWidth(t *testing.T) {
	_, err := Decode([]byte{0}, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidLitWidth)
}

func FuzzDecode(f *testing.F) {
	seed, _ := Encode(runs(3000, 4), 4)
	f.Add(seed, 4, 3000)
	f.Add([]byte{0x00}, 2, 1)
	f.Fuzz(func(t *testing.T, data []byte, litWidth, npixels int) {
		if npixels < 0 || npixels > 1<<20 {
			return
		}
		out, err := Decode(data, litWidth, npixels)
		if err == nil && len(out) != npixels {
			t.Fatalf("len = %d, want %d", len(out), npixels)
		}
	})
}
