package bitio

import (
	"bytes"
	"testing"
)

func TestWriter_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		width int
		vals  []uint32
	}{
		{"3-bit", 3, []uint32{4, 0, 1, 2, 7, 5}},
		{"9-bit", 9, []uint32{256, 0, 255, 257, 511}},
		{"12-bit", 12, []uint32{4095, 0, 1, 2048, 4094}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bw := NewWriter(0)
			for _, v := range tt.vals {
				bw.WriteBits(v, tt.width)
			}
			wantLen := (len(tt.vals)*tt.width + 7) / 8
			if bw.NumBytes() != wantLen {
				t.Errorf("NumBytes = %d, want %d", bw.NumBytes(), wantLen)
			}
			br := NewReader(bw.Bytes())
			for i, want := range tt.vals {
				got, err := br.ReadBits(tt.width)
				if err != nil {
					t.Fatalf("value %d: %v", i, err)
				}
				if got != want {
					t.Errorf("value %d = %d, want %d", i, got, want)
				}
			}
		})
	}
}

func TestWriter_MasksHighBits(t *testing.T) {
	bw := NewWriter(0)
	bw.WriteBits(0xFFFF, 4)
	bw.WriteBits(0, 4)
	if got := bw.Bytes(); !bytes.Equal(got, []byte{0x0F}) {
		t.Errorf("Bytes = %x, want 0f", got)
	}
}

func TestWriter_Reset(t *testing.T) {
	bw := NewWriter(0)
	bw.WriteBits(0x1FF, 9)
	bw.Reset()
	if bw.NumBytes() != 0 {
		t.Fatalf("NumBytes after Reset = %d", bw.NumBytes())
	}
	bw.WriteBits(0xAB, 8)
	if got := bw.Bytes(); !bytes.Equal(got, []byte{0xAB}) {
		t.Errorf("Bytes = %x, want ab", got)
	}
}

func TestWriter_FlushToBlocks(t *testing.T) {
	bw := NewWriter(0)
	for i := 0; i < 300; i++ {
		bw.WriteBits(uint32(i), 8)
	}
	got := bw.FlushToBlocks([]byte{0x08})
	if got[0] != 0x08 {
		t.Fatalf("prefix clobbered: %x", got[0])
	}
	if got[1] != 255 || got[257] != 45 || got[len(got)-1] != 0 {
		t.Errorf("unexpected framing: len=%d first=%d second=%d last=%d",
			len(got), got[1], got[257], got[len(got)-1])
	}
	if len(got) != 1+BlocksLen(300) {
		t.Errorf("len = %d, want %d", len(got), 1+BlocksLen(300))
	}
}
