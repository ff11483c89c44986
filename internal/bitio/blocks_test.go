package bitio

import (
	"bytes"
	"errors"
	"testing"
)

func TestAppendBlocks(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want []int // sub-block lengths, excluding terminator
	}{
		{"empty", 0, nil},
		{"one", 1, []int{1}},
		{"full", 255, []int{255}},
		{"full+1", 256, []int{255, 1}},
		{"multi", 600, []int{255, 255, 90}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := bytes.Repeat([]byte{7}, tt.n)
			out := AppendBlocks(nil, data)
			if len(out) != BlocksLen(tt.n) {
				t.Fatalf("len = %d, want %d", len(out), BlocksLen(tt.n))
			}
			pos := 0
			for i, n := range tt.want {
				if int(out[pos]) != n {
					t.Fatalf("block %d len = %d, want %d", i, out[pos], n)
				}
				pos += 1 + n
			}
			if out[pos] != 0 || pos != len(out)-1 {
				t.Errorf("missing terminator at %d", pos)
			}

			payload, next, err := ReadBlocks(out, 0)
			if err != nil {
				t.Fatalf("ReadBlocks: %v", err)
			}
			if next != len(out) || !bytes.Equal(payload, data) {
				t.Errorf("ReadBlocks = %d bytes, next %d", len(payload), next)
			}
		})
	}
}

func TestReadBlocks_Truncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short payload", []byte{5, 1, 2}},
		{"no terminator", []byte{2, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ReadBlocks(tt.data, 0); !errors.Is(err, ErrTruncated) {
				t.Errorf("ReadBlocks err = %v, want ErrTruncated", err)
			}
			if _, err := SkipBlocks(tt.data, 0); !errors.Is(err, ErrTruncated) {
				t.Errorf("SkipBlocks err = %v, want ErrTruncated", err)
			}
		})
	}
}

func TestSkipBlocks(t *testing.T) {
	data := []byte{0xAA, 2, 1, 2, 1, 9, 0, 0x3B}
	next, err := SkipBlocks(data, 1)
	if err != nil {
		t.Fatal(err)
	}
	if data[next] != 0x3B {
		t.Errorf("next = %d, want trailer position", next)
	}
}
