package animation

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"testing"
	"time"

	"github.com/deepteams/gifkit/palette"
)

var (
	red   = palette.RGB{R: 0xff}
	green = palette.RGB{G: 0xff}
	blue  = palette.RGB{B: 0xff}
	black = palette.RGB{}
)

func rgbaOf(c palette.RGB) color.NRGBA {
	return color.NRGBA{c.R, c.G, c.B, 0xff}
}

// testAnim returns a 2x2 canvas with three frames sharing a global table.
func testAnim() *Animation {
	return &Animation{
		CanvasWidth:  2,
		CanvasHeight: 2,
		GlobalTable:  palette.NewColorTable([]palette.RGB{red, green, blue, black}),
		LoopCount:    LoopForever,
		Frames: []Frame{
			{Pix: []uint8{0, 1, 2, 3}, Width: 2, Height: 2, Delay: 50 * time.Millisecond},
			{Pix: []uint8{1}, Width: 1, Height: 1, OffsetX: 1, OffsetY: 1,
				Delay: 100 * time.Millisecond, Dispose: DisposeBackground},
			{Pix: []uint8{2, 3}, Width: 2, Height: 1, OffsetY: 1,
				Delay: 70 * time.Millisecond, Dispose: DisposePrevious,
				HasTransparency: true, TransparentIndex: 3},
		},
	}
}

// --- Frame tests ---

func TestFrameBounds(t *testing.T) {
	f := Frame{Width: 100, Height: 200, OffsetX: 10, OffsetY: 20}
	b := f.Bounds()
	if b.Min.X != 10 || b.Min.Y != 20 || b.Max.X != 110 || b.Max.Y != 220 {
		t.Errorf("Bounds() = %v, want (10,20)-(110,220)", b)
	}
}

func TestFrameTable(t *testing.T) {
	global := palette.NewColorTable([]palette.RGB{red, green})
	local := palette.NewColorTable([]palette.RGB{blue, black})
	f := Frame{}
	if f.Table(global) != global {
		t.Error("Table() without local table should return global")
	}
	f.LocalTable = local
	if f.Table(global) != local {
		t.Error("Table() should prefer the local table")
	}
}

func TestFramePalette(t *testing.T) {
	f := Frame{HasTransparency: true, TransparentIndex: 1}
	p := f.Palette(palette.NewColorTable([]palette.RGB{red, green, blue}))
	if len(p) != 4 {
		t.Fatalf("len(Palette) = %d, want 4", len(p))
	}
	if p[0] != rgbaOf(red) {
		t.Errorf("p[0] = %v, want red", p[0])
	}
	if _, _, _, a := p[1].RGBA(); a != 0 {
		t.Errorf("transparent entry alpha = %d, want 0", a)
	}
	if p[3] != rgbaOf(black) {
		t.Errorf("padding entry = %v, want opaque black", p[3])
	}
}

func TestFrameNRGBA(t *testing.T) {
	f := Frame{Pix: []uint8{0, 1}, Width: 2, Height: 1, OffsetX: 5,
		HasTransparency: true, TransparentIndex: 1}
	img := f.NRGBA(palette.NewColorTable([]palette.RGB{red, green}))
	if img.Bounds() != image.Rect(0, 0, 2, 1) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if got := img.NRGBAAt(0, 0); got != rgbaOf(red) {
		t.Errorf("pixel 0 = %v, want red", got)
	}
	if got := img.NRGBAAt(1, 0); got.A != 0 {
		t.Errorf("pixel 1 = %v, want transparent", got)
	}
}

func TestFrameClone(t *testing.T) {
	f := Frame{Pix: []uint8{1, 2}, Width: 2, Height: 1,
		LocalTable: palette.NewColorTable([]palette.RGB{red, green, blue})}
	c := f.Clone()
	c.Pix[0] = 0
	c.LocalTable.Colors[0] = black
	if f.Pix[0] != 1 || f.LocalTable.Colors[0] != red {
		t.Error("Clone shares state with the original")
	}
}

func TestDisposeMethodString(t *testing.T) {
	tests := map[DisposeMethod]string{
		DisposeUnspecified: "unspecified",
		DisposeNone:        "none",
		DisposeBackground:  "background",
		DisposePrevious:    "previous",
		DisposeMethod(7):   "unknown",
	}
	for d, want := range tests {
		if got := d.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", d, got, want)
		}
	}
}

// --- Animation tests ---

func TestEncodeDecodeRoundTrip(t *testing.T) {
	a := testAnim()
	a.Comments = []string{"hello"}
	data, err := a.EncodeBytes(nil)
	if err != nil {
		t.Fatalf("EncodeBytes: %v", err)
	}
	got, err := DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}

	if got.CanvasWidth != 2 || got.CanvasHeight != 2 {
		t.Errorf("canvas = %dx%d, want 2x2", got.CanvasWidth, got.CanvasHeight)
	}
	if got.LoopCount != LoopForever {
		t.Errorf("LoopCount = %d, want %d", got.LoopCount, LoopForever)
	}
	if len(got.Comments) != 1 || got.Comments[0] != "hello" {
		t.Errorf("Comments = %q", got.Comments)
	}
	if len(got.Frames) != len(a.Frames) {
		t.Fatalf("frames = %d, want %d", len(got.Frames), len(a.Frames))
	}
	for i := range a.Frames {
		want, g := &a.Frames[i], &got.Frames[i]
		if !bytes.Equal(g.Pix, want.Pix) {
			t.Errorf("frame %d: Pix = %v, want %v", i, g.Pix, want.Pix)
		}
		if g.Bounds() != want.Bounds() {
			t.Errorf("frame %d: bounds = %v, want %v", i, g.Bounds(), want.Bounds())
		}
		if g.Delay != want.Delay {
			t.Errorf("frame %d: Delay = %v, want %v", i, g.Delay, want.Delay)
		}
		if g.Dispose != want.Dispose {
			t.Errorf("frame %d: Dispose = %v, want %v", i, g.Dispose, want.Dispose)
		}
		if g.HasTransparency != want.HasTransparency || g.TransparentIndex != want.TransparentIndex {
			t.Errorf("frame %d: transparency mismatch", i)
		}
		wantTable := want.Table(a.GlobalTable)
		if !g.Table(got.GlobalTable).SameColors(wantTable) {
			t.Errorf("frame %d: color table mismatch", i)
		}
	}
}

func TestEncodeLoopOnceOmitsExtension(t *testing.T) {
	a := testAnim()
	a.LoopCount = LoopOnce
	data, err := a.EncodeBytes(nil)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(data, []byte("NETSCAPE2.0")) {
		t.Error("loop extension written for LoopOnce")
	}
	got, err := DecodeBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.LoopCount != LoopOnce {
		t.Errorf("LoopCount = %d, want LoopOnce", got.LoopCount)
	}
}

func TestEncodeLoopCountN(t *testing.T) {
	a := testAnim()
	a.LoopCount = 3
	data, err := a.EncodeBytes(nil)
	if err != nil {
		t.Fatal(err)
	}
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("image/gif: %v", err)
	}
	if g.LoopCount != 3 {
		t.Errorf("image/gif LoopCount = %d, want 3", g.LoopCount)
	}
}

func TestStdlibDecodesOutput(t *testing.T) {
	a := testAnim()
	data, err := a.EncodeBytes(&EncodeOptions{Interlace: true})
	if err != nil {
		t.Fatal(err)
	}
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("image/gif: %v", err)
	}
	if len(g.Image) != 3 {
		t.Fatalf("image/gif frames = %d, want 3", len(g.Image))
	}
	wantDelay := []int{5, 10, 7}
	wantDisposal := []byte{0, gif.DisposalBackground, gif.DisposalPrevious}
	for i, m := range g.Image {
		if g.Delay[i] != wantDelay[i] {
			t.Errorf("frame %d: delay = %d, want %d", i, g.Delay[i], wantDelay[i])
		}
		if g.Disposal[i] != wantDisposal[i] {
			t.Errorf("frame %d: disposal = %d, want %d", i, g.Disposal[i], wantDisposal[i])
		}
		if !bytes.Equal(m.Pix, a.Frames[i].Pix) {
			t.Errorf("frame %d: Pix = %v, want %v", i, m.Pix, a.Frames[i].Pix)
		}
		if m.Rect != a.Frames[i].Bounds() {
			t.Errorf("frame %d: rect = %v, want %v", i, m.Rect, a.Frames[i].Bounds())
		}
	}
}

func TestDecodeStdlibOutput(t *testing.T) {
	pal := color.Palette{color.RGBA{0xff, 0, 0, 0xff}, color.RGBA{0, 0, 0xff, 0xff}}
	g := &gif.GIF{LoopCount: 0}
	for i := 0; i < 2; i++ {
		m := image.NewPaletted(image.Rect(0, 0, 4, 4), pal)
		for j := range m.Pix {
			m.Pix[j] = uint8((i + j) % 2)
		}
		g.Image = append(g.Image, m)
		g.Delay = append(g.Delay, 0)
	}
	g.Delay[1] = 25
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatal(err)
	}

	a, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(a.Frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(a.Frames))
	}
	if a.Frames[0].Delay != DefaultDelay {
		t.Errorf("zero delay decoded as %v, want %v", a.Frames[0].Delay, DefaultDelay)
	}
	if a.Frames[1].Delay != 250*time.Millisecond {
		t.Errorf("delay = %v, want 250ms", a.Frames[1].Delay)
	}
	for i, m := range g.Image {
		if !bytes.Equal(a.Frames[i].Pix, m.Pix) {
			t.Errorf("frame %d: Pix mismatch", i)
		}
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := DecodeBytes([]byte("PNG...")); err == nil {
		t.Error("expected error for non-GIF data")
	}
}

func TestDelayToCentis(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int
	}{
		{0, 1},
		{4 * time.Millisecond, 1},
		{14 * time.Millisecond, 1},
		{15 * time.Millisecond, 2},
		{50 * time.Millisecond, 5},
		{33 * time.Millisecond, 3},
		{time.Second, 100},
		{time.Hour, 0xFFFF},
	}
	for _, tt := range tests {
		if got := DelayToCentis(tt.d); got != tt.want {
			t.Errorf("DelayToCentis(%v) = %d, want %d", tt.d, got, tt.want)
		}
	}
}

func TestTotalDuration(t *testing.T) {
	a := testAnim()
	if got := a.TotalDuration(); got != 220*time.Millisecond {
		t.Errorf("TotalDuration = %v, want 220ms", got)
	}
}

func TestEncodedDuration(t *testing.T) {
	a := testAnim()
	a.Frames[0].Delay = 33 * time.Millisecond
	a.Frames[2].Delay = 0
	// 3cs + 10cs + 1cs.
	if got := a.EncodedDuration(); got != 140*time.Millisecond {
		t.Errorf("EncodedDuration = %v, want 140ms", got)
	}
	data, err := a.EncodeBytes(nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := DecodeBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if b.TotalDuration() != a.EncodedDuration() {
		t.Errorf("written duration %v, EncodedDuration %v", b.TotalDuration(), a.EncodedDuration())
	}
}

func TestPlaybackDuration(t *testing.T) {
	a := testAnim()
	tests := []struct {
		loop     int
		want     time.Duration
		infinite bool
	}{
		{LoopForever, 220 * time.Millisecond, true},
		{LoopOnce, 220 * time.Millisecond, false},
		{3, 660 * time.Millisecond, false},
	}
	for _, tt := range tests {
		a.LoopCount = tt.loop
		d, inf := a.PlaybackDuration()
		if d != tt.want || inf != tt.infinite {
			t.Errorf("loop %d: PlaybackDuration = (%v, %v), want (%v, %v)",
				tt.loop, d, inf, tt.want, tt.infinite)
		}
	}
}

func TestClone(t *testing.T) {
	a := testAnim()
	c := a.Clone()
	c.Frames[0].Pix[0] = 3
	c.GlobalTable.Colors[0] = black
	c.Frames = c.Frames[:1]
	if a.Frames[0].Pix[0] != 0 || a.GlobalTable.Colors[0] != red || len(a.Frames) != 3 {
		t.Error("Clone shares state with the original")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(a *Animation)
		want   error
	}{
		{"no frames", func(a *Animation) { a.Frames = nil }, ErrNoFrames},
		{"zero canvas", func(a *Animation) { a.CanvasWidth = 0 }, ErrCanvasSize},
		{"huge canvas", func(a *Animation) { a.CanvasHeight = 1 << 16 }, ErrCanvasSize},
		{"pixel count", func(a *Animation) { a.Frames[0].Pix = a.Frames[0].Pix[:3] }, ErrInvalidFrame},
		{"outside canvas", func(a *Animation) { a.Frames[1].OffsetX = 2 }, ErrFrameOutOfRect},
		{"negative offset", func(a *Animation) { a.Frames[1].OffsetY = -1 }, ErrFrameOutOfRect},
		{"no table", func(a *Animation) { a.GlobalTable = nil }, ErrNoColorTable},
		{"index range", func(a *Animation) { a.Frames[1].Pix[0] = 4 }, ErrIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testAnim()
			tt.modify(a)
			if err := a.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
	if err := testAnim().Validate(); err != nil {
		t.Errorf("Validate() on valid animation = %v", err)
	}
}

func TestValidateTransparentIndexBeyondTable(t *testing.T) {
	a := testAnim()
	a.Frames[1].HasTransparency = true
	a.Frames[1].TransparentIndex = 7
	if err := a.Validate(); err != nil {
		t.Errorf("unused transparent index beyond table rejected: %v", err)
	}

	// A pixel using it cannot be encoded or drawn.
	a.Frames[1].Pix[0] = 7
	if err := a.Validate(); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Validate() = %v, want ErrIndexOutOfRange", err)
	}
}

func TestValidateAllowsPaddedIndex(t *testing.T) {
	a := testAnim()
	a.GlobalTable = palette.NewColorTable([]palette.RGB{red, green, blue})
	// Index 3 is black padding in the encoded 4-entry table.
	if err := a.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestEncodeInvalidWritesNothing(t *testing.T) {
	a := testAnim()
	a.Frames = nil
	var buf bytes.Buffer
	if err := a.Encode(&buf, nil); !errors.Is(err, ErrNoFrames) {
		t.Fatalf("Encode = %v, want ErrNoFrames", err)
	}
	if buf.Len() != 0 {
		t.Errorf("%d bytes written on failure", buf.Len())
	}
}
