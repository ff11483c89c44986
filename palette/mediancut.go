package palette

import "sort"

// MedianCut is the built-in quantizer. It repeatedly splits the color box
// with the widest channel range at the pixel-weighted median of that
// channel, then averages each box.
type MedianCut struct{}

// Name implements Quantizer.
func (MedianCut) Name() string { return QuantizerMedianCut }

type box struct {
	colors []weighted
	total  int
}

func newBox(colors []weighted) *box {
	b := &box{colors: colors}
	for _, c := range colors {
		b.total += c.n
	}
	return b
}

// widest returns the channel (0=R, 1=G, 2=B) with the largest range and
// that range.
func (b *box) widest() (ch, span int) {
	lo := [3]int{255, 255, 255}
	var hi [3]int
	for _, w := range b.colors {
		v := [3]int{int(w.c.R), int(w.c.G), int(w.c.B)}
		for i := range v {
			if v[i] < lo[i] {
				lo[i] = v[i]
			}
			if v[i] > hi[i] {
				hi[i] = v[i]
			}
		}
	}
	for i := range lo {
		if s := hi[i] - lo[i]; s > span {
			ch, span = i, s
		}
	}
	return ch, span
}

func channel(c RGB, ch int) uint8 {
	switch ch {
	case 0:
		return c.R
	case 1:
		return c.G
	}
	return c.B
}

// split divides b at the weighted median of channel ch. Both halves are
// non-empty whenever b holds two or more colors.
func (b *box) split(ch int) (*box, *box) {
	sort.SliceStable(b.colors, func(i, j int) bool {
		ci, cj := channel(b.colors[i].c, ch), channel(b.colors[j].c, ch)
		if ci != cj {
			return ci < cj
		}
		return b.colors[i].c.packed() < b.colors[j].c.packed()
	})
	half := b.total / 2
	acc, cut := 0, 1
	for i, w := range b.colors {
		acc += w.n
		if acc >= half {
			cut = i + 1
			break
		}
	}
	if cut >= len(b.colors) {
		cut = len(b.colors) - 1
	}
	if cut < 1 {
		cut = 1
	}
	return newBox(b.colors[:cut]), newBox(b.colors[cut:])
}

func (b *box) mean() RGB {
	var r, g, bl, n int
	for _, w := range b.colors {
		r += int(w.c.R) * w.n
		g += int(w.c.G) * w.n
		bl += int(w.c.B) * w.n
		n += w.n
	}
	if n == 0 {
		return b.colors[0].c
	}
	return RGB{uint8((r + n/2) / n), uint8((g + n/2) / n), uint8((bl + n/2) / n)}
}

// Quantize implements Quantizer.
func (MedianCut) Quantize(h Histogram, n int) []RGB {
	entries := h.entries()
	if len(entries) <= n {
		return h.Colors()
	}
	boxes := []*box{newBox(entries)}
	for len(boxes) < n {
		best, bestScore, bestCh := -1, 0, 0
		for i, b := range boxes {
			if len(b.colors) < 2 {
				continue
			}
			ch, span := b.widest()
			// Prefer boxes that are both wide and heavily populated.
			score := span * b.total
			if best < 0 || score > bestScore {
				best, bestScore, bestCh = i, score, ch
			}
		}
		if best < 0 {
			break
		}
		lo, hi := boxes[best].split(bestCh)
		boxes[best] = lo
		boxes = append(boxes, hi)
	}

	out := make([]RGB, 0, len(boxes))
	seen := make(map[RGB]bool, len(boxes))
	for _, b := range boxes {
		c := b.mean()
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
