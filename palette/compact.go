package palette

// Compact drops table entries that pix never references and renumbers pix
// to match. Entry order is preserved. The transparent entry survives only
// if it is used. The input slice and table are not modified.
func Compact(pix []uint8, t *ColorTable) ([]uint8, *ColorTable) {
	var used [MaxColors]bool
	for _, p := range pix {
		used[p] = true
	}
	var remap [MaxColors]uint8
	out := &ColorTable{}
	for i, c := range t.Colors {
		if !used[i] {
			continue
		}
		remap[i] = uint8(len(out.Colors))
		if t.HasTransparent && i == int(t.TransparentIndex) {
			out.HasTransparent = true
			out.TransparentIndex = remap[i]
		}
		out.Colors = append(out.Colors, c)
	}
	if len(out.Colors) == 0 {
		out.Colors = []RGB{{}}
	}
	np := make([]uint8, len(pix))
	for i, p := range pix {
		np[i] = remap[p]
	}
	return np, out
}
