package container

// interlacePasses lists the {start row, row step} of each interlace pass.
var interlacePasses = [4][2]int{{0, 8}, {4, 8}, {2, 4}, {1, 2}}

// Deinterlace reorders rows stored in interlaced order into top-to-bottom
// order.
func Deinterlace(pix []uint8, width, height int) []uint8 {
	out := make([]uint8, len(pix))
	src := 0
	for _, p := range interlacePasses {
		for y := p[0]; y < height; y += p[1] {
			copy(out[y*width:(y+1)*width], pix[src*width:(src+1)*width])
			src++
		}
	}
	return out
}

// Interlace reorders top-to-bottom rows into interlaced order.
func Interlace(pix []uint8, width, height int) []uint8 {
	out := make([]uint8, len(pix))
	dst := 0
	for _, p := range interlacePasses {
		for y := p[0]; y < height; y += p[1] {
			copy(out[dst*width:(dst+1)*width], pix[y*width:(y+1)*width])
			dst++
		}
	}
	return out
}
