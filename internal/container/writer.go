package container

import "github.com/deepteams/gifkit/internal/bitio"

// ScreenDescriptor is the logical screen descriptor written after the
// signature.
type ScreenDescriptor struct {
	Width           int
	Height          int
	GlobalTable     []byte // packed RGB triplets, 3*2^k bytes; nil for none
	BackgroundIndex uint8
}

// AppendHeader appends the GIF89a signature, the logical screen descriptor
// and the global color table.
func AppendHeader(dst []byte, sd ScreenDescriptor) []byte {
	dst = append(dst, Signature89a...)
	dst = AppendLE16(dst, uint16(sd.Width))
	dst = AppendLE16(dst, uint16(sd.Height))
	var packed byte
	if len(sd.GlobalTable) > 0 {
		bits := TableBits(len(sd.GlobalTable) / 3)
		packed = FlagColorTable | byte(bits)<<4 | byte(bits)
	}
	dst = append(dst, packed, sd.BackgroundIndex, 0)
	return append(dst, sd.GlobalTable...)
}

// AppendLoop appends a NETSCAPE2.0 application extension. A count of 0
// loops forever.
func AppendLoop(dst []byte, count int) []byte {
	dst = append(dst, ExtensionIntroducer, LabelApplication, AppIdentifierSize)
	dst = append(dst, AppNetscape...)
	dst = append(dst, 3, 1)
	dst = AppendLE16(dst, uint16(count))
	return append(dst, 0)
}

// AppendComment appends a comment extension.
func AppendComment(dst []byte, text string) []byte {
	dst = append(dst, ExtensionIntroducer, LabelComment)
	return bitio.AppendBlocks(dst, []byte(text))
}

// AppendGCE appends a graphic control extension for fi. Delay, disposal and
// transparency are written as given.
func AppendGCE(dst []byte, fi *FrameInfo) []byte {
	packed := byte(fi.Dispose&0x07) << GCEDisposeShift
	if fi.UserInput {
		packed |= GCEUserInput
	}
	if fi.HasTransparency {
		packed |= GCETransparent
	}
	dst = append(dst, ExtensionIntroducer, LabelGraphicControl, GCEBlockSize, packed)
	dst = AppendLE16(dst, uint16(fi.Delay))
	return append(dst, fi.TransparentIndex, 0)
}

// AppendImage appends the image descriptor, the local color table, the
// minimum code size and fi.Data framed as sub-blocks.
func AppendImage(dst []byte, fi *FrameInfo) []byte {
	dst = append(dst, ImageSeparator)
	dst = AppendLE16(dst, uint16(fi.Left))
	dst = AppendLE16(dst, uint16(fi.Top))
	dst = AppendLE16(dst, uint16(fi.Width))
	dst = AppendLE16(dst, uint16(fi.Height))
	var packed byte
	if len(fi.LocalTable) > 0 {
		packed = FlagColorTable | byte(TableBits(len(fi.LocalTable)/3))
	}
	if fi.Interlaced {
		packed |= FlagInterlace
	}
	dst = append(dst, packed)
	dst = append(dst, fi.LocalTable...)
	dst = append(dst, byte(fi.LitWidth))
	return bitio.AppendBlocks(dst, fi.Data)
}

// AppendTrailer appends the trailer byte.
func AppendTrailer(dst []byte) []byte {
	return append(dst, Trailer)
}
