// Package gifkit reads, writes and edits GIF89a animations in pure Go.
//
// The package decodes a GIF into an editable [animation.Animation], renders
// frames with disposal applied, and encodes animations back to GIF with its
// own LZW codec. The transform package builds on this to compose, crop,
// resize, reverse, retime, optimize and split animations.
//
// Basic usage for decoding:
//
//	anim, err := gifkit.DecodeAll(reader)
//
// Basic usage for encoding a still image:
//
//	err := gifkit.Encode(writer, img, &gifkit.Options{MaxColors: 64})
//
// The gifkit command wraps every transform for use from the shell.
package gifkit
