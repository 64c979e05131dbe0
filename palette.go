package delite

import (
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultHighlightThreshold is the first palette index tinted in Highlight
// mode: the top sixteenth of the ramp, the range where residual clipping
// lives after a mild adjustment.
const DefaultHighlightThreshold uint8 = 0xF0

// PaletteEntry is one color-table slot, channels in the order the container
// stores them on the wire: blue, green, red, one reserved padding byte.
type PaletteEntry struct {
	B, G, R, Reserved uint8
}

// Palette is the full 256-entry color table of an 8-bit preview.
type Palette [256]PaletteEntry

// GrayscalePalette returns the identity ramp: entry i maps index i to the
// color (i, i, i). This is the table every preview carries unless the
// caller opts into Highlight mode.
func GrayscalePalette() Palette {
	var p Palette
	for i := range p {
		v := uint8(i)
		p[i] = PaletteEntry{B: v, G: v, R: v}
	}
	return p
}

// HighlightPalette returns the grayscale ramp with entries at or above
// threshold blended toward red in Lab space, so samples that are still
// blown after adjustment glow in the preview instead of hiding in the
// white. A threshold of 0 means DefaultHighlightThreshold.
//
// Only the color table changes; the pixel indices are identical to the
// grayscale preview, so flipping the mode never alters the image data.
func HighlightPalette(threshold uint8) Palette {
	if threshold == 0 {
		threshold = DefaultHighlightThreshold
	}
	p := GrayscalePalette()

	warn := colorful.Color{R: 1, G: 0.1, B: 0.1}
	span := float64(256 - int(threshold))
	for i := int(threshold); i <= 255; i++ {
		g := float64(i) / 255
		gray := colorful.Color{R: g, G: g, B: g}
		t := float64(i-int(threshold)+1) / span
		c := gray.BlendLab(warn, t).Clamped()
		p[i] = PaletteEntry{
			B: clampF(c.B * 255),
			G: clampF(c.G * 255),
			R: clampF(c.R * 255),
		}
	}
	return p
}

// paletteFor maps the option surface to a concrete color table.
func paletteFor(opts Options) Palette {
	if opts.Palette == Highlight {
		return HighlightPalette(opts.HighlightThreshold)
	}
	return GrayscalePalette()
}
