package delite

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/makeworld-the-better-one/dither/v2"
)

// Downscale maps 16-bit samples to 8-bit preview pixels and computes the
// square geometry the preview will use.
//
// Each sample keeps its high byte (v / 256, truncating) and drops the low
// byte. The preview is square: side = floor(sqrt(N)) rounded down to the
// nearest multiple of 4, so every 8-bit row lands on a 4-byte boundary with
// zero padding. Samples beyond side*side are dropped; the survivors keep
// their input order, row-major, row 0 first.
//
// Returns the 8-bit pixels (length side*side) and the side length.
func Downscale(pix []uint16) ([]uint8, int, error) {
	side, err := previewSide(len(pix))
	if err != nil {
		return nil, 0, err
	}

	out := make([]uint8, side*side)
	for i := range out {
		out[i] = uint8(pix[i] >> 8)
	}
	return out, side, nil
}

// previewSide computes the preview square's side for n samples:
// floor(sqrt(n)) rounded down to the nearest multiple of 4.
func previewSide(n int) (int, error) {
	if n == 0 {
		return 0, fmt.Errorf("delite: downscale: no samples: %w", ErrEmptyInput)
	}
	side := int(math.Sqrt(float64(n))) &^ 3
	if side == 0 {
		return 0, fmt.Errorf("delite: downscale: %d samples cannot fill a 4x4 preview: %w", n, ErrEmptyInput)
	}
	return side, nil
}

// downscaleDithered quantizes the preview with Floyd-Steinberg error
// diffusion instead of plain truncation, preserving smooth gradients that
// truncation posterizes. The already-sized square is lifted into a Gray16
// image, dithered against the full 256-gray ramp, and the palette indices
// become the preview pixels: entry i of the ramp is intensity i, so the
// paletted bytes are the pixels.
//
// Only the preview takes this path. The adjusted sample dump always keeps
// the exact 16-bit values.
func downscaleDithered(pix []uint16, side int) []uint8 {
	img := image.NewGray16(image.Rect(0, 0, side, side))
	for i := 0; i < side*side; i++ {
		off := i * 2
		// Gray16 stores samples big-endian.
		img.Pix[off] = uint8(pix[i] >> 8)
		img.Pix[off+1] = uint8(pix[i])
	}

	ramp := make(color.Palette, 256)
	for i := range ramp {
		ramp[i] = color.Gray{Y: uint8(i)}
	}

	d := dither.NewDitherer(ramp)
	d.Matrix = dither.FloydSteinberg
	paletted := d.DitherPaletted(img)

	out := make([]uint8, side*side)
	copy(out, paletted.Pix)
	return out
}

// clampF clamps a float64 to uint8 range [0, 255].
func clampF(x float64) uint8 {
	v := int64(math.Round(x))
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return uint8(v)
}

// humanBytes formats a byte count for human reading.
func humanBytes(b int64) string {
	if b == 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	i := 0
	bf := float64(b)
	for bf >= 1024 && i < len(units)-1 {
		bf /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", b)
	}
	return fmt.Sprintf("%.1f %s", bf, units[i])
}
