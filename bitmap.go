package delite

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Wire sizes of the container blocks. The pixel data offset is computed
// from the blocks in front of it, never hardcoded as a magic total.
const (
	fileHeaderSize  = 14
	infoHeaderSize  = 40
	colorTableSize  = 256 * 4
	pixelDataOffset = fileHeaderSize + infoHeaderSize + colorTableSize
)

// Field offsets within the serialized container. Two-byte fields noted;
// everything else is four bytes. All fields are little-endian.
const (
	offSignature   = 0 // 2 bytes, "BM"
	offFileSize    = 2
	offReserved    = 6
	offPixelData   = 10
	offHeaderSize  = 14
	offWidth       = 18
	offHeight      = 22
	offPlanes      = 26 // 2 bytes
	offBitDepth    = 28 // 2 bytes
	offCompression = 30
	offImageSize   = 34
	offXPels       = 38
	offYPels       = 42
	offColorsUsed  = 46
	offImportant   = 50
	offColorTable  = 54
)

// BitmapFileHeader is the 14-byte record that opens the container.
type BitmapFileHeader struct {
	Signature       [2]byte // "BM"
	FileSize        uint32  // total serialized length
	Reserved        uint32  // always zero
	PixelDataOffset uint32  // where the rows start
}

// BitmapInfoHeader is the 40-byte geometry and format record.
type BitmapInfoHeader struct {
	HeaderSize      uint32 // always 40
	Width           int32
	Height          int32 // positive: rows are stored bottom to top
	Planes          uint16 // always 1
	BitDepth        uint16 // always 8
	Compression     uint32 // always 0, uncompressed
	ImageSize       uint32 // Width*Height, no row padding at multiple-of-4 widths
	XPelsPerMeter   int32  // zero, no physical density
	YPelsPerMeter   int32
	ColorsUsed      uint32 // always 256, one entry per 8-bit value
	ImportantColors uint32 // zero, all colors matter equally
}

// Bitmap is the in-memory preview container: headers, color table, and the
// pixel rows in reading order (row 0 at the top). Build it with
// BuildGrayscaleBitmap or BuildPalettedBitmap; Serialize checks every
// invariant again before emitting bytes.
type Bitmap struct {
	FileHeader BitmapFileHeader
	InfoHeader BitmapInfoHeader
	Colors     Palette
	Pix        []uint8
}

// Width returns the pixel width.
func (b *Bitmap) Width() int { return int(b.InfoHeader.Width) }

// Height returns the pixel height.
func (b *Bitmap) Height() int { return int(b.InfoHeader.Height) }

// BuildGrayscaleBitmap assembles the standard preview container: 8-bit
// pixels against the identity grayscale ramp.
func BuildGrayscaleBitmap(pix []uint8, width, height int) (*Bitmap, error) {
	return BuildPalettedBitmap(pix, width, height, GrayscalePalette())
}

// BuildPalettedBitmap assembles an 8-bit container around pix with an
// arbitrary 256-entry color table. pix is row-major with row 0 at the top
// and must hold exactly width*height bytes. The width must be a positive
// multiple of 4 so rows land on 4-byte boundaries without padding.
//
// The headers are fully populated here: sizes and offsets are computed
// from the actual block sizes, so a decoder can locate the pixel data
// without assuming this library's layout.
func BuildPalettedBitmap(pix []uint8, width, height int, colors Palette) (*Bitmap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("delite: bitmap: dimensions %dx%d are not positive: %w", width, height, ErrInvalidGeometry)
	}
	if width%4 != 0 {
		return nil, fmt.Errorf("delite: bitmap: width %d is not a multiple of 4: %w", width, ErrInvalidGeometry)
	}
	imageSize := int64(width) * int64(height)
	fileSize := int64(pixelDataOffset) + imageSize
	if fileSize > math.MaxUint32 {
		return nil, fmt.Errorf("delite: bitmap: file size %d overflows the 32-bit size field: %w", fileSize, ErrTooLarge)
	}
	if int64(len(pix)) != imageSize {
		return nil, fmt.Errorf("delite: bitmap: %d pixels cannot fill %dx%d: %w", len(pix), width, height, ErrInvalidGeometry)
	}

	return &Bitmap{
		FileHeader: BitmapFileHeader{
			Signature:       [2]byte{'B', 'M'},
			FileSize:        uint32(fileSize),
			PixelDataOffset: pixelDataOffset,
		},
		InfoHeader: BitmapInfoHeader{
			HeaderSize: infoHeaderSize,
			Width:      int32(width),
			Height:     int32(height),
			Planes:     1,
			BitDepth:   8,
			ImageSize:  uint32(imageSize),
			ColorsUsed: 256,
		},
		Colors: colors,
		Pix:    pix,
	}, nil
}

// validate checks every container invariant. Serialize refuses to emit a
// single byte while any of these fail, so a half-written container can
// never escape.
func (b *Bitmap) validate() error {
	fh, ih := &b.FileHeader, &b.InfoHeader
	if fh.Signature != [2]byte{'B', 'M'} {
		return fmt.Errorf("delite: bitmap: signature %q is not \"BM\": %w", fh.Signature[:], ErrEncoding)
	}
	if fh.Reserved != 0 {
		return fmt.Errorf("delite: bitmap: reserved field %#x is not zero: %w", fh.Reserved, ErrEncoding)
	}
	if ih.HeaderSize != infoHeaderSize {
		return fmt.Errorf("delite: bitmap: info header size %d, want %d: %w", ih.HeaderSize, infoHeaderSize, ErrEncoding)
	}
	if ih.Planes != 1 {
		return fmt.Errorf("delite: bitmap: %d planes, want 1: %w", ih.Planes, ErrEncoding)
	}
	if ih.BitDepth != 8 {
		return fmt.Errorf("delite: bitmap: bit depth %d, want 8: %w", ih.BitDepth, ErrEncoding)
	}
	if ih.Compression != 0 {
		return fmt.Errorf("delite: bitmap: compression %d, want 0: %w", ih.Compression, ErrEncoding)
	}
	if ih.ColorsUsed != 256 {
		return fmt.Errorf("delite: bitmap: %d palette entries, want 256 for 8-bit depth: %w", ih.ColorsUsed, ErrEncoding)
	}
	if ih.Width <= 0 || ih.Height <= 0 {
		return fmt.Errorf("delite: bitmap: dimensions %dx%d are not positive: %w", ih.Width, ih.Height, ErrEncoding)
	}
	if ih.Width%4 != 0 {
		return fmt.Errorf("delite: bitmap: width %d is not a multiple of 4: %w", ih.Width, ErrEncoding)
	}
	imageSize := int64(ih.Width) * int64(ih.Height)
	if int64(ih.ImageSize) != imageSize {
		return fmt.Errorf("delite: bitmap: image size %d does not match %dx%d: %w", ih.ImageSize, ih.Width, ih.Height, ErrEncoding)
	}
	if int64(len(b.Pix)) != imageSize {
		return fmt.Errorf("delite: bitmap: %d pixel bytes for a %dx%d image: %w", len(b.Pix), ih.Width, ih.Height, ErrEncoding)
	}
	wantOffset := int64(fileHeaderSize) + int64(ih.HeaderSize) + 4*int64(ih.ColorsUsed)
	if int64(fh.PixelDataOffset) != wantOffset {
		return fmt.Errorf("delite: bitmap: pixel data offset %d, want %d: %w", fh.PixelDataOffset, wantOffset, ErrEncoding)
	}
	if int64(fh.FileSize) != wantOffset+imageSize {
		return fmt.Errorf("delite: bitmap: file size %d, want %d: %w", fh.FileSize, wantOffset+imageSize, ErrEncoding)
	}
	return nil
}

// Serialize lays the container out as one contiguous byte sequence: file
// header, info header, color table, pixel rows. Every multi-byte field is
// written little-endian at its documented offset.
//
// Rows are emitted bottom to top, as the container format stores them: the
// last row of Pix goes out first. With the width constrained to a multiple
// of 4 the stride equals the width, so no padding bytes are written.
func (b *Bitmap) Serialize() ([]byte, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	out := make([]byte, b.FileHeader.FileSize)

	out[offSignature] = b.FileHeader.Signature[0]
	out[offSignature+1] = b.FileHeader.Signature[1]
	binary.LittleEndian.PutUint32(out[offFileSize:], b.FileHeader.FileSize)
	binary.LittleEndian.PutUint32(out[offReserved:], b.FileHeader.Reserved)
	binary.LittleEndian.PutUint32(out[offPixelData:], b.FileHeader.PixelDataOffset)

	binary.LittleEndian.PutUint32(out[offHeaderSize:], b.InfoHeader.HeaderSize)
	binary.LittleEndian.PutUint32(out[offWidth:], uint32(b.InfoHeader.Width))
	binary.LittleEndian.PutUint32(out[offHeight:], uint32(b.InfoHeader.Height))
	binary.LittleEndian.PutUint16(out[offPlanes:], b.InfoHeader.Planes)
	binary.LittleEndian.PutUint16(out[offBitDepth:], b.InfoHeader.BitDepth)
	binary.LittleEndian.PutUint32(out[offCompression:], b.InfoHeader.Compression)
	binary.LittleEndian.PutUint32(out[offImageSize:], b.InfoHeader.ImageSize)
	binary.LittleEndian.PutUint32(out[offXPels:], uint32(b.InfoHeader.XPelsPerMeter))
	binary.LittleEndian.PutUint32(out[offYPels:], uint32(b.InfoHeader.YPelsPerMeter))
	binary.LittleEndian.PutUint32(out[offColorsUsed:], b.InfoHeader.ColorsUsed)
	binary.LittleEndian.PutUint32(out[offImportant:], b.InfoHeader.ImportantColors)

	// Color table: 4 bytes per entry, blue channel first.
	for i, e := range b.Colors {
		off := offColorTable + i*4
		out[off] = e.B
		out[off+1] = e.G
		out[off+2] = e.R
		out[off+3] = e.Reserved
	}

	w, h := b.Width(), b.Height()
	off := int(b.FileHeader.PixelDataOffset)
	for y := h - 1; y >= 0; y-- {
		copy(out[off:off+w], b.Pix[y*w:(y+1)*w])
		off += w
	}

	return out, nil
}

// WriteTo serializes the container and writes it to w.
func (b *Bitmap) WriteTo(w io.Writer) (int64, error) {
	data, err := b.Serialize()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// DecodeBitmap parses a serialized container back into its in-memory form.
// It accepts exactly the dialect Serialize emits: 8-bit depth, one plane,
// no compression, a full 256-entry color table, and bottom-up rows. The
// returned Pix is in reading order, row 0 at the top.
func DecodeBitmap(data []byte) (*Bitmap, error) {
	if len(data) < pixelDataOffset {
		return nil, fmt.Errorf("delite: bitmap: %d bytes is shorter than the %d-byte header block: %w", len(data), pixelDataOffset, ErrEncoding)
	}
	if data[offSignature] != 'B' || data[offSignature+1] != 'M' {
		return nil, fmt.Errorf("delite: bitmap: signature %q is not \"BM\": %w", data[offSignature:offSignature+2], ErrEncoding)
	}

	fh := BitmapFileHeader{
		Signature:       [2]byte{data[offSignature], data[offSignature+1]},
		FileSize:        binary.LittleEndian.Uint32(data[offFileSize:]),
		Reserved:        binary.LittleEndian.Uint32(data[offReserved:]),
		PixelDataOffset: binary.LittleEndian.Uint32(data[offPixelData:]),
	}
	ih := BitmapInfoHeader{
		HeaderSize:      binary.LittleEndian.Uint32(data[offHeaderSize:]),
		Width:           int32(binary.LittleEndian.Uint32(data[offWidth:])),
		Height:          int32(binary.LittleEndian.Uint32(data[offHeight:])),
		Planes:          binary.LittleEndian.Uint16(data[offPlanes:]),
		BitDepth:        binary.LittleEndian.Uint16(data[offBitDepth:]),
		Compression:     binary.LittleEndian.Uint32(data[offCompression:]),
		ImageSize:       binary.LittleEndian.Uint32(data[offImageSize:]),
		XPelsPerMeter:   int32(binary.LittleEndian.Uint32(data[offXPels:])),
		YPelsPerMeter:   int32(binary.LittleEndian.Uint32(data[offYPels:])),
		ColorsUsed:      binary.LittleEndian.Uint32(data[offColorsUsed:]),
		ImportantColors: binary.LittleEndian.Uint32(data[offImportant:]),
	}

	if ih.HeaderSize != infoHeaderSize {
		return nil, fmt.Errorf("delite: bitmap: info header size %d is not the supported %d: %w", ih.HeaderSize, infoHeaderSize, ErrEncoding)
	}
	if ih.Planes != 1 || ih.BitDepth != 8 || ih.Compression != 0 {
		return nil, fmt.Errorf("delite: bitmap: planes=%d depth=%d compression=%d is not the 8-bit uncompressed dialect: %w",
			ih.Planes, ih.BitDepth, ih.Compression, ErrEncoding)
	}
	if ih.ColorsUsed != 256 {
		return nil, fmt.Errorf("delite: bitmap: %d palette entries, want 256: %w", ih.ColorsUsed, ErrEncoding)
	}

	w, h := int(ih.Width), int(ih.Height)
	if w <= 0 || h <= 0 || w%4 != 0 {
		return nil, fmt.Errorf("delite: bitmap: dimensions %dx%d: %w", ih.Width, ih.Height, ErrInvalidGeometry)
	}
	if int64(fh.PixelDataOffset) != int64(pixelDataOffset) {
		return nil, fmt.Errorf("delite: bitmap: pixel data offset %d, want %d: %w", fh.PixelDataOffset, pixelDataOffset, ErrEncoding)
	}
	need := int64(fh.PixelDataOffset) + int64(w)*int64(h)
	if int64(len(data)) < need {
		return nil, fmt.Errorf("delite: bitmap: truncated: %d bytes, rows need %d: %w", len(data), need, ErrEncoding)
	}

	var colors Palette
	for i := range colors {
		off := offColorTable + i*4
		colors[i] = PaletteEntry{B: data[off], G: data[off+1], R: data[off+2], Reserved: data[off+3]}
	}

	// Rows arrive bottom-up; flip them back into reading order.
	pix := make([]uint8, w*h)
	src := int(fh.PixelDataOffset)
	for y := h - 1; y >= 0; y-- {
		copy(pix[y*w:(y+1)*w], data[src:src+w])
		src += w
	}

	return &Bitmap{FileHeader: fh, InfoHeader: ih, Colors: colors, Pix: pix}, nil
}
