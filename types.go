package delite

import (
	"errors"
	"fmt"
	"io"
)

// Version is the library version.
const Version = "1.0.0"

// Sentinel errors returned (wrapped) by the library. Match with errors.Is.
var (
	// ErrInvalidArgument reports a parameter outside its documented range,
	// such as an adjustment level beyond [0,100] or an odd-length raw stream.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptyInput reports a sample buffer that is empty, or too small to
	// yield even the minimum 4x4 preview.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidGeometry reports bitmap dimensions the 8-bit container cannot
	// carry without row padding: width must be a positive multiple of 4 and
	// the pixel count must equal width*height.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrEncoding reports a header or layout inconsistency caught while
	// serializing or parsing a bitmap.
	ErrEncoding = errors.New("encoding failed")

	// ErrTooLarge reports an image whose serialized size would overflow the
	// 32-bit file size field, so the output buffer cannot be reserved.
	ErrTooLarge = errors.New("image too large")
)

// PaletteMode selects the color table written into the preview bitmap.
type PaletteMode int

const (
	// Grayscale is the identity ramp: entry i maps to (i, i, i). Default.
	Grayscale PaletteMode = iota
	// Highlight keeps the ramp but blends the brightest entries toward red,
	// so residual clipping glows in the preview.
	Highlight
)

func (m PaletteMode) String() string {
	switch m {
	case Highlight:
		return "Highlight"
	default:
		return "Grayscale"
	}
}

// ProgressStage describes what the pipeline is currently doing.
type ProgressStage string

const (
	StageSelecting   ProgressStage = "selecting"
	StageDownscaling ProgressStage = "downscaling"
	StageEncoding    ProgressStage = "encoding"
	StageWriting     ProgressStage = "writing"
)

// ProgressFunc is called between pipeline stages to report progress.
// stage describes the current operation, percent is 0.0–1.0.
// Return a non-nil error to abort the operation.
type ProgressFunc func(stage ProgressStage, percent float64) error

// Options configures the adjustment pipeline.
type Options struct {
	// PixelCount is how many of the brightest samples to attenuate.
	// 0 leaves the samples untouched; asking for more samples than the
	// buffer holds adjusts every sample and stops.
	PixelCount int

	// Level is the attenuation strength in percent, 0–100. Each selected
	// sample v becomes trunc(v * (1 - Level/100)): 0 keeps the value
	// exactly, 100 zeroes it.
	Level int

	// Palette selects the preview color table (default: Grayscale).
	Palette PaletteMode

	// HighlightThreshold is the first palette index tinted red in Highlight
	// mode. Ignored for Grayscale. 0 means DefaultHighlightThreshold.
	HighlightThreshold uint8

	// Dither enables Floyd–Steinberg error diffusion when quantizing the
	// preview to 8 bits. The adjusted sample dump is never dithered; this
	// trades the exact high-byte mapping for smoother gradients in the
	// preview only. Default: false (plain truncation).
	Dither bool

	// AlteredPath is where AdjustFile dumps the adjusted raw samples.
	// Empty means skip the dump. DefaultOptions sets "altered.bin".
	AlteredPath string

	// OnProgress is called between stages to report progress.
	// Optional. Returning a non-nil error aborts the operation.
	OnProgress ProgressFunc
}

// DefaultOptions returns the defaults the delite command ships with:
// attenuate the 50 brightest samples by 50%.
func DefaultOptions() Options {
	return Options{
		PixelCount:  50,
		Level:       50,
		Palette:     Grayscale,
		AlteredPath: "altered.bin",
	}
}

// validate checks the option ranges shared by every entry point.
func (o *Options) validate() error {
	if o.PixelCount < 0 {
		return fmt.Errorf("delite: pixel count %d is negative: %w", o.PixelCount, ErrInvalidArgument)
	}
	if o.Level < 0 || o.Level > 100 {
		return fmt.Errorf("delite: adjustment level %d out of range [0,100]: %w", o.Level, ErrInvalidArgument)
	}
	return nil
}

// reportProgress safely invokes the progress callback if set.
func (o *Options) reportProgress(stage ProgressStage, percent float64) error {
	if o.OnProgress != nil {
		return o.OnProgress(stage, percent)
	}
	return nil
}

// Result contains the outcome of one adjustment run.
type Result struct {
	// Adjusted is the attenuated sample buffer. It aliases the buffer the
	// pipeline was handed: stage one works in place.
	Adjusted []uint16

	// AdjustedCount is how many samples were actually attenuated. It is
	// min(PixelCount, sample count): short buffers clamp, never fail.
	AdjustedCount int

	// Preview holds the serialized preview bitmap.
	// Use WriteTo to write it to any io.Writer.
	Preview []byte

	// SideLength is the preview square's width and height in pixels.
	SideLength int

	// InputSamples is the number of 16-bit samples processed.
	InputSamples int

	// InputSize is the raw input size in bytes (if known from a file).
	InputSize int64

	// PreviewSize is the serialized preview size in bytes.
	PreviewSize int64

	// PeakBefore and PeakAfter are the brightest sample values observed
	// before and after attenuation.
	PeakBefore, PeakAfter uint16

	// AlteredPath is where the adjusted samples were dumped ("" if skipped).
	AlteredPath string
}

// WriteTo writes the serialized preview bitmap to w.
// These are the exact bytes produced by the encoder, header through rows.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	if len(r.Preview) == 0 {
		return 0, fmt.Errorf("delite: no preview data available")
	}
	n, err := w.Write(r.Preview)
	return int64(n), err
}

// Bytes returns the serialized preview bitmap.
func (r *Result) Bytes() []byte {
	return r.Preview
}

// String returns a human-readable summary of the adjustment run.
func (r *Result) String() string {
	return fmt.Sprintf(
		"Delite Result: %d samples | %d adjusted | peak %d → %d | preview %dx%d (%s)",
		r.InputSamples, r.AdjustedCount,
		r.PeakBefore, r.PeakAfter,
		r.SideLength, r.SideLength,
		humanBytes(r.PreviewSize),
	)
}

// computeStats fills in the derived size fields.
func (r *Result) computeStats() {
	r.InputSamples = len(r.Adjusted)
	r.PreviewSize = int64(len(r.Preview))
}
