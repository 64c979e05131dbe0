// Package delite corrects overexposed raw captures. Given a flat buffer of
// unsigned 16-bit intensity samples, it finds the K brightest, attenuates
// each by a percentage, and emits both the full adjusted buffer and an
// 8-bit grayscale preview packed into a legacy palette-based bitmap
// container.
//
// Delite — Dials Excess Light Down. Finds the hottest pixels, turns them
// down a notch.
//
// Unlike a levels or curves tool that remaps every sample, Delite touches
// only the brightest offenders and leaves the rest of the capture alone:
//
//   - Top-K selection without sorting: round order and tie-breaks are exact and reproducible
//   - In-place adjustment: the full-resolution buffer is never copied
//   - Byte-exact container output: documented offsets, little-endian, validated before a single byte is written
//   - Exposure analysis to recommend the pixel count and level
//   - Optional highlight palette and error-diffusion preview
//   - Batch processing: concurrent adjustment with worker pools
package delite

import (
	"fmt"
	"os"
)

// AdjustFile reads a raw capture from src, runs the adjustment pipeline,
// dumps the adjusted samples to opts.AlteredPath (unless empty), and writes
// the serialized preview to previewDst. Nothing is written if any pipeline
// stage fails: the caller gets both outputs or neither.
func AdjustFile(src, previewDst string, opts Options) (*Result, error) {
	raw, size, err := ReadSamples(src)
	if err != nil {
		return nil, err
	}

	result, err := adjustInternal(raw, size, opts)
	if err != nil {
		return nil, err
	}

	if err := opts.reportProgress(StageWriting, 0.9); err != nil {
		return nil, err
	}

	if opts.AlteredPath != "" {
		if err := WriteSamples(opts.AlteredPath, result.Adjusted); err != nil {
			return nil, err
		}
		result.AlteredPath = opts.AlteredPath
	}

	if err := os.WriteFile(previewDst, result.Preview, 0644); err != nil {
		return nil, fmt.Errorf("delite: write %q: %w", previewDst, err)
	}

	if err := opts.reportProgress(StageWriting, 1.0); err != nil {
		return nil, err
	}

	return result, nil
}

// Adjust runs the pipeline over an in-memory sample buffer: attenuate the
// brightest samples in place, downscale to 8 bits, encode the preview.
// raw is mutated by the first stage and aliased by Result.Adjusted.
func Adjust(raw []uint16, opts Options) (*Result, error) {
	return adjustInternal(raw, int64(len(raw))*2, opts)
}

// AdjustBytes runs the pipeline over a raw byte stream, two little-endian
// bytes per sample. This is the server-side shape: receive bytes, adjust,
// hand back a Result whose Adjusted and Preview are ready to store.
func AdjustBytes(data []byte, opts Options) (*Result, error) {
	raw, err := SamplesFromBytes(data)
	if err != nil {
		return nil, err
	}
	return adjustInternal(raw, int64(len(data)), opts)
}

// adjustInternal is the shared pipeline: select and attenuate, downscale,
// encode. Stages run strictly in order on one goroutine; the first failure
// short-circuits and no partial Result escapes.
func adjustInternal(raw []uint16, inputSize int64, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("delite: zero-length sample buffer: %w", ErrInvalidArgument)
	}

	result := &Result{
		Adjusted:   raw,
		InputSize:  inputSize,
		PeakBefore: peak(raw),
	}

	if err := opts.reportProgress(StageSelecting, 0); err != nil {
		return nil, err
	}

	adjusted, err := SelectAndAdjust(raw, opts.PixelCount, opts.Level)
	if err != nil {
		return nil, err
	}
	result.AdjustedCount = adjusted
	result.PeakAfter = peak(raw)

	if err := opts.reportProgress(StageDownscaling, 0.4); err != nil {
		return nil, err
	}

	var pix8 []uint8
	var side int
	if opts.Dither {
		side, err = previewSide(len(raw))
		if err != nil {
			return nil, err
		}
		pix8 = downscaleDithered(raw, side)
	} else {
		pix8, side, err = Downscale(raw)
		if err != nil {
			return nil, err
		}
	}
	result.SideLength = side

	if err := opts.reportProgress(StageEncoding, 0.7); err != nil {
		return nil, err
	}

	bmp, err := BuildPalettedBitmap(pix8, side, side, paletteFor(opts))
	if err != nil {
		return nil, err
	}
	data, err := bmp.Serialize()
	if err != nil {
		return nil, err
	}
	result.Preview = data
	result.computeStats()

	return result, nil
}
