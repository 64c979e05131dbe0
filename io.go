package delite

import (
	"encoding/binary"
	"fmt"
	"os"
)

// decodeSamples converts an even-length stream. Callers validate the length.
func decodeSamples(data []byte) []uint16 {
	pix := make([]uint16, len(data)/2)
	for i := range pix {
		pix[i] = binary.LittleEndian.Uint16(data[i*2:])
	}
	return pix
}

// SamplesFromBytes reinterprets a raw byte stream as 16-bit samples, two
// little-endian bytes per sample. The stream must hold a whole number of
// samples.
func SamplesFromBytes(data []byte) ([]uint16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("delite: raw stream of %d bytes is not a whole number of 16-bit samples: %w", len(data), ErrInvalidArgument)
	}
	return decodeSamples(data), nil
}

// SamplesToBytes serializes samples back into the raw little-endian stream,
// the exact inverse of SamplesFromBytes. The output is always twice the
// sample count, so an adjusted buffer writes back at the input's length.
func SamplesToBytes(pix []uint16) []byte {
	data := make([]byte, len(pix)*2)
	for i, v := range pix {
		binary.LittleEndian.PutUint16(data[i*2:], v)
	}
	return data
}

// ReadSamples reads a whole raw capture file and reinterprets it as 16-bit
// samples. Returns the samples and the file's byte size. The path must name
// a regular file; directories and devices are rejected before any read.
func ReadSamples(filename string) ([]uint16, int64, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, 0, fmt.Errorf("delite: stat %q: %w", filename, err)
	}
	if !info.Mode().IsRegular() {
		return nil, 0, fmt.Errorf("delite: %q is not a regular file: %w", filename, ErrInvalidArgument)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, 0, fmt.Errorf("delite: read %q: %w", filename, err)
	}
	if len(data)%2 != 0 {
		return nil, 0, fmt.Errorf("delite: %q holds %d bytes, not a whole number of 16-bit samples: %w", filename, len(data), ErrInvalidArgument)
	}
	return decodeSamples(data), int64(len(data)), nil
}

// WriteSamples writes samples to a file as the raw little-endian stream.
func WriteSamples(filename string, pix []uint16) error {
	if err := os.WriteFile(filename, SamplesToBytes(pix), 0644); err != nil {
		return fmt.Errorf("delite: write %q: %w", filename, err)
	}
	return nil
}
