package delite

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// ClipThreshold is the sample value from which the 8-bit preview reads as
// pure white: everything at or above it keeps a high byte of 255.
const ClipThreshold uint16 = 0xFF00

// ExposureStats describes the intensity distribution of a sample buffer.
type ExposureStats struct {
	// Samples is the number of 16-bit samples analyzed.
	Samples int

	// Min and Max are the darkest and brightest sample values.
	Min, Max uint16

	// Mean and StdDev describe the overall intensity distribution.
	Mean, StdDev float64

	// Median and P99 are the 50th and 99th percentile sample values.
	Median, P99 float64

	// ClippedCount is how many samples sit at or above ClipThreshold and
	// therefore read as pure white in the preview. ClippedFraction is the
	// same count as a fraction of all samples.
	ClippedCount    int
	ClippedFraction float64

	// RecommendedPixelCount is the pixel count that touches every clipped
	// sample.
	RecommendedPixelCount int

	// RecommendedLevel is the attenuation percent that pulls the brightest
	// sample down to roughly the median.
	RecommendedLevel int
}

// AnalyzeExposure computes intensity statistics over a sample buffer to
// inform the pixel-count and level choices before an adjustment run.
// Analysis is advisory: an empty buffer yields zero-valued stats, not an
// error.
func AnalyzeExposure(pix []uint16) ExposureStats {
	stats := ExposureStats{Samples: len(pix)}
	if len(pix) == 0 {
		return stats
	}

	xs := make([]float64, len(pix))
	min, max := pix[0], pix[0]
	clipped := 0
	for i, v := range pix {
		xs[i] = float64(v)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		if v >= ClipThreshold {
			clipped++
		}
	}

	stats.Min, stats.Max = min, max
	stats.ClippedCount = clipped
	stats.ClippedFraction = float64(clipped) / float64(len(pix))
	stats.Mean, stats.StdDev = stat.MeanStdDev(xs, nil)

	// Quantile wants the samples sorted ascending.
	slices.Sort(xs)
	stats.Median = stat.Quantile(0.5, stat.Empirical, xs, nil)
	stats.P99 = stat.Quantile(0.99, stat.Empirical, xs, nil)

	stats.RecommendedPixelCount = clipped
	stats.RecommendedLevel = recommendLevel(stats.Median, float64(max))
	return stats
}

// recommendLevel solves peak * (1 - level/100) = median for level: the
// attenuation that lands the brightest sample near the middle of the
// distribution instead of merely dimming it.
func recommendLevel(median, max float64) int {
	if max <= 0 {
		return 0
	}
	level := int(math.Round(100 * (1 - median/max)))
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	return level
}
