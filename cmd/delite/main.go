// Command delite corrects overexposed raw captures from the command line.
//
// Usage:
//
//	delite -f <input_file> [-p pixel_count] [-l adjustment_level] [-o output_file]
//	delite -analyze -f <input_file>
//
// Examples:
//
//	delite -f scan.bin
//	delite -f scan.bin -p 200 -l 75 -o preview.bmp
//	delite -f scan.bin -highlight -dither
//	delite -analyze -f scan.bin
//	delite -analyze -f preview.bmp
//
// A .env file (or the environment) supplies defaults for the numeric flags:
// DELITE_PIXEL_COUNT, DELITE_LEVEL, DELITE_OUTPUT, DELITE_ALTERED.
// Explicit flags always win.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/shamspias/delite"
)

func main() {
	// Load .env before flag defaults are evaluated.
	_ = godotenv.Load()

	var (
		input     string
		pixels    int
		level     int
		output    string
		altered   string
		analyze   bool
		highlight bool
		ditherOn  bool
		verbose   bool
	)

	flag.StringVar(&input, "f", "", "Input capture file (raw 16-bit little-endian samples)")
	flag.IntVar(&pixels, "p", envInt("DELITE_PIXEL_COUNT", 50), "Number of brightest samples to adjust")
	flag.IntVar(&level, "l", envInt("DELITE_LEVEL", 50), "Adjustment level in percent (0-100)")
	flag.StringVar(&output, "o", envStr("DELITE_OUTPUT", "out.bmp"), "Preview bitmap output path")
	flag.StringVar(&altered, "altered", envStr("DELITE_ALTERED", "altered.bin"), "Adjusted sample dump path (empty skips the dump)")
	flag.BoolVar(&analyze, "analyze", false, "Print exposure statistics without adjusting")
	flag.BoolVar(&highlight, "highlight", false, "Tint residual clipping red in the preview palette")
	flag.BoolVar(&ditherOn, "dither", false, "Quantize the preview with error diffusion")
	flag.BoolVar(&verbose, "v", false, "Verbose stage diagnostics on stderr")
	flag.Parse()

	if input == "" {
		fmt.Fprintln(os.Stderr, "Usage: delite -f <input_file> [-p pixel_count] [-l adjustment_level] [-o output_file]")
		fmt.Fprintln(os.Stderr, "       delite -analyze -f <input_file>")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
		os.Exit(1)
	}

	if analyze {
		runAnalyze(input)
		return
	}

	if level < 0 || level > 100 {
		fmt.Fprintf(os.Stderr, "Adjustment level must be in 0-100, got %d\n", level)
		os.Exit(1)
	}
	if pixels < 0 {
		fmt.Fprintf(os.Stderr, "Pixel count must not be negative, got %d\n", pixels)
		os.Exit(1)
	}

	logger := newLogger(verbose)

	opts := delite.DefaultOptions()
	opts.PixelCount = pixels
	opts.Level = level
	opts.AlteredPath = altered
	opts.Dither = ditherOn
	if highlight {
		opts.Palette = delite.Highlight
	}
	opts.OnProgress = func(stage delite.ProgressStage, percent float64) error {
		logger.Debug("pipeline stage", "stage", string(stage), "done", percent)
		return nil
	}

	result, err := delite.AdjustFile(input, output, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger.Debug("outputs written", "preview", output, "altered", result.AlteredPath)
	fmt.Println(result)
}

// newLogger builds the stderr diagnostics logger. Non-verbose runs keep it
// at Info so the Debug stage chatter stays silent.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

// runAnalyze prints exposure statistics for a raw capture, or container
// facts when pointed at an encoded preview.
func runAnalyze(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
		os.Exit(1)
	}

	if len(data) >= 2 && data[0] == 'B' && data[1] == 'M' {
		analyzeBitmap(path, data)
		return
	}

	pix, err := delite.SamplesFromBytes(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	stats := delite.AnalyzeExposure(pix)

	fmt.Printf("📐 File:        %s\n", path)
	fmt.Printf("💾 Size:        %s\n", humanBytes(int64(len(data))))
	fmt.Printf("🔢 Samples:     %d\n", stats.Samples)
	fmt.Printf("🌗 Range:       %d to %d\n", stats.Min, stats.Max)
	fmt.Printf("📊 Mean:        %.0f (stddev %.0f)\n", stats.Mean, stats.StdDev)
	fmt.Printf("📈 Median/P99:  %.0f / %.0f\n", stats.Median, stats.P99)
	fmt.Printf("☀️  Clipped:     %d (%.2f%%)\n", stats.ClippedCount, stats.ClippedFraction*100)
	fmt.Println()
	fmt.Printf("💡 Recommended pixel count: %d\n", stats.RecommendedPixelCount)
	fmt.Printf("💡 Recommended level:       %d\n", stats.RecommendedLevel)
}

// analyzeBitmap reports the geometry and palette of an encoded preview.
func analyzeBitmap(path string, data []byte) {
	bmp, err := delite.DecodeBitmap(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	isRamp := bmp.Colors == delite.GrayscalePalette()

	fmt.Printf("📐 File:        %s\n", path)
	fmt.Printf("💾 Size:        %s\n", humanBytes(int64(len(data))))
	fmt.Printf("📏 Dimensions:  %d x %d, 8-bit\n", bmp.Width(), bmp.Height())
	fmt.Printf("🎨 Palette:     256 entries, identity ramp: %v\n", isRamp)
	fmt.Printf("🔲 Pixel bytes: %d\n", len(bmp.Pix))
}

// envStr returns the environment variable's value, or def when unset.
func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt parses an integer environment variable, or returns def when unset
// or unparsable.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// humanBytes formats a byte count for human reading.
func humanBytes(b int64) string {
	switch {
	case b >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(b)/(1024*1024))
	case b >= 1024:
		return fmt.Sprintf("%.1f KB", float64(b)/1024)
	default:
		return fmt.Sprintf("%d B", b)
	}
}
