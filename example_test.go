package delite_test

import (
	"context"
	"fmt"

	"github.com/shamspias/delite"
)

func ExampleAdjustFile() {
	opts := delite.DefaultOptions() // 50 brightest samples, attenuated 50%

	result, err := delite.AdjustFile("scan.bin", "out.bmp", opts)
	if err != nil {
		panic(err)
	}
	fmt.Println(result)
}

func ExampleAdjust() {
	raw, _, err := delite.ReadSamples("scan.bin")
	if err != nil {
		panic(err)
	}

	opts := delite.DefaultOptions()
	opts.PixelCount = 200
	opts.Level = 75

	result, err := delite.Adjust(raw, opts)
	if err != nil {
		panic(err)
	}
	fmt.Printf("attenuated %d samples, peak %d -> %d\n",
		result.AdjustedCount, result.PeakBefore, result.PeakAfter)
}

func ExampleAdjustBytes() {
	// Common server-side pattern: receive bytes, adjust, return bytes.
	inputData := []byte{} // ... from HTTP request, S3, etc.

	result, err := delite.AdjustBytes(inputData, delite.DefaultOptions())
	if err != nil {
		panic(err)
	}

	previewData := result.Bytes() // Ready to write to response or storage.
	_ = previewData
}

func ExampleAnalyzeExposure() {
	raw, _, err := delite.ReadSamples("scan.bin")
	if err != nil {
		panic(err)
	}

	stats := delite.AnalyzeExposure(raw)
	fmt.Printf("Clipped: %d samples (%.1f%%), recommended: -p %d -l %d\n",
		stats.ClippedCount, stats.ClippedFraction*100,
		stats.RecommendedPixelCount, stats.RecommendedLevel)
}

func ExampleSelectAndAdjust() {
	pix := []uint16{1000, 50000, 3000}

	n, err := delite.SelectAndAdjust(pix, 1, 50)
	if err != nil {
		panic(err)
	}
	fmt.Println(n, pix)
	// Output: 1 [1000 25000 3000]
}

func ExampleBuildGrayscaleBitmap() {
	pix := make([]uint8, 16) // a 4x4 preview
	for i := range pix {
		pix[i] = uint8(i * 16)
	}

	bmp, err := delite.BuildGrayscaleBitmap(pix, 4, 4)
	if err != nil {
		panic(err)
	}
	data, err := bmp.Serialize()
	if err != nil {
		panic(err)
	}
	fmt.Printf("%d bytes, starts %q\n", len(data), data[:2])
	// Output: 1094 bytes, starts "BM"
}

func ExampleAdjustBatch() {
	ctx := context.Background()

	items := []delite.BatchItem{
		{Src: "scan1.bin", PreviewDst: "out/scan1.bmp"},
		{Src: "scan2.bin", PreviewDst: "out/scan2.bmp", AlteredDst: "out/scan2-altered.bin"},
		{Src: "scan3.bin", PreviewDst: "out/scan3.bmp"},
	}

	results := delite.AdjustBatch(ctx, items, delite.BatchOptions{
		Workers:     4,
		DefaultOpts: delite.DefaultOptions(),
		OnItem: func(completed, total int) {
			fmt.Printf("Progress: %d/%d\n", completed, total)
		},
	})

	summary := delite.Summarize(results)
	fmt.Println(summary)
}
