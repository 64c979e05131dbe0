package delite

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// BatchItem represents one raw capture to adjust in a batch operation.
type BatchItem struct {
	// Src is the input capture path.
	Src string
	// PreviewDst is the output preview path.
	PreviewDst string
	// AlteredDst is where this item's adjusted samples are dumped.
	// Empty skips the dump. Batch items never share the single-run
	// AlteredPath option, so concurrent workers cannot clobber one file.
	AlteredDst string
	// Opts are the per-item options. If nil, BatchOptions.DefaultOpts is used.
	Opts *Options
}

// BatchResult holds the result for a single item in a batch.
type BatchResult struct {
	// Item is the original batch item.
	Item BatchItem
	// Result is the adjustment result (nil if Err is non-nil).
	Result *Result
	// Err is any error that occurred.
	Err error
	// Index is the position in the original input slice.
	Index int
}

// BatchOptions configures batch adjustment behavior.
type BatchOptions struct {
	// Workers is the number of concurrent workers. 0 = runtime.NumCPU().
	Workers int
	// DefaultOpts is used for any BatchItem where Opts is nil.
	DefaultOpts Options
	// OnItem is called after each item completes (for progress reporting).
	// It receives the completed count and the total count.
	OnItem func(completed, total int)
}

// AdjustBatch adjusts multiple capture files concurrently using a worker
// pool. Results are returned in the same order as the input items. Each
// run itself stays single-threaded; concurrency exists only across files.
// The context cancels the batch between items: in-flight items finish,
// queued items come back with ctx.Err().
//
// Example:
//
//	items := []delite.BatchItem{
//	    {Src: "scan1.bin", PreviewDst: "out1.bmp"},
//	    {Src: "scan2.bin", PreviewDst: "out2.bmp"},
//	}
//	results := delite.AdjustBatch(ctx, items, delite.BatchOptions{
//	    Workers:     4,
//	    DefaultOpts: delite.DefaultOptions(),
//	})
func AdjustBatch(ctx context.Context, items []BatchItem, batchOpts BatchOptions) []BatchResult {
	if len(items) == 0 {
		return nil
	}

	workers := batchOpts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(items) {
		workers = len(items)
	}

	results := make([]BatchResult, len(items))
	workCh := make(chan int, len(items))
	var wg sync.WaitGroup
	var completed int
	var completedMu sync.Mutex

	// Feed work.
	for i := range items {
		workCh <- i
	}
	close(workCh)

	// Start workers.
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workCh {
				// Check cancellation before starting new work.
				select {
				case <-ctx.Done():
					results[idx] = BatchResult{
						Item:  items[idx],
						Err:   ctx.Err(),
						Index: idx,
					}
					continue
				default:
				}

				item := items[idx]
				opts := batchOpts.DefaultOpts
				if item.Opts != nil {
					opts = *item.Opts
				}
				// The altered dump is always the item's own path.
				opts.AlteredPath = item.AlteredDst

				result, err := AdjustFile(item.Src, item.PreviewDst, opts)
				results[idx] = BatchResult{
					Item:   item,
					Result: result,
					Err:    err,
					Index:  idx,
				}

				if batchOpts.OnItem != nil {
					completedMu.Lock()
					completed++
					c := completed
					completedMu.Unlock()
					batchOpts.OnItem(c, len(items))
				}
			}
		}()
	}

	wg.Wait()
	return results
}

// BatchSummary provides aggregate statistics for a batch operation.
type BatchSummary struct {
	Total         int
	Succeeded     int
	Failed        int
	TotalSamples  int64
	TotalAdjusted int64
}

// Summarize computes aggregate statistics from batch results.
func Summarize(results []BatchResult) BatchSummary {
	s := BatchSummary{Total: len(results)}
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		if r.Result != nil {
			s.TotalSamples += int64(r.Result.InputSamples)
			s.TotalAdjusted += int64(r.Result.AdjustedCount)
		}
	}
	return s
}

// String returns a human-readable batch summary.
func (s BatchSummary) String() string {
	return fmt.Sprintf(
		"Batch: %d/%d succeeded | %d samples seen | %d attenuated",
		s.Succeeded, s.Total, s.TotalSamples, s.TotalAdjusted,
	)
}
