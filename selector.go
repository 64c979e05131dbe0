package delite

import "fmt"

// SelectAndAdjust attenuates the pixelCount brightest samples of pix in place.
// level is the attenuation strength in percent: each selected sample v becomes
// trunc(v * (1 - level/100)), so 0 keeps the value exactly and 100 zeroes it.
//
// Selection scans rather than sorts. Each round walks every not-yet-adjusted
// index, finds the maximum with a strict > comparison (ties always land on the
// lowest index), attenuates it, and marks it so later rounds skip it. Sorting
// would find the same values with fewer comparisons, but it costs a full copy
// of the buffer and loses the exact round-by-round order; for tens of targets
// in a buffer of thousands the O(rounds * samples) scan is negligible.
//
// Rounds stop early once every sample has been adjusted, so asking for more
// adjustments than the buffer holds is fine: the effective count clamps to
// len(pix). The marker state lives and dies inside this call; concurrent runs
// on distinct buffers do not interfere.
//
// Returns the number of samples actually attenuated.
func SelectAndAdjust(pix []uint16, pixelCount, level int) (int, error) {
	if len(pix) == 0 {
		return 0, fmt.Errorf("delite: select: zero-length sample buffer: %w", ErrInvalidArgument)
	}
	if pixelCount < 0 {
		return 0, fmt.Errorf("delite: select: pixel count %d is negative: %w", pixelCount, ErrInvalidArgument)
	}
	if level < 0 || level > 100 {
		return 0, fmt.Errorf("delite: select: adjustment level %d out of range [0,100]: %w", level, ErrInvalidArgument)
	}

	factor := 1 - float64(level)/100
	adjusted := make([]bool, len(pix))

	done := 0
	for ; done < pixelCount; done++ {
		best := -1
		var bestVal uint16
		for i, v := range pix {
			if adjusted[i] {
				continue
			}
			if best < 0 || v > bestVal {
				best, bestVal = i, v
			}
		}
		if best < 0 {
			// Every sample is already adjusted. Defined early stop, not an error.
			break
		}

		// Float multiply, then truncation toward zero. The factor is in [0,1],
		// so values only ever decrease and can never overflow 16 bits.
		pix[best] = uint16(float64(bestVal) * factor)
		adjusted[best] = true
	}
	return done, nil
}

// peak returns the maximum sample value, 0 for an empty buffer.
func peak(pix []uint16) uint16 {
	var max uint16
	for _, v := range pix {
		if v > max {
			max = v
		}
	}
	return max
}
