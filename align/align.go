// Package align finds the phase of a seasonal profile that best matches the most recent
// cycles of a detrended series.
package align

import (
	"errors"
	"fmt"
	"math"

	"github.com/aouyang1/go-stldecompose/stats"
)

var (
	ErrInvalidInput        = errors.New("invalid alignment input")
	ErrInsufficientHistory = errors.New("detrended history must span at least two seasonal periods")
)

// BestPhase returns the offset in [0, len(periodAverages)) whose slice of the detrended
// tail has the largest correlation with the seasonal profile. Offset idx refers to the
// period length slice ending idx points before the end of the tail. Rolling the profile
// by -idx lines it up with the point following the tail. The first strict maximum wins
// ties.
func BestPhase(periodAverages, detrendedTail []float64) (int, error) {
	period := len(periodAverages)
	if period == 0 {
		return 0, fmt.Errorf("empty seasonal profile, %w", ErrInvalidInput)
	}
	n := len(detrendedTail)
	if n < 2*period {
		return 0, fmt.Errorf("got %d points for a period of %d, %w", n, period, ErrInsufficientHistory)
	}

	bestIdx := 0
	maxCorr := math.Inf(-1)
	for idx := 0; idx < period; idx++ {
		end := n - idx
		corr, err := stats.Correlate(detrendedTail[end-period:end], periodAverages)
		if err != nil {
			return 0, err
		}
		if corr > maxCorr {
			maxCorr = corr
			bestIdx = idx
		}
	}
	return bestIdx, nil
}

// Align returns a copy of the seasonal profile rolled so that its first element is the
// expected seasonal value of the point following the detrended tail, along with the
// phase offset used.
func Align(periodAverages, detrendedTail []float64) ([]float64, int, error) {
	phase, err := BestPhase(periodAverages, detrendedTail)
	if err != nil {
		return nil, 0, err
	}
	return stats.Roll(periodAverages, -phase), phase, nil
}
