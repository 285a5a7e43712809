package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// MovingAverage computes the simple moving average of series over window.
// Entry j of the result is the mean of series[j .. j+window-1], so the result has
// max(0, len(series)-window+1) entries. Each window is summed from scratch, left to right.
func MovingAverage(series []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "moving average window must be at least 1, got %d", window)
	}

	if window > len(series) {
		return []float64{}, nil
	}

	sma := make([]float64, 0, len(series)-window+1)
	for i := window - 1; i < len(series); i++ {
		sma = append(sma, calculateSimpleMovingAverage(series[i-window+1:i+1]))
	}

	return sma, nil
}

// AlignMovingAverage pads sma with window-1 absent values so it lines up with the
// series it was computed from.
func AlignMovingAverage(sma []float64, window int) []optional.Option[float64] {
	padding := max(window-1, 0)

	aligned := make([]optional.Option[float64], 0, padding+len(sma))
	for range padding {
		aligned = append(aligned, optional.None[float64]())
	}

	for _, v := range sma {
		aligned = append(aligned, optional.Some(v))
	}

	return aligned
}

// calculateSimpleMovingAverage returns the arithmetic mean of a non-empty window.
func calculateSimpleMovingAverage(window []float64) float64 {
	sum := 0.0
	for _, v := range window {
		sum += v
	}

	return sum / float64(len(window))
}
