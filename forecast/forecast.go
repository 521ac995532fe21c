// Package forecast extends a decomposed series forward by repeatedly applying a one step
// strategy to the trend and optionally adding back the seasonal profile.
package forecast

import (
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/go-stldecompose/align"
	"github.com/aouyang1/go-stldecompose/decompose"
	"github.com/aouyang1/go-stldecompose/stats"
	"github.com/aouyang1/go-stldecompose/strategy"
	"github.com/aouyang1/go-stldecompose/timedataset"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrInvalidInput        = errors.New("invalid forecast input")
	ErrCannotInferInterval = errors.New("cannot infer interval from decomposition time")
)

// Forecast predicts steps points past the end of the decomposition. The strategy is applied
// to the trend one step at a time with every prediction appended to the history seen by the
// next step. When opt.IncludeSeasonal is set the seasonal profile is aligned to the most
// recent detrended cycles and added to the trend forecast.
func Forecast(dec *decompose.Decomposition, s strategy.Strategy, steps int, opt *Options) (*Results, error) {
	if dec == nil || dec.Len() == 0 {
		return nil, fmt.Errorf("no decomposition, %w", ErrInvalidInput)
	}
	if s == nil {
		return nil, fmt.Errorf("no strategy, %w", ErrInvalidInput)
	}
	if steps < 1 {
		return nil, fmt.Errorf("steps must be at least 1, got %d, %w", steps, ErrInvalidInput)
	}
	if opt == nil {
		opt = NewDefaultOptions()
	}

	t, err := forwardTime(dec.T, steps)
	if err != nil {
		return nil, err
	}

	trend, err := iterate(dec.Trend, s, steps)
	if err != nil {
		return nil, err
	}

	values := make([]float64, steps)
	copy(values, trend)

	res := &Results{
		Name:   s.Name(),
		T:      t,
		Values: values,
		Trend:  trend,
	}
	if !opt.IncludeSeasonal {
		return res, nil
	}

	profile, phase, err := align.Align(dec.PeriodAverages, dec.Detrended())
	if err != nil {
		return nil, fmt.Errorf("unable to align seasonal profile, %w", err)
	}
	seasonal := stats.Tile(profile, steps)
	floats.Add(res.Values, seasonal)

	res.Seasonal = seasonal
	res.Phase = phase
	res.Name += SeasonalSuffix
	return res, nil
}

// iterate runs the strategy over a buffer sized for the full history and horizon. Each
// prediction is written at the cursor and becomes part of the next window.
func iterate(history []float64, s strategy.Strategy, steps int) ([]float64, error) {
	buf := make([]float64, len(history)+steps)
	cursor := copy(buf, history)
	for ; cursor < len(buf); cursor++ {
		val, err := s.Forecast(buf[:cursor])
		if err != nil {
			return nil, fmt.Errorf("strategy %s failed at step %d, %w", s.Name(), cursor-len(history), err)
		}
		buf[cursor] = val
	}
	return buf[len(history):], nil
}

func forwardTime(t []time.Time, steps int) ([]time.Time, error) {
	res, err := timedataset.TimeSlice(t).Extend(steps)
	if err != nil {
		return nil, fmt.Errorf("series of %d points, %w, %w", len(t), ErrCannotInferInterval, err)
	}
	return res, nil
}

// Evaluate forecasts len(actual) steps past the decomposition and scores the forecast
// against the actual values.
func Evaluate(dec *decompose.Decomposition, s strategy.Strategy, actual []float64, opt *Options) (*Results, *Scores, error) {
	res, err := Forecast(dec, s, len(actual), opt)
	if err != nil {
		return nil, nil, err
	}
	scores, err := NewScores(res.Values, actual)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to score forecast, %w", err)
	}
	return res, scores, nil
}
