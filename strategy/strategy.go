// Package strategy provides one-step-ahead forecasting functions that consume a trailing
// window of a series and return a single predicted value for the next point.
package strategy

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrInvalidInput        = errors.New("invalid strategy parameters")
	ErrInsufficientHistory = errors.New("window is shorter than the strategy requires")
)

const (
	NameNaive         = "naive"
	NameSeasonalNaive = "seasonal_naive"
	NameMean          = "mean"
	NameDrift         = "drift"
)

// Undefined is the forecast returned when a strategy does not have enough data yet but
// the shortfall is expected, e.g. a moving average warming up. It is NaN.
var Undefined = math.NaN()

// IsUndefined reports whether a forecast value is the Undefined sentinel
func IsUndefined(v float64) bool {
	return math.IsNaN(v)
}

// Strategy produces a single forecast from a window of history ordered in time
type Strategy interface {
	Name() string
	Forecast(window []float64) (float64, error)
}

// Func is a one-step forecasting function over a trailing window
type Func func(window []float64) (float64, error)

type namedFunc struct {
	name string
	fn   Func
}

func (n namedFunc) Name() string {
	return n.name
}

func (n namedFunc) Forecast(window []float64) (float64, error) {
	return n.fn(window)
}

// New wraps a forecasting function with a name
func New(name string, fn Func) Strategy {
	return namedFunc{name: name, fn: fn}
}

// Naive forecasts the last value of the window
func Naive() Strategy {
	return New(NameNaive, func(window []float64) (float64, error) {
		if len(window) == 0 {
			return 0, fmt.Errorf("empty window, %w", ErrInsufficientHistory)
		}
		return window[len(window)-1], nil
	})
}

// SeasonalNaive forecasts the value observed n points before the end of the window. n is
// in units of observations, e.g. 7 for weekly cycles in daily data.
func SeasonalNaive(n int) Strategy {
	return New(NameSeasonalNaive, func(window []float64) (float64, error) {
		if n < 1 {
			return 0, fmt.Errorf("seasonal lag of %d must be at least 1, %w", n, ErrInvalidInput)
		}
		if len(window) < n {
			return 0, fmt.Errorf("window of %d points for a lag of %d, %w", len(window), n, ErrInsufficientHistory)
		}
		return window[len(window)-n], nil
	})
}

// MovingAverage forecasts the mean of the last n points. Undefined is returned without an
// error until the window holds n points.
func MovingAverage(n int) Strategy {
	return New(NameMean, func(window []float64) (float64, error) {
		if n < 1 {
			return 0, fmt.Errorf("moving average length of %d must be at least 1, %w", n, ErrInvalidInput)
		}
		if len(window) < n {
			return Undefined, nil
		}
		return stat.Mean(window[len(window)-n:], nil), nil
	})
}

// Drift extrapolates the line through the value n points back and the last value
func Drift(n int) Strategy {
	return New(NameDrift, func(window []float64) (float64, error) {
		if n <= 1 {
			return 0, fmt.Errorf("drift length of %d must be greater than 1, %w", n, ErrInvalidInput)
		}
		if len(window) < n {
			return 0, fmt.Errorf("window of %d points for a drift length of %d, %w", len(window), n, ErrInvalidInput)
		}
		first := window[len(window)-n]
		last := window[len(window)-1]
		slope := (last - first) / float64(n-1)
		return last + slope, nil
	})
}
