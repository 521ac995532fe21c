// Package decompose splits a regularly sampled series into trend, seasonal and residual
// components using an additive model, y[t] = trend[t] + seasonal[t] + residual[t].
// The trend is estimated with a local regression smoother and the seasonal component
// is the zero-centered average of the detrended series at each phase of the period.
package decompose

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/aouyang1/go-stldecompose/loess"
	"github.com/aouyang1/go-stldecompose/stats"
	"github.com/aouyang1/go-stldecompose/timedataset"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrInvalidInput        = errors.New("invalid decomposition input")
	ErrSmootherLenMismatch = errors.New("smoother returned a different number of points than the input")
	ErrInconsistent        = errors.New("inconsistent decomposition")
)

const (
	DefaultFitFraction     = 0.6
	DefaultInterpTolerance = 0.01
)

// Smoother fits a slow varying curve through y observed at positions x. frac is the
// share of points used in each local fit and delta the distance in x within which
// linear interpolation replaces a local fit. The output has the same length as y.
type Smoother interface {
	Smooth(y, x []float64, frac, delta float64) ([]float64, error)
}

// Options configures a single decomposition
type Options struct {
	// Period is the most significant periodicity of the series in number of observations,
	// e.g. 7 for weekly cycles in daily data. Periods longer than the series are clamped
	// to the series length.
	Period int `json:"period"`

	// FitFraction is the share of the series used by each local trend regression
	FitFraction float64 `json:"fit_fraction"`

	// InterpTolerance is scaled by the series length to give the smoother's interpolation
	// distance. Larger values trade trend precision for speed on long series.
	InterpTolerance float64 `json:"interp_tolerance"`

	// Smoother estimates the trend. Defaults to LOWESS when nil.
	Smoother Smoother `json:"-"`
}

// NewDefaultOptions returns decomposition options for the given period using the default
// fit fraction, interpolation tolerance and smoother.
func NewDefaultOptions(period int) *Options {
	return &Options{
		Period:          period,
		FitFraction:     DefaultFitFraction,
		InterpTolerance: DefaultInterpTolerance,
	}
}

// Validate checks the options returning a copy with defaults filled in
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return nil, fmt.Errorf("no options, %w", ErrInvalidInput)
	}
	opt := *o
	if opt.Period < 1 {
		return nil, fmt.Errorf("period of %d must be at least 1, %w", opt.Period, ErrInvalidInput)
	}
	if !(opt.FitFraction > 0 && opt.FitFraction <= 1) {
		return nil, fmt.Errorf("fit fraction of %.3f must be in (0, 1], %w", opt.FitFraction, ErrInvalidInput)
	}
	if !(opt.InterpTolerance >= 0) {
		return nil, fmt.Errorf("interpolation tolerance of %.3f must be non-negative, %w", opt.InterpTolerance, ErrInvalidInput)
	}
	if opt.Smoother == nil {
		opt.Smoother = loess.New(nil)
	}
	return &opt, nil
}

// Decomposition holds the aligned components of a decomposed series along with the one
// period seasonal profile. It is never modified after Decompose returns it. Missing
// observations are NaN and leave NaN in the trend, residual and detrended series at the
// same index.
type Decomposition struct {
	T              []time.Time `json:"time"`
	Observed       []float64   `json:"observed"`
	Trend          []float64   `json:"trend"`
	Seasonal       []float64   `json:"seasonal"`
	Residual       []float64   `json:"residual"`
	PeriodAverages []float64   `json:"period_averages"`
}

// Decompose runs the additive decomposition over the time and value slices
func Decompose(t []time.Time, y []float64, opt *Options) (*Decomposition, error) {
	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return nil, fmt.Errorf("unable to create dataset, %w, %w", ErrInvalidInput, err)
	}
	return DecomposeDataset(td, opt)
}

// DecomposeDataset runs the additive decomposition over a validated dataset
func DecomposeDataset(td *timedataset.TimeDataset, opt *Options) (*Decomposition, error) {
	if td.Len() == 0 {
		return nil, fmt.Errorf("empty series, %w", ErrInvalidInput)
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	n := td.Len()
	observed := make([]float64, n)
	copy(observed, td.Y)
	var missing int
	for i, v := range observed {
		if math.IsInf(v, 0) {
			observed[i] = math.NaN()
		}
		if math.IsNaN(observed[i]) {
			missing++
		}
	}
	if missing > 0 {
		slog.Debug("decomposing series with missing observations", "missing", missing, "points", n)
	}
	warnIrregularInterval(timedataset.TimeSlice(td.T))

	positions := make([]float64, n)
	for i := range positions {
		positions[i] = float64(i)
	}

	trend, err := opt.Smoother.Smooth(observed, positions, opt.FitFraction, opt.InterpTolerance*float64(n))
	if err != nil {
		return nil, fmt.Errorf("unable to fit trend, %w", err)
	}
	if len(trend) != n {
		return nil, fmt.Errorf("expected %d trend points, but got %d, %w", n, len(trend), ErrSmootherLenMismatch)
	}

	detrended := make([]float64, n)
	floats.SubTo(detrended, observed, trend)

	period := opt.Period
	if period > n {
		slog.Warn("period is longer than the series, clamping to series length", "period", period, "series_length", n)
		period = n
	}

	periodAverages := make([]float64, period)
	for p := 0; p < period; p++ {
		periodAverages[p] = stats.StridedNanMean(detrended, p, period)
	}
	stats.Center(periodAverages)

	seasonal := stats.Tile(periodAverages, n)
	residual := make([]float64, n)
	floats.SubTo(residual, detrended, seasonal)

	tSeries := make([]time.Time, n)
	copy(tSeries, td.T)

	return &Decomposition{
		T:              tSeries,
		Observed:       observed,
		Trend:          trend,
		Seasonal:       seasonal,
		Residual:       residual,
		PeriodAverages: periodAverages,
	}, nil
}

// warnIrregularInterval logs when the last spacing, which is used to extend the series, is not
// the most common spacing of the series
func warnIrregularInterval(t timedataset.TimeSlice) {
	interval, err := t.Interval()
	if err != nil {
		return
	}
	freq, err := t.EstimateFreq()
	if err != nil {
		return
	}
	if interval != freq {
		slog.Warn("last interval differs from the most common spacing of the series",
			"last_interval", interval,
			"common_interval", freq,
			"end_time", t.EndTime(),
		)
	}
}

// Len returns the number of observations in the decomposition
func (d *Decomposition) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Observed)
}

// Period returns the length of the seasonal profile after clamping
func (d *Decomposition) Period() int {
	if d == nil {
		return 0
	}
	return len(d.PeriodAverages)
}

// Copy returns a deep copy of the decomposition
func (d *Decomposition) Copy() *Decomposition {
	if d == nil {
		return nil
	}
	return &Decomposition{
		T:              append([]time.Time(nil), d.T...),
		Observed:       append([]float64(nil), d.Observed...),
		Trend:          append([]float64(nil), d.Trend...),
		Seasonal:       append([]float64(nil), d.Seasonal...),
		Residual:       append([]float64(nil), d.Residual...),
		PeriodAverages: append([]float64(nil), d.PeriodAverages...),
	}
}

// Detrended returns a new slice of the observed series minus the trend
func (d *Decomposition) Detrended() []float64 {
	if d == nil {
		return nil
	}
	res := make([]float64, len(d.Observed))
	floats.SubTo(res, d.Observed, d.Trend)
	return res
}

// Validate checks that all components are aligned and that the seasonal component is the
// tiled seasonal profile. This is mainly useful for decompositions loaded from a model.
func (d *Decomposition) Validate() error {
	if d == nil || len(d.Observed) == 0 {
		return fmt.Errorf("empty decomposition, %w", ErrInconsistent)
	}
	n := len(d.Observed)
	for name, comp := range map[string]int{
		"time":     len(d.T),
		"trend":    len(d.Trend),
		"seasonal": len(d.Seasonal),
		"residual": len(d.Residual),
	} {
		if comp != n {
			return fmt.Errorf("%s has %d points, expected %d, %w", name, comp, n, ErrInconsistent)
		}
	}
	period := len(d.PeriodAverages)
	if period < 1 || period > n {
		return fmt.Errorf("seasonal profile of length %d for %d points, %w", period, n, ErrInconsistent)
	}
	for i := 0; i < n; i++ {
		if !sameValue(d.Seasonal[i], d.PeriodAverages[i%period]) {
			return fmt.Errorf("seasonal component differs from profile at index %d, %w", i, ErrInconsistent)
		}
	}
	return nil
}

// sameValue compares two values treating NaN as equal to NaN
func sameValue(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return a == b
}
