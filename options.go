package stldecompose

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aouyang1/go-stldecompose/decompose"
	"github.com/aouyang1/go-stldecompose/linearmodel"
	"github.com/aouyang1/go-stldecompose/loess"
)

var ErrUnknownSmoother = errors.New("unknown trend smoother")

const (
	SmootherLowess     = "lowess"
	SmootherPolynomial = "polynomial"

	// SmootherCustom marks a smoother supplied by the caller. It cannot be rebuilt from a
	// model so LOWESS is used in its place.
	SmootherCustom = "custom"
)

// TrendOptions names the trend smoother so that a model loaded from json refits with the
// same smoother. It is derived from DecomposeOptions.Smoother when the options are
// validated and only used to build a smoother when none is set.
type TrendOptions struct {
	Smoother   string `json:"smoother"`
	Iterations int    `json:"iterations,omitempty"`
	Degree     int    `json:"degree,omitempty"`
}

func newTrendOptions(s decompose.Smoother) *TrendOptions {
	switch sm := s.(type) {
	case *loess.Lowess:
		return &TrendOptions{Smoother: SmootherLowess, Iterations: sm.Iterations()}
	case *linearmodel.PolyTrend:
		return &TrendOptions{Smoother: SmootherPolynomial, Degree: sm.Degree()}
	default:
		return &TrendOptions{Smoother: SmootherCustom}
	}
}

func (t *TrendOptions) smoother() (decompose.Smoother, error) {
	switch t.Smoother {
	case "":
		return loess.New(nil), nil
	case SmootherLowess:
		return loess.New(&loess.Options{Iterations: t.Iterations}), nil
	case SmootherPolynomial:
		p, err := linearmodel.NewPolyTrend(t.Degree)
		if err != nil {
			return nil, err
		}
		return p, nil
	case SmootherCustom:
		slog.Warn("custom trend smoother cannot be restored, falling back to lowess")
		return loess.New(nil), nil
	default:
		return nil, fmt.Errorf("got %q, %w", t.Smoother, ErrUnknownSmoother)
	}
}

// AnomalyOptions configures the Tukey fences used to flag residual anomalies. The fences are
// placed TukeyFactor inner ranges beyond the lower and upper residual percentiles.
type AnomalyOptions struct {
	LowerPercentile float64 `json:"lower_percentile"`
	UpperPercentile float64 `json:"upper_percentile"`
	TukeyFactor     float64 `json:"tukey_factor"`
}

func NewAnomalyOptions() *AnomalyOptions {
	return &AnomalyOptions{
		LowerPercentile: 0.1,
		UpperPercentile: 0.9,
		TukeyFactor:     1.0,
	}
}

// Options configures an STL model
type Options struct {
	DecomposeOptions *decompose.Options `json:"decompose_options"`
	TrendOptions     *TrendOptions      `json:"trend_options,omitempty"`
	AnomalyOptions   *AnomalyOptions    `json:"anomaly_options"`
}

// NewDefaultOptions returns options for a series with the given seasonal period using the
// default decomposition and anomaly settings.
func NewDefaultOptions(period int) *Options {
	return &Options{
		DecomposeOptions: decompose.NewDefaultOptions(period),
		AnomalyOptions:   NewAnomalyOptions(),
	}
}

// validate fills in defaults and checks the decomposition options. The input is not modified.
func (o *Options) validate() (*Options, error) {
	if o == nil {
		return nil, ErrNoOptions
	}
	decompOpt := o.DecomposeOptions
	if decompOpt != nil && decompOpt.Smoother == nil && o.TrendOptions != nil {
		smoother, err := o.TrendOptions.smoother()
		if err != nil {
			return nil, fmt.Errorf("invalid trend options, %w", err)
		}
		withSmoother := *decompOpt
		withSmoother.Smoother = smoother
		decompOpt = &withSmoother
	}
	decompOpt, err := decompOpt.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid decompose options, %w", err)
	}
	anomalyOpt := o.AnomalyOptions
	if anomalyOpt == nil {
		anomalyOpt = NewAnomalyOptions()
	}
	return &Options{
		DecomposeOptions: decompOpt,
		TrendOptions:     newTrendOptions(decompOpt.Smoother),
		AnomalyOptions:   anomalyOpt,
	}, nil
}
