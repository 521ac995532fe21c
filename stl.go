// Package stldecompose fits an additive seasonal-trend decomposition to a regularly sampled
// series and forecasts it forward by extrapolating the trend and reinjecting the seasonal
// profile.
package stldecompose

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/aouyang1/go-stldecompose/decompose"
	"github.com/aouyang1/go-stldecompose/forecast"
	"github.com/aouyang1/go-stldecompose/stats"
	"github.com/aouyang1/go-stldecompose/strategy"
	"github.com/aouyang1/go-stldecompose/timedataset"
	"github.com/go-echarts/go-echarts/v2/components"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrUninitialized       = errors.New("uninitialized stl model")
	ErrNotFit              = errors.New("stl model has not been fit")
	ErrNoOptions           = errors.New("no options provided")
	ErrNoOptionsInModel    = errors.New("no options set in model")
	ErrNoDecomposition     = errors.New("no decomposition set in model")
	ErrInvalidHoldout      = errors.New("holdout must leave at least one point on each side of the split")
	ErrCannotInferInterval = forecast.ErrCannotInferInterval
)

// STL decomposes a series into trend, seasonal and residual components and forecasts from them
type STL struct {
	opt *Options

	trainingData *timedataset.TimeDataset
	dec          *decompose.Decomposition
}

// New creates an STL model. Options are required since the seasonal period cannot be inferred.
func New(opt *Options) (*STL, error) {
	opt, err := opt.validate()
	if err != nil {
		return nil, err
	}
	return &STL{opt: opt}, nil
}

// NewFromModel creates an STL model from a previous call to Model(). The returned model can
// forecast immediately without being fit again.
func NewFromModel(model Model) (*STL, error) {
	if model.Options == nil {
		return nil, ErrNoOptionsInModel
	}
	if model.Decomposition == nil {
		return nil, ErrNoDecomposition
	}
	opt, err := model.Options.validate()
	if err != nil {
		return nil, fmt.Errorf("unable to load model options, %w", err)
	}
	if err := model.Decomposition.Validate(); err != nil {
		return nil, fmt.Errorf("unable to load decomposition, %w", err)
	}

	dec := model.Decomposition.Copy()
	td, err := timedataset.NewUnivariateDataset(dec.T, dec.Observed)
	if err != nil {
		return nil, fmt.Errorf("unable to load training data from decomposition, %w", err)
	}
	return &STL{
		opt:          opt,
		trainingData: td,
		dec:          dec,
	}, nil
}

// Fit decomposes the input series replacing any previous fit
func (s *STL) Fit(t []time.Time, y []float64) error {
	if s == nil {
		return ErrUninitialized
	}
	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return fmt.Errorf("unable to create training dataset, %w", err)
	}
	return s.FitDataset(td)
}

// FitDataset decomposes a validated dataset replacing any previous fit
func (s *STL) FitDataset(td *timedataset.TimeDataset) error {
	if s == nil {
		return ErrUninitialized
	}
	dec, err := decompose.DecomposeDataset(td, s.opt.DecomposeOptions)
	if err != nil {
		return fmt.Errorf("unable to decompose series, %w", err)
	}
	s.trainingData = td.Copy()
	s.dec = dec
	slog.Debug("fit stl model",
		"points", dec.Len(),
		"period", dec.Period(),
		"end_time", timedataset.TimeSlice(dec.T).EndTime(),
	)
	return nil
}

func (s *STL) fitted() error {
	if s == nil {
		return ErrUninitialized
	}
	if s.dec == nil {
		return ErrNotFit
	}
	return nil
}

// Decomposition returns a copy of the fit decomposition
func (s *STL) Decomposition() (*decompose.Decomposition, error) {
	if err := s.fitted(); err != nil {
		return nil, err
	}
	return s.dec.Copy(), nil
}

// TrainingData returns the training data used to fit the current model
func (s *STL) TrainingData() *timedataset.TimeDataset {
	if s == nil || s.trainingData == nil {
		return nil
	}
	return s.trainingData.Copy()
}

// TrendComponent returns the smoothed trend over the training data
func (s *STL) TrendComponent() []float64 {
	if s.fitted() != nil {
		return nil
	}
	return append([]float64(nil), s.dec.Trend...)
}

// SeasonalityComponent returns the tiled seasonal profile over the training data
func (s *STL) SeasonalityComponent() []float64 {
	if s.fitted() != nil {
		return nil
	}
	return append([]float64(nil), s.dec.Seasonal...)
}

// Residuals returns what remains of the training data after removing trend and seasonality
func (s *STL) Residuals() []float64 {
	if s.fitted() != nil {
		return nil
	}
	return append([]float64(nil), s.dec.Residual...)
}

// Fitted returns trend plus seasonality over the training data
func (s *STL) Fitted() []float64 {
	if s.fitted() != nil {
		return nil
	}
	res := make([]float64, s.dec.Len())
	floats.AddTo(res, s.dec.Trend, s.dec.Seasonal)
	return res
}

// Forecast predicts steps points past the end of the training data. Safe for concurrent use
// once the model is fit.
func (s *STL) Forecast(strat strategy.Strategy, steps int, includeSeasonal bool) (*forecast.Results, error) {
	if err := s.fitted(); err != nil {
		return nil, err
	}
	res, err := forecast.Forecast(s.dec, strat, steps, &forecast.Options{IncludeSeasonal: includeSeasonal})
	if err != nil {
		return nil, fmt.Errorf("unable to forecast, %w", err)
	}
	return res, nil
}

// Evaluate holds out the last holdout points of the training data, fits a new decomposition
// on the rest with the same options and scores the forecast over the held out points. The
// current fit is left unchanged.
func (s *STL) Evaluate(strat strategy.Strategy, holdout int, includeSeasonal bool) (*forecast.Results, *forecast.Scores, error) {
	if err := s.fitted(); err != nil {
		return nil, nil, err
	}
	n := s.trainingData.Len()
	if holdout < 1 || holdout >= n {
		return nil, nil, fmt.Errorf("holdout of %d for %d points, %w", holdout, n, ErrInvalidHoldout)
	}
	head, tail, err := s.trainingData.Split(n - holdout)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to split training data, %w", err)
	}
	dec, err := decompose.DecomposeDataset(head, s.opt.DecomposeOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to decompose training head, %w", err)
	}
	res, scores, err := forecast.Evaluate(dec, strat, tail.Y, &forecast.Options{IncludeSeasonal: includeSeasonal})
	if err != nil {
		return nil, nil, fmt.Errorf("unable to evaluate holdout, %w", err)
	}
	return res, scores, nil
}

// Anomalies returns the training points whose residual falls outside the Tukey fences. If no
// options are provided the model's anomaly options are used.
func (s *STL) Anomalies(opt *AnomalyOptions) ([]Anomaly, error) {
	if err := s.fitted(); err != nil {
		return nil, err
	}
	if opt == nil {
		opt = s.opt.AnomalyOptions
	}
	idxs := stats.DetectOutliers(s.dec.Residual, opt.LowerPercentile, opt.UpperPercentile, opt.TukeyFactor)
	res := make([]Anomaly, 0, len(idxs))
	for _, idx := range idxs {
		res = append(res, Anomaly{
			Index:    idx,
			T:        s.dec.T[idx],
			Observed: s.dec.Observed[idx],
			Expected: s.dec.Trend[idx] + s.dec.Seasonal[idx],
			Residual: s.dec.Residual[idx],
		})
	}
	return res, nil
}

// Model generates a serializeable representation of the options and decomposition. This can
// be used to initialize a new STL for forecasting without fitting again.
func (s *STL) Model() (Model, error) {
	if err := s.fitted(); err != nil {
		return Model{}, err
	}
	return Model{
		Options:       s.opt,
		Decomposition: s.dec.Copy(),
	}, nil
}

// PlotOpts configures the forecast drawn by PlotFit. By default the horizon is 10% of the
// training size forecast with the naive strategy, adding seasonality when there is enough
// history to align it.
type PlotOpts struct {
	HorizonCnt      int
	Strategy        strategy.Strategy
	IncludeSeasonal bool
}

func (s *STL) defaultPlotOpts() *PlotOpts {
	return &PlotOpts{
		HorizonCnt:      s.dec.Len() / 10,
		Strategy:        strategy.Naive(),
		IncludeSeasonal: s.dec.Len() >= 2*s.dec.Period(),
	}
}

// PlotFit uses the Apache Echarts library to generate an html page showing the fit and
// forecast, the trend and seasonal components, and the fit residual
func (s *STL) PlotFit(w io.Writer, opt *PlotOpts) error {
	if err := s.fitted(); err != nil {
		return err
	}
	if opt == nil {
		opt = s.defaultPlotOpts()
	}
	horizonCnt := opt.HorizonCnt
	if horizonCnt < 1 {
		horizonCnt = 1
	}
	strat := opt.Strategy
	if strat == nil {
		strat = strategy.Naive()
	}

	forecastRes, err := s.Forecast(strat, horizonCnt, opt.IncludeSeasonal)
	if err != nil {
		return err
	}

	n := s.dec.Len()
	t := make([]time.Time, 0, n+horizonCnt)
	t = append(t, s.dec.T...)
	t = append(t, forecastRes.T...)

	zpad := make([]float64, horizonCnt)
	for i := range zpad {
		zpad[i] = math.NaN()
	}

	trendComp := append(s.TrendComponent(), forecastRes.Trend...)
	seasonComp := s.SeasonalityComponent()
	if forecastRes.Seasonal != nil {
		seasonComp = append(seasonComp, forecastRes.Seasonal...)
	} else {
		seasonComp = append(seasonComp, zpad...)
	}
	residuals := append(s.Residuals(), zpad...)

	page := components.NewPage()
	page.AddCharts(
		LineForecast(s.trainingData, s.Fitted(), forecastRes),
		LineTSeries(
			"Components",
			[]string{"Trend", "Seasonality"},
			t,
			[][]float64{
				trendComp,
				seasonComp,
			},
		),
		LineTSeries(
			"Residual",
			[]string{"Residual"},
			t,
			[][]float64{residuals},
		),
	)
	return page.Render(w)
}
