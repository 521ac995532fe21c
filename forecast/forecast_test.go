package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/aouyang1/go-stldecompose/align"
	"github.com/aouyang1/go-stldecompose/decompose"
	"github.com/aouyang1/go-stldecompose/stats"
	"github.com/aouyang1/go-stldecompose/strategy"
	"github.com/aouyang1/go-stldecompose/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

func hourly(n int) []time.Time {
	t := make([]time.Time, n)
	for i := range t {
		t[i] = t0.Add(time.Duration(i) * time.Hour)
	}
	return t
}

// newDecomposition assembles a decomposition with no residual from a trend and a profile
func newDecomposition(trend, periodAverages []float64) *decompose.Decomposition {
	n := len(trend)
	seasonal := stats.Tile(periodAverages, n)
	observed := make([]float64, n)
	for i := range observed {
		observed[i] = trend[i] + seasonal[i]
	}
	return &decompose.Decomposition{
		T:              hourly(n),
		Observed:       observed,
		Trend:          trend,
		Seasonal:       seasonal,
		Residual:       make([]float64, n),
		PeriodAverages: periodAverages,
	}
}

func TestForecast(t *testing.T) {
	ramp := []float64{1, 2, 3, 4, 5, 6}
	flat := []float64{10, 10, 10, 10, 10, 10}

	testData := map[string]struct {
		dec      *decompose.Decomposition
		strategy strategy.Strategy
		steps    int
		opt      *Options
		name     string
		expected []float64
		phase    int
	}{
		"naive single step": {
			dec:      newDecomposition(ramp, []float64{0}),
			strategy: strategy.Naive(),
			steps:    1,
			name:     "naive",
			expected: []float64{6},
		},
		"naive repeats last trend value": {
			dec:      newDecomposition(ramp, []float64{0}),
			strategy: strategy.Naive(),
			steps:    3,
			opt:      NewDefaultOptions(),
			name:     "naive",
			expected: []float64{6, 6, 6},
		},
		"drift continues the line": {
			dec:      newDecomposition(ramp, []float64{0}),
			strategy: strategy.Drift(3),
			steps:    3,
			name:     "drift",
			expected: []float64{7, 8, 9},
		},
		"moving average feeds on its own predictions": {
			dec:      newDecomposition(ramp, []float64{0}),
			strategy: strategy.MovingAverage(2),
			steps:    3,
			name:     "mean",
			expected: []float64{5.5, 5.75, 5.625},
		},
		"seasonal naive over trend": {
			dec:      newDecomposition(ramp, []float64{0}),
			strategy: strategy.SeasonalNaive(2),
			steps:    4,
			name:     "seasonal_naive",
			expected: []float64{5, 6, 5, 6},
		},
		"seasonal in phase": {
			dec:      newDecomposition(flat, []float64{-1, 1}),
			strategy: strategy.Naive(),
			steps:    3,
			opt:      &Options{IncludeSeasonal: true},
			name:     "naive+seasonal",
			expected: []float64{9, 11, 9},
			phase:    0,
		},
		"seasonal shifted by one": {
			dec:      newDecomposition(flat[:5], []float64{-1, 1}),
			strategy: strategy.Naive(),
			steps:    3,
			opt:      &Options{IncludeSeasonal: true},
			name:     "naive+seasonal",
			expected: []float64{11, 9, 11},
			phase:    1,
		},
		"seasonal over drift": {
			dec:      newDecomposition(ramp, []float64{-2, 0, 2}),
			strategy: strategy.Drift(2),
			steps:    4,
			opt:      &Options{IncludeSeasonal: true},
			name:     "drift+seasonal",
			expected: []float64{5, 8, 11, 8},
			phase:    0,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := Forecast(td.dec, td.strategy, td.steps, td.opt)
			require.NoError(t, err)

			assert.Equal(t, td.name, res.Name)
			assert.Equal(t, td.steps, res.Len())
			assert.InDeltaSlice(t, td.expected, res.Values, 1e-12)
			assert.Equal(t, td.phase, res.Phase)

			require.Len(t, res.T, td.steps)
			last := td.dec.T[len(td.dec.T)-1]
			for i, ts := range res.T {
				assert.Equal(t, last.Add(time.Duration(i+1)*time.Hour), ts)
			}
		})
	}
}

func TestForecastDoesNotModifyDecomposition(t *testing.T) {
	dec := newDecomposition([]float64{1, 2, 3, 4, 5, 6}, []float64{-1, 1})
	trend := append([]float64(nil), dec.Trend...)
	profile := append([]float64(nil), dec.PeriodAverages...)

	_, err := Forecast(dec, strategy.Drift(2), 5, &Options{IncludeSeasonal: true})
	require.NoError(t, err)
	assert.Equal(t, trend, dec.Trend)
	assert.Equal(t, profile, dec.PeriodAverages)
}

func TestForecastUndefined(t *testing.T) {
	dec := newDecomposition([]float64{1, 2, 3, 4, 5, 6}, []float64{-1, 1})

	res, err := Forecast(dec, strategy.MovingAverage(10), 3, &Options{IncludeSeasonal: true})
	require.NoError(t, err)
	for _, v := range res.Values {
		assert.True(t, strategy.IsUndefined(v))
	}
}

func TestForecastErrors(t *testing.T) {
	dec := newDecomposition([]float64{1, 2, 3, 4, 5, 6}, []float64{-1, 1})

	testData := map[string]struct {
		dec      *decompose.Decomposition
		strategy strategy.Strategy
		steps    int
		opt      *Options
		err      error
	}{
		"nil decomposition": {
			strategy: strategy.Naive(),
			steps:    1,
			err:      ErrInvalidInput,
		},
		"nil strategy": {
			dec:   dec,
			steps: 1,
			err:   ErrInvalidInput,
		},
		"zero steps": {
			dec:      dec,
			strategy: strategy.Naive(),
			err:      ErrInvalidInput,
		},
		"single point": {
			dec:      newDecomposition([]float64{1}, []float64{0}),
			strategy: strategy.Naive(),
			steps:    1,
			err:      ErrCannotInferInterval,
		},
		"single point time error": {
			dec:      newDecomposition([]float64{1}, []float64{0}),
			strategy: strategy.Naive(),
			steps:    1,
			err:      timedataset.ErrCannotInferFreq,
		},
		"strategy error": {
			dec:      dec,
			strategy: strategy.Drift(10),
			steps:    1,
			err:      strategy.ErrInvalidInput,
		},
		"short seasonal history": {
			dec:      newDecomposition([]float64{1, 2, 3}, []float64{-1, 1}),
			strategy: strategy.Naive(),
			steps:    1,
			opt:      &Options{IncludeSeasonal: true},
			err:      align.ErrInsufficientHistory,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := Forecast(td.dec, td.strategy, td.steps, td.opt)
			assert.ErrorIs(t, err, td.err)
			assert.Nil(t, res)
		})
	}
}

func TestForecastFromDecompose(t *testing.T) {
	n := 240
	period := 12
	tSeries := timedataset.GenerateT(n, time.Hour, func() time.Time { return t0.Add(time.Duration(n) * time.Hour) })
	y := make(timedataset.Series, n).
		Add(timedataset.GenerateLinearY(n, 5.0, 0.01)).
		Add(timedataset.GenerateWaveY(n, 1.0, float64(period), 0))

	dec, err := decompose.Decompose(tSeries, y, decompose.NewDefaultOptions(period))
	require.NoError(t, err)

	steps := 2 * period
	res, err := Forecast(dec, strategy.Drift(period), steps, &Options{IncludeSeasonal: true})
	require.NoError(t, err)

	expected := make([]float64, steps)
	for i := range expected {
		expected[i] = 5.0 + 0.01*float64(n+i) + math.Sin(2*math.Pi*float64(n+i)/float64(period))
	}
	assert.InDeltaSlice(t, expected, res.Values, 0.3)
}

func TestEvaluate(t *testing.T) {
	dec := newDecomposition([]float64{1, 2, 3, 4, 5, 6}, []float64{0})

	res, scores, err := Evaluate(dec, strategy.Drift(3), []float64{7, 8, 9}, nil)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{7, 8, 9}, res.Values, 1e-12)
	assert.InDelta(t, 0.0, scores.MSE, 1e-12)
	assert.InDelta(t, 0.0, scores.MAPE, 1e-12)
	assert.InDelta(t, 1.0, scores.R2, 1e-12)

	_, _, err = Evaluate(dec, strategy.Naive(), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
