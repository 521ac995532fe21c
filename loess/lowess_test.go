package loess

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func positions(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}

func TestSmoothErrors(t *testing.T) {
	testData := map[string]struct {
		y     []float64
		x     []float64
		frac  float64
		delta float64
		err   error
	}{
		"no data": {
			frac: 0.5,
			err:  ErrNoData,
		},
		"length mismatch": {
			y:    []float64{1, 2},
			x:    []float64{0},
			frac: 0.5,
			err:  ErrLenMismatch,
		},
		"zero fraction": {
			y:    []float64{1, 2},
			x:    []float64{0, 1},
			frac: 0,
			err:  ErrInvalidFraction,
		},
		"fraction above one": {
			y:    []float64{1, 2},
			x:    []float64{0, 1},
			frac: 1.5,
			err:  ErrInvalidFraction,
		},
		"negative delta": {
			y:     []float64{1, 2},
			x:     []float64{0, 1},
			frac:  0.5,
			delta: -1,
			err:   ErrInvalidDelta,
		},
		"nan position": {
			y:    []float64{1, 2},
			x:    []float64{math.NaN(), 1},
			frac: 0.5,
			err:  ErrNonFinite,
		},
		"infinite position": {
			y:    []float64{1, 2},
			x:    []float64{0, math.Inf(1)},
			frac: 0.5,
			err:  ErrNonFinite,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := New(nil).Smooth(td.y, td.x, td.frac, td.delta)
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestSmoothLinear(t *testing.T) {
	n := 60
	x := positions(n)
	y := make([]float64, n)
	for i := range y {
		y[i] = 2.0 + 3.0*x[i]
	}

	testData := map[string]struct {
		frac  float64
		delta float64
	}{
		"small window":          {frac: 0.1, delta: 0},
		"default window":        {frac: 0.6, delta: 0},
		"full window":           {frac: 1.0, delta: 0},
		"interpolated":          {frac: 0.6, delta: 5},
		"interpolate all range": {frac: 0.6, delta: 1000},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := New(nil).Smooth(y, x, td.frac, td.delta)
			require.NoError(t, err)
			assert.InDeltaSlice(t, y, res, 1e-9)
		})
	}
}

func TestSmoothLinearRobustPasses(t *testing.T) {
	testData := map[string]struct {
		n          int
		frac       float64
		iterations int
	}{
		"60 points":           {n: 60, frac: 0.1, iterations: 3},
		"100 points":          {n: 100, frac: 0.1, iterations: 3},
		"many passes":         {n: 60, frac: 0.05, iterations: 10},
		"single robust pass":  {n: 60, frac: 0.1, iterations: 1},
		"no robust pass":      {n: 60, frac: 0.1, iterations: 0},
		"three point windows": {n: 30, frac: 0.1, iterations: 3},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			x := positions(td.n)
			y := make([]float64, td.n)
			for i := range y {
				y[i] = 2.0 + 3.0*x[i]
			}
			res, err := New(&Options{Iterations: td.iterations}).Smooth(y, x, td.frac, 0)
			require.NoError(t, err)
			assert.InDeltaSlice(t, y, res, 1e-9)
		})
	}
}

func TestLocalFitSingleWeightedNeighbor(t *testing.T) {
	xs := []float64{0, 1, 2}
	ys := []float64{0, 10, 20}
	robust := []float64{0, 1, 0}

	// only the middle point carries weight so the point keeps its own value
	assert.Equal(t, 0.0, localFit(xs, ys, robust, 0, 2, 0))
	assert.Equal(t, 20.0, localFit(xs, ys, robust, 0, 2, 2))
	assert.Equal(t, 0.0, localFit(xs, ys, []float64{0, 0, 0}, 0, 2, 0))
}

func TestSmoothSkipsNonFinite(t *testing.T) {
	n := 40
	x := positions(n)
	y := make([]float64, n)
	for i := range y {
		y[i] = 5.0 - 0.5*x[i]
	}
	y[0] = math.NaN()
	y[17] = math.Inf(-1)
	y[30] = math.NaN()

	res, err := New(nil).Smooth(y, x, 0.3, 0)
	require.NoError(t, err)
	require.Len(t, res, n)
	for i := range res {
		switch i {
		case 0, 17, 30:
			assert.True(t, math.IsNaN(res[i]), "index %d", i)
		default:
			assert.InDelta(t, 5.0-0.5*x[i], res[i], 1e-9, "index %d", i)
		}
	}

	res, err = New(nil).Smooth([]float64{math.NaN(), math.NaN()}, []float64{0, 1}, 0.5, 0)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(res[0]))
	assert.True(t, math.IsNaN(res[1]))
}

func TestNewOptions(t *testing.T) {
	opt := &Options{Iterations: -2}
	l := New(opt)
	assert.Equal(t, -2, opt.Iterations)
	assert.Equal(t, 0, l.Iterations())

	opt.Iterations = 5
	assert.Equal(t, 0, l.Iterations())

	assert.Equal(t, DefaultIterations, New(nil).Iterations())

	var nilLowess *Lowess
	assert.Equal(t, DefaultIterations, nilLowess.Iterations())
}

func TestSmoothSinglePoint(t *testing.T) {
	res, err := New(nil).Smooth([]float64{4.2}, []float64{0}, 0.6, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{4.2}, res)
}

func TestSmoothUnsortedInput(t *testing.T) {
	x := []float64{3, 1, 2, 0, 4}
	y := make([]float64, len(x))
	for i := range y {
		y[i] = 1.0 + 2.0*x[i]
	}
	res, err := New(nil).Smooth(y, x, 1.0, 0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, y, res, 1e-9)
}

func TestSmoothDeltaInterpolation(t *testing.T) {
	n := 21
	x := positions(n)
	y := make([]float64, n)
	for i := range y {
		y[i] = x[i] * x[i]
	}

	res, err := New(&Options{Iterations: 0}).Smooth(y, x, 0.3, 1000)
	require.NoError(t, err)

	// only the end points are regressed so the rest lies on the line between them
	slope := (res[n-1] - res[0]) / x[n-1]
	for i := 1; i < n-1; i++ {
		assert.InDelta(t, res[0]+slope*x[i], res[i], 1e-9, "index %d", i)
	}

	exact, err := New(&Options{Iterations: 0}).Smooth(y, x, 0.3, 0)
	require.NoError(t, err)
	assert.InDelta(t, exact[0], res[0], 1e-9)
	assert.InDelta(t, exact[n-1], res[n-1], 1e-9)
}

func TestSmoothRobustIterations(t *testing.T) {
	n := 50
	outlierIdx := 25
	x := positions(n)
	line := make([]float64, n)
	y := make([]float64, n)
	for i := range y {
		line[i] = 1.0 + 0.5*x[i]
		y[i] = line[i]
	}
	y[outlierIdx] += 100

	plain, err := New(&Options{Iterations: 0}).Smooth(y, x, 1.0, 0)
	require.NoError(t, err)
	assert.Greater(t, math.Abs(plain[outlierIdx]-line[outlierIdx]), 1.0)

	robust, err := New(nil).Smooth(y, x, 1.0, 0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, line, robust, 1e-6)
}

func TestTricube(t *testing.T) {
	assert.Equal(t, 1.0, tricube(0))
	assert.Equal(t, 0.0, tricube(1))
	assert.Equal(t, 0.0, tricube(2))
	assert.InDelta(t, math.Pow(1-0.125, 3), tricube(0.5), 1e-12)
}

func TestMedianAbs(t *testing.T) {
	assert.Equal(t, 2.0, medianAbs([]float64{-3, 1, 2}))
	assert.Equal(t, 2.5, medianAbs([]float64{-4, 1, -2, 3}))
}
