// Package loess implements locally weighted scatterplot smoothing (LOWESS) used to
// estimate the slow varying trend of a series.
package loess

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrNoData          = errors.New("no data to smooth")
	ErrLenMismatch     = errors.New("x and y have different lengths")
	ErrInvalidFraction = errors.New("fit fraction must be in (0, 1]")
	ErrInvalidDelta    = errors.New("delta must be non-negative")
	ErrNonFinite       = errors.New("non-finite position in input")
)

const DefaultIterations = 3

// minRobustScale is the median absolute residual, relative to the mean absolute value of
// the series, below which robustifying passes stop
const minRobustScale = 1e-7

// Options configures the LOWESS smoother
type Options struct {
	// Iterations is the number of robustifying passes after the initial fit. Each pass
	// down weights points with large residuals from the previous pass.
	Iterations int `json:"iterations"`
}

func NewDefaultOptions() *Options {
	return &Options{
		Iterations: DefaultIterations,
	}
}

// Lowess fits a local linear regression around every point using tricube distance
// weights over the nearest frac*n neighbors.
type Lowess struct {
	opt *Options
}

// New returns a LOWESS smoother. If no options are provided a default is used.
func New(opt *Options) *Lowess {
	o := NewDefaultOptions()
	if opt != nil {
		*o = *opt
	}
	if o.Iterations < 0 {
		o.Iterations = 0
	}
	return &Lowess{opt: o}
}

// Iterations returns the number of robustifying passes the smoother runs
func (l *Lowess) Iterations() int {
	if l == nil || l.opt == nil {
		return DefaultIterations
	}
	return l.opt.Iterations
}

// Smooth returns fitted values for y at each x in the input order. frac is the share of
// points used in each local regression and delta is the distance in x within which
// fitted values are linearly interpolated instead of computed with a regression.
// Non-finite values of y are dropped from the fit and come back as NaN.
func (l *Lowess) Smooth(y, x []float64, frac, delta float64) ([]float64, error) {
	if l == nil || l.opt == nil {
		l = New(nil)
	}
	n := len(y)
	if n == 0 {
		return nil, ErrNoData
	}
	if len(x) != n {
		return nil, fmt.Errorf("x has %d points and y has %d points, %w", len(x), n, ErrLenMismatch)
	}
	if !(frac > 0 && frac <= 1) {
		return nil, fmt.Errorf("got %.3f, %w", frac, ErrInvalidFraction)
	}
	if !(delta >= 0) {
		return nil, fmt.Errorf("got %.3f, %w", delta, ErrInvalidDelta)
	}

	order := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if !isFinite(x[i]) {
			return nil, fmt.Errorf("at index %d, %w", i, ErrNonFinite)
		}
		if isFinite(y[i]) {
			order = append(order, i)
		}
	}

	res := make([]float64, n)
	for i := range res {
		res[i] = math.NaN()
	}
	m := len(order)
	if m < n {
		slog.Debug("lowess dropping non-finite values", "dropped", n-m, "points", n)
	}
	if m == 0 {
		return res, nil
	}

	// work on a copy sorted by x and restore the input order at the end
	sort.SliceStable(order, func(i, j int) bool {
		return x[order[i]] < x[order[j]]
	})
	xs := make([]float64, m)
	ys := make([]float64, m)
	for i, idx := range order {
		xs[i] = x[idx]
		ys[i] = y[idx]
	}

	fitted := make([]float64, m)
	if m == 1 {
		fitted[0] = ys[0]
	} else {
		k := int(frac*float64(m) + 1e-10)
		if k < 2 {
			k = 2
		}
		if k > m {
			k = m
		}

		robust := make([]float64, m)
		for i := range robust {
			robust[i] = 1.0
		}
		resid := make([]float64, m)
		minScale := minRobustScale * floats.Norm(ys, 1) / float64(m)

		for iter := 0; iter <= l.opt.Iterations; iter++ {
			fitPass(xs, ys, robust, k, delta, fitted)
			if iter == l.opt.Iterations {
				break
			}

			floats.SubTo(resid, ys, fitted)
			scale := medianAbs(resid)
			slog.Debug("lowess robustifying pass", "iteration", iter+1, "median_abs_residual", scale)
			// residuals are at rounding level, the fit is already exact
			if scale <= minScale {
				break
			}
			bisquareWeights(resid, 6.0*scale, robust)
		}
	}

	for i, idx := range order {
		res[idx] = fitted[i]
	}
	return res, nil
}

// fitPass runs one weighted local regression sweep over sorted xs writing into fitted
func fitPass(xs, ys, robust []float64, k int, delta float64, fitted []float64) {
	n := len(xs)
	left, right := 0, k-1
	last := -1
	i := 0
	for last < n-1 {
		for right+1 < n && xs[i]-xs[left] > xs[right+1]-xs[i] {
			left++
			right++
		}
		fitted[i] = localFit(xs, ys, robust, left, right, i)

		// interpolate any points skipped since the last regression
		if last >= 0 && i-last > 1 {
			x0, x1 := xs[last], xs[i]
			y0, y1 := fitted[last], fitted[i]
			for j := last + 1; j < i; j++ {
				alpha := (xs[j] - x0) / (x1 - x0)
				fitted[j] = alpha*y1 + (1-alpha)*y0
			}
		}
		last = i

		cut := xs[last] + delta
		next := last + 1
		for j := last + 1; j < n && xs[j] <= cut; j++ {
			if xs[j] == xs[last] {
				fitted[j] = fitted[last]
				last = j
			}
			next = j
		}
		if next <= last {
			next = last + 1
		}
		i = next
	}
}

// localFit computes the weighted linear regression over [left, right] evaluated at xs[i]
func localFit(xs, ys, robust []float64, left, right, i int) float64 {
	xi := xs[i]
	radius := math.Max(xi-xs[left], xs[right]-xi)

	var sumW, sumWX, sumWY float64
	var nonzero int
	w := make([]float64, right-left+1)
	for j := left; j <= right; j++ {
		var dw float64
		if radius == 0 {
			dw = 1.0
		} else {
			dw = tricube(math.Abs(xs[j]-xi) / radius)
		}
		wj := dw * robust[j]
		w[j-left] = wj
		if wj > 0 {
			nonzero++
		}
		sumW += wj
		sumWX += wj * xs[j]
		sumWY += wj * ys[j]
	}
	// a single weighted neighbor cannot define a local line
	if sumW <= 0 || nonzero < 2 {
		return ys[i]
	}

	xbar := sumWX / sumW
	ybar := sumWY / sumW

	var num, den float64
	for j := left; j <= right; j++ {
		dx := xs[j] - xbar
		num += w[j-left] * dx * ys[j]
		den += w[j-left] * dx * dx
	}

	// degenerate spread in x, fall back to the weighted mean
	if den <= 1e-12*radius*radius*sumW {
		return ybar
	}
	return ybar + num/den*(xi-xbar)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func tricube(d float64) float64 {
	if d >= 1 {
		return 0
	}
	c := 1 - d*d*d
	return c * c * c
}

func bisquareWeights(resid []float64, h float64, dst []float64) {
	for i, r := range resid {
		u := math.Abs(r) / h
		if u >= 1 {
			dst[i] = 0
			continue
		}
		c := 1 - u*u
		dst[i] = c * c
	}
}

func medianAbs(x []float64) float64 {
	abs := make([]float64, len(x))
	for i, v := range x {
		abs[i] = math.Abs(v)
	}
	sort.Float64s(abs)
	n := len(abs)
	if n%2 == 1 {
		return abs[n/2]
	}
	return (abs[n/2-1] + abs[n/2]) / 2
}
