package linearmodel

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var ErrInvalidDegree = errors.New("polynomial degree must be at least 1")

const DefaultDegree = 1

// PolyTrend smooths a series with a single least squares polynomial over the whole range of x.
// It satisfies the same contract as the LOWESS smoother but has no notion of locality, so the
// fraction and interpolation distance are ignored.
type PolyTrend struct {
	degree int
}

// NewPolyTrend returns a polynomial trend smoother of the given degree
func NewPolyTrend(degree int) (*PolyTrend, error) {
	if degree < 1 {
		return nil, fmt.Errorf("got degree %d, %w", degree, ErrInvalidDegree)
	}
	return &PolyTrend{degree: degree}, nil
}

// Degree returns the polynomial degree
func (p *PolyTrend) Degree() int {
	return p.degree
}

// Smooth fits y against powers of x and returns the fitted values in input order.
// Non-finite values of y are left out of the fit and come back as NaN.
func (p *PolyTrend) Smooth(y, x []float64, frac, delta float64) ([]float64, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("x has %d points and y has %d, %w", len(x), len(y), ErrTargetLenMismatch)
	}
	rows := make([]int, 0, len(y))
	for i, v := range y {
		if isFinite(v) {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no finite observations, %w", ErrUnderdetermined)
	}
	design := p.design(x)

	trainX, trainY := design, y
	if len(rows) < len(y) {
		trainX = mat.NewDense(len(rows), p.degree, nil)
		trainY = make([]float64, len(rows))
		for i, r := range rows {
			trainX.SetRow(i, design.RawRowView(r))
			trainY[i] = y[r]
		}
	}

	model, err := NewOLSRegression(NewDefaultOLSOptions())
	if err != nil {
		return nil, err
	}
	if err := model.Fit(trainX, trainY); err != nil {
		return nil, fmt.Errorf("unable to fit polynomial trend of degree %d, %w", p.degree, err)
	}
	r2, err := model.Score(trainX, trainY)
	if err != nil {
		return nil, err
	}
	slog.Debug("fit polynomial trend",
		"degree", p.degree,
		"intercept", model.Intercept(),
		"coef", model.Coef(),
		"r_squared", r2,
	)

	res, err := model.Predict(design)
	if err != nil {
		return nil, err
	}
	for i, v := range y {
		if !isFinite(v) {
			res[i] = math.NaN()
		}
	}
	return res, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// design builds the powers of x rescaled onto [-1, 1] to keep the columns well conditioned
func (p *PolyTrend) design(x []float64) *mat.Dense {
	n := len(x)
	lo, hi := floats.Min(x), floats.Max(x)
	mid := (lo + hi) / 2.0
	half := (hi - lo) / 2.0
	if half == 0 {
		half = 1.0
	}

	data := make([]float64, 0, n*p.degree)
	for _, v := range x {
		scaled := (v - mid) / half
		for d := 1; d <= p.degree; d++ {
			data = append(data, math.Pow(scaled, float64(d)))
		}
	}
	return mat.NewDense(n, p.degree, data)
}
