// Package linearmodel fits ordinary least squares regressions with QR factorization and
// provides a global polynomial trend smoother built on them.
package linearmodel

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrNoOptions          = errors.New("no initialized model options")
	ErrNoTrainingMatrix   = errors.New("no training matrix")
	ErrTargetLenMismatch  = errors.New("target length does not match training rows")
	ErrNoDesignMatrix     = errors.New("no design matrix for inference")
	ErrFeatureLenMismatch = errors.New("number of features does not match number of model coefficients")
	ErrUnderdetermined    = errors.New("fewer observations than coefficients")
	ErrSingular           = errors.New("training matrix is rank deficient")
)

// singularTol is the smallest magnitude accepted on the diagonal of R
const singularTol = 1e-12

// OLSOptions represents input options to run the OLS Regression
type OLSOptions struct {
	// FitIntercept adds a constant 1.0 feature as the first column if set to true
	FitIntercept bool
}

// Validate runs basic validation on OLS options
func (o *OLSOptions) Validate() (*OLSOptions, error) {
	if o == nil {
		o = NewDefaultOLSOptions()
	}

	return o, nil
}

// NewDefaultOLSOptions returns a default set of OLS Regression options
func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept: true,
	}
}

// OLSRegression computes ordinary least squares using QR factorization
type OLSRegression struct {
	opt       *OLSOptions
	coef      []float64
	intercept float64
}

// NewOLSRegression initializes an ordinary least squares model ready for fitting
func NewOLSRegression(opt *OLSOptions) (*OLSRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &OLSRegression{
		opt: opt,
	}, nil
}

func (o *OLSRegression) withIntercept(x mat.Matrix) mat.Matrix {
	if !o.opt.FitIntercept {
		return x
	}
	m, _ := x.Dims()
	ones := make([]float64, m)
	floats.AddConst(1.0, ones)
	onesMx := mat.NewDense(1, m, ones)

	var xWithOnes mat.Dense
	xWithOnes.Stack(onesMx, x.T())
	return xWithOnes.T()
}

// Fit the model according to the given training data
func (o *OLSRegression) Fit(x mat.Matrix, y []float64) error {
	if o == nil || o.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	m, _ := x.Dims()
	if len(y) != m {
		return fmt.Errorf("training data has %d rows and target has %d values, %w", m, len(y), ErrTargetLenMismatch)
	}

	x = o.withIntercept(x)
	_, n := x.Dims()
	if m < n {
		return fmt.Errorf("%d observations for %d coefficients, %w", m, n, ErrUnderdetermined)
	}

	qr := new(mat.QR)
	qr.Factorize(x)

	q := new(mat.Dense)
	r := new(mat.Dense)

	qr.QTo(q)
	qr.RTo(r)

	// Q^T y, only the first n entries are needed for back substitution against R
	yq := new(mat.VecDense)
	yq.MulVec(q.T(), mat.NewVecDense(m, y))

	c := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		rii := r.At(i, i)
		if math.Abs(rii) < singularTol {
			return fmt.Errorf("zero pivot at column %d, %w", i, ErrSingular)
		}
		c[i] = yq.AtVec(i)
		for j := i + 1; j < n; j++ {
			c[i] -= c[j] * r.At(i, j)
		}
		c[i] /= rii
	}

	if o.opt.FitIntercept {
		o.intercept = c[0]
		o.coef = c[1:]
	} else {
		o.intercept = 0
		o.coef = c
	}

	return nil
}

// Predict using the OLS model
func (o *OLSRegression) Predict(x mat.Matrix) ([]float64, error) {
	if o == nil || o.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}

	coef := o.coef
	if o.opt.FitIntercept {
		coef = append([]float64{o.intercept}, o.coef...)
	}
	x = o.withIntercept(x)

	m, n := x.Dims()
	if n != len(coef) {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, len(coef), ErrFeatureLenMismatch)
	}

	res := mat.NewVecDense(m, nil)
	res.MulVec(x, mat.NewVecDense(n, coef))
	return res.RawVector().Data, nil
}

// Score computes the coefficient of determination of the prediction
func (o *OLSRegression) Score(x mat.Matrix, y []float64) (float64, error) {
	res, err := o.Predict(x)
	if err != nil {
		return 0.0, err
	}
	if len(res) != len(y) {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d values, %w", len(res), len(y), ErrTargetLenMismatch)
	}
	return stat.RSquaredFrom(res, y, nil), nil
}

// Intercept returns the computed intercept if FitIntercept is set to true. Defaults to 0.0 if not set.
func (o *OLSRegression) Intercept() float64 {
	return o.intercept
}

// Coef returns a slice of the trained coefficients in the same order of the training feature Matrix by column.
func (o *OLSRegression) Coef() []float64 {
	c := make([]float64, len(o.coef))
	copy(c, o.coef)
	return c
}
