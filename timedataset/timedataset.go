package timedataset

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonMontonic        = errors.New("time feature is not monotonic")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
	ErrCannotInferFreq    = errors.New("cannot infer frequency from time data")
)

// TimeDataset represents a time series storing a slice of time points and values.
// Both must be of the same length and time must be strictly increasing.
type TimeDataset struct {
	T []time.Time `json:"time"`
	Y []float64   `json:"values"`
}

// NewUnivariateDataset returns an instance of a TimeDataset given a time and value slice.
// The input slices are copied.
func NewUnivariateDataset(t []time.Time, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	for i := 1; i < len(t); i++ {
		if !t[i].After(t[i-1]) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMontonic)
		}
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(y))
	copy(tSeries, t)
	copy(ySeries, y)
	return &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}, nil
}

// Len returns the number of observations
func (td *TimeDataset) Len() int {
	if td == nil {
		return 0
	}
	return len(td.Y)
}

func (td *TimeDataset) Copy() *TimeDataset {
	if td == nil {
		return nil
	}
	tSeries := make([]time.Time, len(td.T))
	ySeries := make([]float64, len(td.Y))
	copy(tSeries, td.T)
	copy(ySeries, td.Y)
	return &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}
}

// Split returns two copies of the dataset, the first holding the first n points and
// the second holding the remainder.
func (td *TimeDataset) Split(n int) (*TimeDataset, *TimeDataset, error) {
	if td == nil || n <= 0 || n >= td.Len() {
		return nil, nil, fmt.Errorf("split at %d of %d points, %w", n, td.Len(), ErrNoTrainingData)
	}
	head, err := NewUnivariateDataset(td.T[:n], td.Y[:n])
	if err != nil {
		return nil, nil, err
	}
	tail, err := NewUnivariateDataset(td.T[n:], td.Y[n:])
	if err != nil {
		return nil, nil, err
	}
	return head, tail, nil
}
