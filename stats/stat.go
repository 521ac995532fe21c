// Package stats contains the slice helpers shared by decomposition and forecasting:
// NaN aware averaging, correlation, cyclic rolls and tiling, and outlier detection.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrLenMismatch = errors.New("slices have different lengths")

// NanMean returns the mean of all non-NaN values. NaN is returned when every value is NaN.
func NanMean(x []float64) float64 {
	var sum float64
	var cnt int
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		cnt++
	}
	if cnt == 0 {
		return math.NaN()
	}
	return sum / float64(cnt)
}

// StridedNanMean returns the NaN ignoring mean of x[start], x[start+stride], ...
func StridedNanMean(x []float64, start, stride int) float64 {
	var sum float64
	var cnt int
	for i := start; i < len(x); i += stride {
		if math.IsNaN(x[i]) {
			continue
		}
		sum += x[i]
		cnt++
	}
	if cnt == 0 {
		return math.NaN()
	}
	return sum / float64(cnt)
}

// Center subtracts the mean of the non-NaN values of x from every element in place and
// returns x. NaN values stay NaN.
func Center(x []float64) []float64 {
	if len(x) == 0 {
		return x
	}
	mean := NanMean(x)
	if math.IsNaN(mean) {
		return x
	}
	floats.AddConst(-mean, x)
	return x
}

// Correlate computes the zero lag cross-correlation of two equal length slices, i.e.
// their dot product.
func Correlate(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("got lengths %d and %d, %w", len(a), len(b), ErrLenMismatch)
	}
	return floats.Dot(a, b), nil
}

// Roll returns a copy of x cyclically shifted by shift positions so that
// res[(i+shift) mod n] = x[i]. A negative shift rotates towards the front.
func Roll(x []float64, shift int) []float64 {
	n := len(x)
	res := make([]float64, n)
	if n == 0 {
		return res
	}
	shift %= n
	if shift < 0 {
		shift += n
	}
	copy(res[shift:], x[:n-shift])
	copy(res[:shift], x[n-shift:])
	return res
}

// Tile repeats x until it reaches length n, truncating the final repetition
func Tile(x []float64, n int) []float64 {
	if n <= 0 || len(x) == 0 {
		return []float64{}
	}
	res := make([]float64, n)
	for filled := 0; filled < n; {
		filled += copy(res[filled:], x)
	}
	return res
}

// DetectOutliers returns the indices of values outside the Tukey fences computed from the
// lower and upper percentiles of y. NaN values are never reported.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	yCopy := make([]float64, 0, len(y))
	for _, v := range y {
		if !math.IsNaN(v) {
			yCopy = append(yCopy, v)
		}
	}
	if len(yCopy) == 0 {
		return nil
	}
	sort.Float64s(yCopy)
	lower := stat.Quantile(lowerPerc, stat.Empirical, yCopy, nil)
	upper := stat.Quantile(upperPerc, stat.Empirical, yCopy, nil)
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if math.IsNaN(y[i]) {
			continue
		}
		if y[i] > upper || y[i] < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}
