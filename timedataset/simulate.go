package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// GenerateT returns n evenly spaced time points ending one interval before the minute
// truncated result of nowFunc.
func GenerateT(n int, interval time.Duration, nowFunc func() time.Time) []time.Time {
	t := make([]time.Time, 0, n)
	ct := time.Unix(nowFunc().Unix()/60*60, 0).Add(-time.Duration(n) * interval).UTC()
	for i := 0; i < n; i++ {
		t = append(t, ct.Add(interval*time.Duration(i)))
	}
	return t
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

func (s Series) Scale(c float64) Series {
	floats.Scale(c, s)
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

// GenerateLinearY generates bias + slope*i for each position i
func GenerateLinearY(n int, bias, slope float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, bias+slope*float64(i))
	}
	return Series(y)
}

// GenerateWaveY generates a sine wave over sample positions with the period expressed in
// number of samples. offset shifts the wave by that many samples.
func GenerateWaveY(n int, amp, period, offset float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, amp*math.Sin(2.0*math.Pi/period*(float64(i)+offset)))
	}
	return Series(y)
}

// GenerateNoise generates normally distributed noise scaled by noiseScale. A nil rng
// uses the package level generator.
func GenerateNoise(n int, noiseScale float64, rng *rand.Rand) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		var val float64
		if rng == nil {
			val = rand.NormFloat64()
		} else {
			val = rng.NormFloat64()
		}
		y = append(y, val*noiseScale)
	}
	return Series(y)
}

// GenerateChange generates a step of bias followed by a linear ramp starting at the
// chpt position.
func GenerateChange(n, chpt int, bias, slope float64) Series {
	y := make([]float64, n)
	for i := chpt; i < n; i++ {
		if i < 0 {
			continue
		}
		y[i] = bias + slope*float64(i-chpt)
	}
	return Series(y)
}
