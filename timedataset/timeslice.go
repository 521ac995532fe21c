package timedataset

import (
	"math"
	"time"
)

type TimeSlice []time.Time

func (t TimeSlice) StartTime() time.Time {
	var startTime time.Time
	if len(t) < 1 {
		return startTime
	}
	return t[0]
}

func (t TimeSlice) EndTime() time.Time {
	var lastTime time.Time
	if len(t) < 1 {
		return lastTime
	}
	return t[len(t)-1]
}

// EstimateFreq returns the most common spacing between consecutive points, preferring
// the smaller spacing on ties.
func (t TimeSlice) EstimateFreq() (time.Duration, error) {
	if len(t) < 2 {
		return 0, ErrCannotInferFreq
	}

	frequencies := make(map[time.Duration]int)
	for i := 1; i < len(t); i++ {
		delta := t[i].Sub(t[i-1])
		frequencies[delta] += 1
	}

	var maxCnt int
	maxDelta := time.Duration(math.MaxInt64)

	for delta, cnt := range frequencies {
		if cnt > maxCnt || (cnt == maxCnt && delta < maxDelta) {
			maxCnt = cnt
			maxDelta = delta
		}
	}
	return maxDelta, nil
}

// Interval is the spacing between the last two points. This is the canonical spacing
// used when extending the series forward.
func (t TimeSlice) Interval() (time.Duration, error) {
	if len(t) < 2 {
		return 0, ErrCannotInferFreq
	}
	return t[len(t)-1].Sub(t[len(t)-2]), nil
}

// Extend returns n time points following the end of the slice spaced by Interval.
func (t TimeSlice) Extend(n int) ([]time.Time, error) {
	interval, err := t.Interval()
	if err != nil {
		return nil, err
	}
	lastTime := t.EndTime()
	res := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		res = append(res, lastTime.Add(time.Duration(i+1)*interval))
	}
	return res, nil
}
