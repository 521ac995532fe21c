package forecast

import "time"

// SeasonalSuffix is appended to the strategy name when seasonality is added to the forecast
const SeasonalSuffix = "+seasonal"

// Results holds a multi-step forecast. Values is the final forecast, Trend the strategy output
// over the trend component and Seasonal the aligned seasonal profile that was added, if any.
type Results struct {
	Name     string      `json:"name"`
	T        []time.Time `json:"time"`
	Values   []float64   `json:"values"`
	Trend    []float64   `json:"trend"`
	Seasonal []float64   `json:"seasonal,omitempty"`
	Phase    int         `json:"phase"`
}

// Len returns the number of forecast steps
func (r *Results) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Values)
}
