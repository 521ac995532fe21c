package decompose

import (
	"math"
	"time"

	"github.com/goccy/go-json"
)

// decompositionJSON mirrors Decomposition with missing values encoded as null since json has
// no NaN
type decompositionJSON struct {
	T              []time.Time `json:"time"`
	Observed       []*float64  `json:"observed"`
	Trend          []*float64  `json:"trend"`
	Seasonal       []*float64  `json:"seasonal"`
	Residual       []*float64  `json:"residual"`
	PeriodAverages []*float64  `json:"period_averages"`
}

func toNullable(x []float64) []*float64 {
	if x == nil {
		return nil
	}
	res := make([]*float64, len(x))
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		res[i] = &x[i]
	}
	return res
}

func fromNullable(x []*float64) []float64 {
	if x == nil {
		return nil
	}
	res := make([]float64, len(x))
	for i, v := range x {
		if v == nil {
			res[i] = math.NaN()
			continue
		}
		res[i] = *v
	}
	return res
}

// MarshalJSON encodes NaN components as null
func (d Decomposition) MarshalJSON() ([]byte, error) {
	return json.Marshal(decompositionJSON{
		T:              d.T,
		Observed:       toNullable(d.Observed),
		Trend:          toNullable(d.Trend),
		Seasonal:       toNullable(d.Seasonal),
		Residual:       toNullable(d.Residual),
		PeriodAverages: toNullable(d.PeriodAverages),
	})
}

// UnmarshalJSON decodes null components as NaN
func (d *Decomposition) UnmarshalJSON(data []byte) error {
	var aux decompositionJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*d = Decomposition{
		T:              aux.T,
		Observed:       fromNullable(aux.Observed),
		Trend:          fromNullable(aux.Trend),
		Seasonal:       fromNullable(aux.Seasonal),
		Residual:       fromNullable(aux.Residual),
		PeriodAverages: fromNullable(aux.PeriodAverages),
	}
	return nil
}
