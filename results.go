package stldecompose

import "time"

// Anomaly is a training point whose residual falls outside the Tukey fences
type Anomaly struct {
	Index    int       `json:"index"`
	T        time.Time `json:"time"`
	Observed float64   `json:"observed"`
	Expected float64   `json:"expected"`
	Residual float64   `json:"residual"`
}
