package stldecompose

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aouyang1/go-stldecompose/decompose"
	"github.com/aouyang1/go-stldecompose/timedataset"
)

// Model is the serializeable form of a fit STL model
type Model struct {
	Options       *Options                 `json:"options"`
	Decomposition *decompose.Decomposition `json:"decomposition"`
}

// TablePrint writes a human readable summary of the model options and seasonal profile
func (m Model) TablePrint(w io.Writer) error {
	prefix := ""
	indent := "  "

	if _, err := fmt.Fprintf(w, "%sOptions:\n", prefix); err != nil {
		return err
	}
	if err := m.Options.tablePrint(w, prefix, indent, 1); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%sDecomposition:\n", prefix); err != nil {
		return err
	}
	if m.Decomposition == nil {
		if _, err := fmt.Fprintf(w, "%s%sNone\n", prefix, indentExpand(indent, 1)); err != nil {
			return err
		}
		return nil
	}

	ts := timedataset.TimeSlice(m.Decomposition.T)
	if _, err := fmt.Fprintf(w, "%s%sTraining Start Time: %s\n", prefix, indentExpand(indent, 1), ts.StartTime()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sTraining End Time: %s\n", prefix, indentExpand(indent, 1), ts.EndTime()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sObservations: %d\n", prefix, indentExpand(indent, 1), m.Decomposition.Len()); err != nil {
		return err
	}
	return seasonalProfileTablePrint(w, m.Decomposition.PeriodAverages, prefix, indent, 1)
}

func (o *Options) tablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	if o == nil {
		_, err := fmt.Fprintf(w, "%s%sNone\n", prefix, indentExpand(indent, indentGrowth))
		return err
	}
	if o.DecomposeOptions == nil {
		if _, err := fmt.Fprintf(w, "%s%sDecompose Options: None\n", prefix, indentExpand(indent, indentGrowth)); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "%s%sPeriod: %d    Fit Fraction: %.3f    Interpolation Tolerance: %.3f\n",
			prefix, indentExpand(indent, indentGrowth),
			o.DecomposeOptions.Period,
			o.DecomposeOptions.FitFraction,
			o.DecomposeOptions.InterpTolerance,
		); err != nil {
			return err
		}
	}

	if o.TrendOptions != nil {
		if err := o.TrendOptions.tablePrint(w, prefix, indent, indentGrowth); err != nil {
			return err
		}
	}

	if o.AnomalyOptions == nil {
		_, err := fmt.Fprintf(w, "%s%sAnomaly Options: None\n", prefix, indentExpand(indent, indentGrowth))
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sAnomaly Options:\n", prefix, indentExpand(indent, indentGrowth)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s%sTukey Factor: %.3f    Lower Percentile: %.2f%%    Upper Percentile: %.2f%%\n",
		prefix, indentExpand(indent, indentGrowth+1),
		o.AnomalyOptions.TukeyFactor,
		o.AnomalyOptions.LowerPercentile*100.0,
		o.AnomalyOptions.UpperPercentile*100.0,
	)
	return err
}

func (t *TrendOptions) tablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	var err error
	switch t.Smoother {
	case SmootherLowess:
		_, err = fmt.Fprintf(w, "%s%sTrend Smoother: %s    Iterations: %d\n", prefix, indentExpand(indent, indentGrowth), t.Smoother, t.Iterations)
	case SmootherPolynomial:
		_, err = fmt.Fprintf(w, "%s%sTrend Smoother: %s    Degree: %d\n", prefix, indentExpand(indent, indentGrowth), t.Smoother, t.Degree)
	default:
		_, err = fmt.Fprintf(w, "%s%sTrend Smoother: %s\n", prefix, indentExpand(indent, indentGrowth), t.Smoother)
	}
	return err
}

func seasonalProfileTablePrint(w io.Writer, profile []float64, prefix, indent string, indentGrowth int) error {
	if len(profile) == 0 {
		_, err := fmt.Fprintf(w, "%s%sSeasonal Profile: None\n", prefix, indentExpand(indent, indentGrowth))
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sSeasonal Profile:\n", prefix, indentExpand(indent, indentGrowth)); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sPhase\tValue\t\n", prefix, indentExpand(indent, indentGrowth+1)); err != nil {
		return err
	}
	for i, v := range profile {
		if _, err := fmt.Fprintf(tbl, "%s%s%d\t%.3f\t\n", prefix, indentExpand(indent, indentGrowth+1), i, v); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

func indentExpand(indent string, growth int) string {
	return strings.Repeat(indent, growth)
}
