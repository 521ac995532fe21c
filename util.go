package stldecompose

import (
	"math"
	"time"

	"github.com/aouyang1/go-stldecompose/forecast"
	"github.com/aouyang1/go-stldecompose/timedataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. The input
// y is a slice of series that must have the same length as the input time slice. NaN values are
// drawn as gaps.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	lineData := make([][]opts.LineData, len(y))
	for i := 0; i < len(y); i++ {
		lineData[i] = make([]opts.LineData, 0, len(y[i]))
		for j := 0; j < len(y[i]); j++ {
			lineData[i] = append(lineData[i], lineValue(y[i][j]))
		}
	}

	line = line.SetXAxis(t)
	for i, series := range seriesName {
		line = line.AddSeries(series, lineData[i])
	}

	return line
}

// LineForecast generates an echart line chart of the training data and its fitted values followed
// by the forecast over the horizon.
func LineForecast(trainingData *timedataset.TimeDataset, fitted []float64, res *forecast.Results) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Forecast Fit",
			},
		),
	)

	n := trainingData.Len()
	total := n + res.Len()
	t := make([]time.Time, 0, total)
	t = append(t, trainingData.T...)
	t = append(t, res.T...)

	lineDataActual := make([]opts.LineData, 0, total)
	lineDataFitted := make([]opts.LineData, 0, total)
	lineDataForecast := make([]opts.LineData, 0, total)

	for i := 0; i < n; i++ {
		lineDataActual = append(lineDataActual, lineValue(trainingData.Y[i]))
		lineDataFitted = append(lineDataFitted, lineValue(fitted[i]))
		lineDataForecast = append(lineDataForecast, lineValue(math.NaN()))
	}
	for i := 0; i < res.Len(); i++ {
		lineDataActual = append(lineDataActual, lineValue(math.NaN()))
		lineDataFitted = append(lineDataFitted, lineValue(math.NaN()))
		lineDataForecast = append(lineDataForecast, lineValue(res.Values[i]))
	}

	line.SetXAxis(t).
		AddSeries("Actual", lineDataActual).
		AddSeries("Fitted", lineDataFitted).
		AddSeries(res.Name, lineDataForecast)
	return line
}

// lineValue maps NaN to an empty point since echarts cannot encode NaN
func lineValue(v float64) opts.LineData {
	if math.IsNaN(v) {
		return opts.LineData{Value: "-"}
	}
	return opts.LineData{Value: v}
}
