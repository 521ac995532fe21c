// Command stlforecast decomposes a csv series and writes a json forecast
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/aouyang1/go-stldecompose"
	"github.com/aouyang1/go-stldecompose/forecast"
	"github.com/aouyang1/go-stldecompose/timedataset"
	"github.com/goccy/go-json"
)

var ErrMissingFlag = errors.New("missing required flag")

type forecastOutput struct {
	Name   string      `json:"name"`
	T      []time.Time `json:"time"`
	Values []*float64  `json:"values"`
	Phase  int         `json:"phase"`
}

type scoresOutput struct {
	MSE  *float64 `json:"mean_squared_error"`
	MAPE *float64 `json:"mean_absolute_percent_error"`
	R2   *float64 `json:"r_squared"`
}

type output struct {
	Forecast  forecastOutput         `json:"forecast"`
	Scores    *scoresOutput          `json:"holdout_scores,omitempty"`
	Anomalies []stldecompose.Anomaly `json:"anomalies,omitempty"`
}

// nullable maps undefined values to json null
func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func newForecastOutput(res *forecast.Results) forecastOutput {
	values := make([]*float64, 0, res.Len())
	for _, v := range res.Values {
		values = append(values, nullable(v))
	}
	return forecastOutput{
		Name:   res.Name,
		T:      res.T,
		Values: values,
		Phase:  res.Phase,
	}
}

func newScoresOutput(s *forecast.Scores) *scoresOutput {
	return &scoresOutput{
		MSE:  nullable(s.MSE),
		MAPE: nullable(s.MAPE),
		R2:   nullable(s.R2),
	}
}

type flags struct {
	configPath string
	inputPath  string
	outPath    string
	plotPath   string
	modelPath  string
}

func parseFlags(args []string) (*flags, error) {
	fs := flag.NewFlagSet("stlforecast", flag.ContinueOnError)
	f := &flags{}
	fs.StringVar(&f.configPath, "config", "config.yaml", "config file path")
	fs.StringVar(&f.inputPath, "input", "", "csv file with the series to forecast")
	fs.StringVar(&f.outPath, "out", "", "json forecast output path, defaults to stdout")
	fs.StringVar(&f.plotPath, "plot", "", "optional html plot output path")
	fs.StringVar(&f.modelPath, "model", "", "optional json model output path")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.inputPath == "" {
		return nil, fmt.Errorf("-input, %w", ErrMissingFlag)
	}
	return f, nil
}

func run(args []string, stdout io.Writer) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := Load(f.configPath)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))

	td, err := timedataset.LoadCSVFile(f.inputPath, cfg.CSVOptions())
	if err != nil {
		return fmt.Errorf("unable to load input, %w", err)
	}
	slog.Info("loaded series", "path", f.inputPath, "points", td.Len())

	strat, err := cfg.Strategy()
	if err != nil {
		return err
	}

	opt, err := cfg.STLOptions()
	if err != nil {
		return err
	}
	s, err := stldecompose.New(opt)
	if err != nil {
		return err
	}
	if err := s.FitDataset(td); err != nil {
		return err
	}

	includeSeasonal := !cfg.Forecast.TrendOnly
	res, err := s.Forecast(strat, cfg.Forecast.Steps, includeSeasonal)
	if err != nil {
		return err
	}
	out := output{Forecast: newForecastOutput(res)}

	if cfg.Forecast.Holdout > 0 {
		_, scores, err := s.Evaluate(strat, cfg.Forecast.Holdout, includeSeasonal)
		if err != nil {
			return err
		}
		out.Scores = newScoresOutput(scores)
		slog.Info("holdout scores", "holdout", cfg.Forecast.Holdout, "mse", scores.MSE, "mape", scores.MAPE, "r2", scores.R2)
	}

	if cfg.Anomaly.Enabled {
		out.Anomalies, err = s.Anomalies(nil)
		if err != nil {
			return err
		}
		slog.Info("residual anomalies", "count", len(out.Anomalies))
	}

	if err := writeJSON(f.outPath, stdout, out); err != nil {
		return fmt.Errorf("unable to write forecast, %w", err)
	}

	if f.modelPath != "" {
		m, err := s.Model()
		if err != nil {
			return err
		}
		if err := writeJSON(f.modelPath, stdout, m); err != nil {
			return fmt.Errorf("unable to write model, %w", err)
		}
	}

	if f.plotPath != "" {
		file, err := os.Create(f.plotPath)
		if err != nil {
			return err
		}
		defer file.Close()
		plotOpt := &stldecompose.PlotOpts{
			HorizonCnt:      cfg.Forecast.Steps,
			Strategy:        strat,
			IncludeSeasonal: includeSeasonal,
		}
		if err := s.PlotFit(file, plotOpt); err != nil {
			return fmt.Errorf("unable to plot fit, %w", err)
		}
	}
	return nil
}

func writeJSON(path string, stdout io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if path == "" {
		_, err := stdout.Write(b)
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		slog.Error("stlforecast failed", "error", err)
		os.Exit(1)
	}
}
