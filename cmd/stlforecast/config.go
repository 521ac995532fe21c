package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aouyang1/go-stldecompose"
	"github.com/aouyang1/go-stldecompose/decompose"
	"github.com/aouyang1/go-stldecompose/linearmodel"
	"github.com/aouyang1/go-stldecompose/loess"
	"github.com/aouyang1/go-stldecompose/strategy"
	"github.com/aouyang1/go-stldecompose/timedataset"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config is the yaml configuration of a forecast run. Numeric fields left at zero take
// their defaults.
type Config struct {
	LogLevel string `yaml:"log_level" default:"info" validate:"oneof=debug info warn error"`

	Input struct {
		TimeColumn  string `yaml:"time_column" default:"ds" validate:"required"`
		ValueColumn string `yaml:"value_column" default:"y" validate:"required"`
		TimeFormat  string `yaml:"time_format" default:"2006-01-02T15:04:05Z07:00" validate:"required"`
		Delimiter   string `yaml:"delimiter" default:"," validate:"len=1"`
	} `yaml:"input"`

	Decompose struct {
		Period          int     `yaml:"period" validate:"required,min=1"`
		FitFraction     float64 `yaml:"fit_fraction" default:"0.6" validate:"gt=0,lte=1"`
		InterpTolerance float64 `yaml:"interp_tolerance" default:"0.01" validate:"gte=0"`
		Smoother        string  `yaml:"smoother" default:"lowess" validate:"oneof=lowess polynomial"`
		Iterations      *int    `yaml:"iterations" default:"3" validate:"omitempty,gte=0"`
		Degree          int     `yaml:"degree" default:"1" validate:"min=1"`
	} `yaml:"decompose"`

	Forecast struct {
		Strategy string `yaml:"strategy" default:"drift" validate:"oneof=naive seasonal_naive mean moving_average drift"`
		// Window is the strategy lookback. Defaults to the seasonal period.
		Window    int  `yaml:"window" validate:"gte=0"`
		Steps     int  `yaml:"steps" validate:"required,min=1"`
		TrendOnly bool `yaml:"trend_only"`
		Holdout   int  `yaml:"holdout" validate:"gte=0"`
	} `yaml:"forecast"`

	Anomaly struct {
		Enabled         bool    `yaml:"enabled"`
		LowerPercentile float64 `yaml:"lower_percentile" default:"0.1" validate:"gte=0,lte=1"`
		UpperPercentile float64 `yaml:"upper_percentile" default:"0.9" validate:"gte=0,lte=1,gtefield=LowerPercentile"`
		TukeyFactor     float64 `yaml:"tukey_factor" default:"1.0" validate:"gte=0"`
	} `yaml:"anomaly"`
}

// Load reads and parses a yaml configuration file
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes the yaml configuration, fills in defaults and validates it
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set config defaults: %w", err)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) CSVOptions() *timedataset.CSVOptions {
	return &timedataset.CSVOptions{
		TimeColumn:  c.Input.TimeColumn,
		ValueColumn: c.Input.ValueColumn,
		TimeFormat:  c.Input.TimeFormat,
		Delimiter:   []rune(c.Input.Delimiter)[0],
	}
}

func (c *Config) smoother() (decompose.Smoother, error) {
	if c.Decompose.Smoother == "polynomial" {
		p, err := linearmodel.NewPolyTrend(c.Decompose.Degree)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	iterations := loess.DefaultIterations
	if c.Decompose.Iterations != nil {
		iterations = *c.Decompose.Iterations
	}
	return loess.New(&loess.Options{Iterations: iterations}), nil
}

func (c *Config) STLOptions() (*stldecompose.Options, error) {
	smoother, err := c.smoother()
	if err != nil {
		return nil, err
	}
	return &stldecompose.Options{
		DecomposeOptions: &decompose.Options{
			Period:          c.Decompose.Period,
			FitFraction:     c.Decompose.FitFraction,
			InterpTolerance: c.Decompose.InterpTolerance,
			Smoother:        smoother,
		},
		AnomalyOptions: &stldecompose.AnomalyOptions{
			LowerPercentile: c.Anomaly.LowerPercentile,
			UpperPercentile: c.Anomaly.UpperPercentile,
			TukeyFactor:     c.Anomaly.TukeyFactor,
		},
	}, nil
}

func (c *Config) Strategy() (strategy.Strategy, error) {
	window := c.Forecast.Window
	if window == 0 {
		window = c.Decompose.Period
	}
	return strategy.Lookup(c.Forecast.Strategy, window)
}
