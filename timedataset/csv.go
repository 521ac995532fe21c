package timedataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	ErrColumnNotFound = errors.New("column not found in csv header")
	ErrInvalidRecord  = errors.New("invalid csv record")
)

// TimeFormatUnix parses the time column as integer unix seconds
const TimeFormatUnix = "unix"

// CSVOptions configures how a univariate series is read from a csv with a header row
type CSVOptions struct {
	TimeColumn  string
	ValueColumn string
	TimeFormat  string
	Delimiter   rune
}

func NewDefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		TimeColumn:  "ds",
		ValueColumn: "y",
		TimeFormat:  time.RFC3339,
		Delimiter:   ',',
	}
}

// LoadCSVFile opens the file at path and loads it with LoadCSV
func LoadCSVFile(path string, opt *CSVOptions) (*TimeDataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSV(file, opt)
}

// LoadCSV reads a header row followed by records and returns the time and value
// columns as a TimeDataset. Empty or NaN values are kept as NaN.
func LoadCSV(r io.Reader, opt *CSVOptions) (*TimeDataset, error) {
	if opt == nil {
		opt = NewDefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	if opt.Delimiter != 0 {
		reader.Comma = opt.Delimiter
	}
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to read csv header, %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.Trim(h, "\""))
	}

	tIdx := slices.Index(header, opt.TimeColumn)
	if tIdx < 0 {
		return nil, fmt.Errorf("%q, %w", opt.TimeColumn, ErrColumnNotFound)
	}
	yIdx := slices.Index(header, opt.ValueColumn)
	if yIdx < 0 {
		return nil, fmt.Errorf("%q, %w", opt.ValueColumn, ErrColumnNotFound)
	}

	var t []time.Time
	var y []float64
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if tIdx >= len(record) || yIdx >= len(record) {
			return nil, fmt.Errorf("line %d has %d fields, %w", line, len(record), ErrInvalidRecord)
		}

		tPnt, err := parseTime(strings.TrimSpace(record[tIdx]), opt.TimeFormat)
		if err != nil {
			return nil, fmt.Errorf("line %d time %q, %w", line, record[tIdx], errors.Join(ErrInvalidRecord, err))
		}
		val, err := parseValue(strings.TrimSpace(record[yIdx]))
		if err != nil {
			return nil, fmt.Errorf("line %d value %q, %w", line, record[yIdx], errors.Join(ErrInvalidRecord, err))
		}
		t = append(t, tPnt)
		y = append(y, val)
	}

	return NewUnivariateDataset(t, y)
}

func parseTime(s, format string) (time.Time, error) {
	if format == TimeFormatUnix {
		sec, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Parse(format, s)
}

func parseValue(s string) (float64, error) {
	switch s {
	case "", "NA", "NaN", "nan", "null":
		return strconv.ParseFloat("NaN", 64)
	}
	return strconv.ParseFloat(s, 64)
}
