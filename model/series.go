package model

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Series is a named, ordered sequence of samples.
type Series struct {
	Name   string    `bson:"name" json:"name" yaml:"name"`
	Values []float64 `bson:"values" json:"values" yaml:"values"`
}

// Validate rejects empty series and samples that are not finite.
func (s *Series) Validate() error {
	if len(s.Values) == 0 {
		return errors.Errorf("series '%s' has no values", s.Name)
	}
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Errorf("series '%s' has non-finite value at index %d", s.Name, i)
		}
	}

	return nil
}

// InputFormat names an encoding of series data.
type InputFormat string

const (
	InputFormatJSON InputFormat = "json"
	InputFormatYAML InputFormat = "yaml"
	InputFormatCSV  InputFormat = "csv"
	InputFormatFTDC InputFormat = "ftdc"
)

func InputFormats() []string {
	return []string{string(InputFormatJSON), string(InputFormatYAML), string(InputFormatCSV), string(InputFormatFTDC)}
}

func (f InputFormat) Validate() error {
	if !utility.StringSliceContains(InputFormats(), string(f)) {
		return errors.Errorf("invalid input format '%s'", f)
	}
	return nil
}

// InputFormatFromPath guesses the format from the file extension.
func InputFormatFromPath(path string) (InputFormat, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "yml":
		return InputFormatYAML, nil
	case "txt":
		return InputFormatCSV, nil
	}

	f := InputFormat(ext)
	if err := f.Validate(); err != nil {
		return "", errors.Wrapf(err, "cannot infer format of '%s'", path)
	}
	return f, nil
}

// SeriesReadOptions select how a series is decoded.
type SeriesReadOptions struct {
	Format InputFormat `bson:"format" json:"format" yaml:"format"`
	// Name overrides the series name found in the data.
	Name string `bson:"name" json:"name" yaml:"name"`
	// Metric and Cumulative apply to FTDC input only.
	Metric     string `bson:"metric" json:"metric" yaml:"metric"`
	Cumulative bool   `bson:"cumulative" json:"cumulative" yaml:"cumulative"`
}

// ReadSeries decodes a series from r. JSON and YAML input is either a
// document with name and values keys or a bare list of numbers. CSV
// input uses the first column; a first row that does not parse as a
// number is treated as a header and names the series.
func ReadSeries(ctx context.Context, r io.Reader, opts SeriesReadOptions) (*Series, error) {
	var (
		series *Series
		err    error
	)

	switch opts.Format {
	case InputFormatJSON:
		series, err = decodeStructured(r, json.Unmarshal)
	case InputFormatYAML:
		series, err = decodeStructured(r, yaml.Unmarshal)
	case InputFormatCSV:
		series, err = decodeCSV(r)
	case InputFormatFTDC:
		series, err = ReadFTDCSeries(ctx, r, FTDCSeriesOptions{Metric: opts.Metric, Cumulative: opts.Cumulative})
	default:
		return nil, opts.Format.Validate()
	}
	if err != nil {
		return nil, errors.Wrapf(err, "problem reading %s series", opts.Format)
	}

	if opts.Name != "" {
		series.Name = opts.Name
	}

	if err = series.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	return series, nil
}

// ReadSeriesFile reads a series from a file, inferring the format from
// its extension when opts.Format is empty. The file name names the
// series when the data does not.
func ReadSeriesFile(ctx context.Context, path string, opts SeriesReadOptions) (*Series, error) {
	if opts.Format == "" {
		var err error
		if opts.Format, err = InputFormatFromPath(path); err != nil {
			return nil, err
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "problem opening '%s'", path)
	}
	defer file.Close()

	series, err := ReadSeries(ctx, file, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "problem reading '%s'", path)
	}

	if series.Name == "" {
		series.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return series, nil
}

func decodeStructured(r io.Reader, unmarshal func([]byte, interface{}) error) (*Series, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	series := &Series{}
	if err = unmarshal(data, series); err == nil {
		return series, nil
	}

	values := []float64{}
	if listErr := unmarshal(data, &values); listErr != nil {
		return nil, errors.Wrap(err, "input is neither a series document nor a list of numbers")
	}

	return &Series{Values: values}, nil
}

func decodeCSV(r io.Reader) (*Series, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	series := &Series{Values: []float64{}}
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}

		field := strings.TrimSpace(record[0])
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			if line == 1 {
				series.Name = field
				continue
			}
			return nil, errors.Wrapf(err, "line %d", line)
		}
		series.Values = append(series.Values, value)
	}

	return series, nil
}
