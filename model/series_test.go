package model

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSeries(t *testing.T) {
	ctx := context.Background()

	for _, test := range []struct {
		name     string
		format   InputFormat
		input    string
		expected Series
		hasErr   bool
	}{
		{
			name:     "JSONDocument",
			format:   InputFormatJSON,
			input:    `{"name": "latency", "values": [1, 2.5, 3]}`,
			expected: Series{Name: "latency", Values: []float64{1, 2.5, 3}},
		},
		{
			name:     "JSONList",
			format:   InputFormatJSON,
			input:    `[4, 5, 6]`,
			expected: Series{Values: []float64{4, 5, 6}},
		},
		{
			name:     "YAMLDocument",
			format:   InputFormatYAML,
			input:    "name: ops\nvalues:\n  - 1\n  - 2\n",
			expected: Series{Name: "ops", Values: []float64{1, 2}},
		},
		{
			name:     "YAMLList",
			format:   InputFormatYAML,
			input:    "- 0.5\n- -1\n",
			expected: Series{Values: []float64{0.5, -1}},
		},
		{
			name:     "CSVWithHeader",
			format:   InputFormatCSV,
			input:    "throughput,ts\n10,1\n11,2\n# comment\n\n12,3\n",
			expected: Series{Name: "throughput", Values: []float64{10, 11, 12}},
		},
		{
			name:     "CSVOneValuePerLine",
			format:   InputFormatCSV,
			input:    "1\n2\n3\n",
			expected: Series{Values: []float64{1, 2, 3}},
		},
		{
			name:   "CSVBadValue",
			format: InputFormatCSV,
			input:  "1\nfoo\n3\n",
			hasErr: true,
		},
		{
			name:   "Empty",
			format: InputFormatJSON,
			input:  `[]`,
			hasErr: true,
		},
		{
			name:   "NotSeries",
			format: InputFormatJSON,
			input:  `"hello"`,
			hasErr: true,
		},
		{
			name:   "NonFinite",
			format: InputFormatCSV,
			input:  "1\nNaN\n",
			hasErr: true,
		},
		{
			name:   "UnknownFormat",
			format: InputFormat("xml"),
			input:  "<series/>",
			hasErr: true,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			series, err := ReadSeries(ctx, strings.NewReader(test.input), SeriesReadOptions{Format: test.format})
			if test.hasErr {
				assert.Error(t, err)
				assert.Nil(t, series)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, *series)
		})
	}
	t.Run("NameOverride", func(t *testing.T) {
		series, err := ReadSeries(ctx, strings.NewReader(`{"name": "a", "values": [1]}`), SeriesReadOptions{Format: InputFormatJSON, Name: "b"})
		require.NoError(t, err)
		assert.Equal(t, "b", series.Name)
	})
}

func TestInputFormat(t *testing.T) {
	for path, expected := range map[string]InputFormat{
		"a/b/series.json": InputFormatJSON,
		"series.YAML":     InputFormatYAML,
		"series.yml":      InputFormatYAML,
		"series.csv":      InputFormatCSV,
		"series.txt":      InputFormatCSV,
		"metrics.ftdc":    InputFormatFTDC,
	} {
		f, err := InputFormatFromPath(path)
		require.NoError(t, err)
		assert.Equal(t, expected, f, path)
	}

	_, err := InputFormatFromPath("series")
	assert.Error(t, err)
	_, err = InputFormatFromPath("series.parquet")
	assert.Error(t, err)
	assert.NoError(t, InputFormatFTDC.Validate())
}

func TestReadSeriesFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	path := filepath.Join(dir, "cpu.csv")
	require.NoError(t, os.WriteFile(path, []byte("1\n2\n3\n"), 0644))

	series, err := ReadSeriesFile(ctx, path, SeriesReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "cpu", series.Name)
	assert.Equal(t, []float64{1, 2, 3}, series.Values)

	series, err = ReadSeriesFile(ctx, path, SeriesReadOptions{Format: InputFormatJSON})
	assert.Error(t, err)
	assert.Nil(t, series)

	_, err = ReadSeriesFile(ctx, filepath.Join(dir, "missing.csv"), SeriesReadOptions{})
	assert.Error(t, err)
}

func TestSeriesValidate(t *testing.T) {
	assert.NoError(t, (&Series{Values: []float64{1}}).Validate())
	assert.Error(t, (&Series{}).Validate())
	assert.Error(t, (&Series{Values: []float64{1, math.Inf(1)}}).Validate())
}
