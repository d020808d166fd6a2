package model

import (
	"context"
	"io"
	"sort"

	"github.com/mongodb/ftdc"
	"github.com/pkg/errors"
)

// FTDCSeriesOptions select the metric extracted from FTDC data.
type FTDCSeriesOptions struct {
	// Metric is the flattened key of the metric, e.g. "counters.ops".
	Metric string
	// Cumulative metrics, like FTDC counters, are converted to the
	// difference between consecutive samples.
	Cumulative bool
}

// ReadFTDCSeries extracts one metric of an FTDC stream as a series,
// concatenating the samples of every chunk.
func ReadFTDCSeries(ctx context.Context, r io.Reader, opts FTDCSeriesOptions) (*Series, error) {
	if opts.Metric == "" {
		return nil, errors.New("must specify a metric to read from FTDC data")
	}

	iter := ftdc.ReadChunks(ctx, r)
	defer iter.Close()

	found := false
	seen := map[string]struct{}{}
	values := []float64{}
	for iter.Next() {
		chunk := iter.Chunk()
		for _, metric := range chunk.Metrics {
			name := metric.Key()
			seen[name] = struct{}{}
			if name != opts.Metric {
				continue
			}

			found = true
			values = append(values, convertToFloats(metric.Values)...)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "problem reading FTDC chunks")
	}

	if !found {
		names := make([]string, 0, len(seen))
		for name := range seen {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, errors.Errorf("metric '%s' not found, have %v", opts.Metric, names)
	}

	if opts.Cumulative {
		values = extractDeltas(values)
	}

	return &Series{Name: opts.Metric, Values: values}, nil
}

func convertToFloats(ints []int64) []float64 {
	floats := make([]float64, len(ints))
	for i := range ints {
		floats[i] = float64(ints[i])
	}

	return floats
}

// extractDeltas expects cumulative values.
func extractDeltas(vals []float64) []float64 {
	out := make([]float64, len(vals))

	last := float64(0)
	for i := range vals {
		out[i] = vals[i] - last
		last = vals[i]
	}

	return out
}
