package segmentation

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// neighbourPoolFactor scales the per-row neighbour list beyond the vote
// count so that enough neighbours survive after the rows sharing the
// held out fold are skipped.
const neighbourPoolFactor = 2

// trivialMatchRadius is the row distance under which two windows share
// too many samples to count as independent neighbours.
func trivialMatchRadius(w int) int {
	if r := w / 2; r > 1 {
		return r
	}
	return 1
}

// buildNeighbours returns, for every row of the matrix, up to size other
// rows ordered by Euclidean distance. Equal distances keep the lower row
// index first. Rows closer than the trivial match radius are never
// neighbours.
func buildNeighbours(ctx context.Context, wm *WindowMatrix, size, workers int) ([][]int, error) {
	rows := wm.Rows()
	out := make([][]int, rows)
	radius := trivialMatchRadius(wm.Width())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, part := range chunks(rows, workers) {
		g.Go(func() error {
			dists := make([]float64, 0, size)
			for i := part.start; i < part.end; i++ {
				if err := ctx.Err(); err != nil {
					return errors.WithStack(err)
				}
				out[i] = nearestRows(wm, i, radius, size, dists[:0])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func nearestRows(wm *WindowMatrix, i, radius, size int, dists []float64) []int {
	idx := make([]int, 0, size)
	row := wm.Row(i)
	for j := 0; j < wm.Rows(); j++ {
		if j > i-radius && j < i+radius {
			continue
		}

		d := floats.Distance(row, wm.Row(j), 2)
		if len(idx) == size && d >= dists[len(dists)-1] {
			continue
		}

		pos := sort.Search(len(dists), func(k int) bool { return dists[k] > d })
		if len(idx) < size {
			idx = append(idx, 0)
			dists = append(dists, 0)
		}
		copy(idx[pos+1:], idx[pos:len(idx)-1])
		copy(dists[pos+1:], dists[pos:len(dists)-1])
		idx[pos] = j
		dists[pos] = d
	}

	return idx
}

type span struct{ start, end int }

// chunks splits [0,n) into at most parts contiguous spans of near equal
// size.
func chunks(n, parts int) []span {
	if parts < 1 {
		parts = 1
	}
	if parts > n {
		parts = n
	}

	out := make([]span, 0, parts)
	for p := 0; p < parts; p++ {
		out = append(out, span{start: p * n / parts, end: (p + 1) * n / parts})
	}
	return out
}
