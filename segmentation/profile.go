package segmentation

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ProfileOptions configure BuildProfile.
type ProfileOptions struct {
	// ExclusionRadius is the number of samples at either end of the
	// sequence that are never scored.
	ExclusionRadius int
	Scorer          ScorerOptions
}

// ScoreProfile holds one score per sequence index. Index t scores the
// split between windows t-1 and t; indexes that cannot be scored hold
// NaN.
type ScoreProfile struct {
	Scores []float64
	// ArgMax is the lowest index holding the maximum score, or -1 when
	// nothing could be scored.
	ArgMax int
	Max    float64
}

// Valid reports whether at least one index was scored.
func (p *ScoreProfile) Valid() bool { return p != nil && p.ArgMax >= 0 }

// candidateRange returns the first and last index that may be scored
// in a sequence of length n with window length w. The range is empty
// when lo > hi.
func candidateRange(n, w, radius int) (int, int) {
	lo, hi := 1, n-w
	if radius > lo {
		lo = radius
	}
	if n-radius < hi {
		hi = n - radius
	}
	return lo, hi
}

// BuildProfile scores every candidate split of the matrix outside the
// exclusion zones. Candidates are independent, so they are spread over
// opts.Scorer.Workers goroutines, each writing its own slots.
func BuildProfile(ctx context.Context, wm *WindowMatrix, opts ProfileOptions) (*ScoreProfile, error) {
	if wm == nil {
		return nil, errors.New("window matrix is required")
	}
	if opts.ExclusionRadius < 0 {
		return nil, errors.Errorf("exclusion radius %d must not be negative", opts.ExclusionRadius)
	}

	n := wm.Len()
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = math.NaN()
	}

	profile := &ScoreProfile{Scores: scores, ArgMax: -1, Max: math.NaN()}
	lo, hi := candidateRange(n, wm.Width(), opts.ExclusionRadius)
	if lo > hi {
		return profile, nil
	}

	scorer, err := NewCandidateScorer(ctx, wm, opts.Scorer)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	workers := opts.Scorer.Workers
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, part := range chunks(hi-lo+1, workers) {
		g.Go(func() error {
			scratch := scorer.newScratch()
			for t := lo + part.start; t < lo+part.end; t++ {
				if err := ctx.Err(); err != nil {
					return errors.WithStack(err)
				}
				scores[t] = scorer.score(t, scratch)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for t := lo; t <= hi; t++ {
		if math.IsNaN(scores[t]) {
			continue
		}
		if profile.ArgMax < 0 || scores[t] > profile.Max {
			profile.ArgMax = t
			profile.Max = scores[t]
		}
	}

	return profile, nil
}
