package segmentation

import (
	"context"
	"math/rand"

	"github.com/pkg/errors"
)

// significance returns the permutation p-value of the best split of r:
// the share of shuffled copies of the region, counting the region
// itself, whose best score is strictly higher. Shuffling keeps the
// values and destroys their order, so a region without a change point
// scores like its copies. Counting stops once the p-value exceeds the
// significance level. A perfect score cannot be beaten and skips the
// shuffles.
func (s *splitSearch) significance(ctx context.Context, r *region) (float64, error) {
	permutations := s.opts.Permutations
	if permutations <= 0 {
		return 0, nil
	}

	total := float64(permutations + 1)
	if r.profile.Max >= 1 {
		return 1 / total, nil
	}

	rng := rand.New(rand.NewSource(s.opts.Seed + int64(r.start)))
	shuffled := append([]float64{}, s.series[r.start:r.end]...)

	above := 0.0
	for i := 0; i < permutations; i++ {
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		profile, err := s.profile(ctx, shuffled, r.radius)
		if err != nil {
			return 0, errors.Wrapf(err, "problem scoring permutation %d of [%d,%d)", i, r.start, r.end)
		}
		if profile.Valid() && profile.Max > r.profile.Max {
			above++
			if (1+above)/total > s.opts.SignificanceLevel {
				break
			}
		}
	}

	return (1 + above) / total, nil
}
