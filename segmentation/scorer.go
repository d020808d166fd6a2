package segmentation

import (
	"context"
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// ScorerOptions configure the self-supervised classifier evaluated at
// every candidate split.
type ScorerOptions struct {
	Folds      int
	Neighbours int
	Seed       int64
	Workers    int
}

// CandidateScorer rates how well a k-nearest-neighbour classifier
// separates the windows before a candidate split from the windows after
// it. The neighbour lists and the fold permutation are computed once per
// window matrix; Score itself is stateless and safe for concurrent use.
type CandidateScorer struct {
	matrix     *WindowMatrix
	neighbours [][]int
	order      []int
	folds      int
	k          int
}

// NewCandidateScorer precomputes the neighbour lists for the matrix.
func NewCandidateScorer(ctx context.Context, wm *WindowMatrix, opts ScorerOptions) (*CandidateScorer, error) {
	if wm == nil {
		return nil, errors.New("window matrix is required")
	}
	if opts.Folds < 2 {
		return nil, errors.Errorf("need at least two folds, got %d", opts.Folds)
	}
	if opts.Neighbours < 1 {
		return nil, errors.Errorf("need at least one neighbour, got %d", opts.Neighbours)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	neighbours, err := buildNeighbours(ctx, wm, neighbourPoolFactor*opts.Neighbours*(opts.Folds+1), opts.Workers)
	if err != nil {
		return nil, errors.Wrap(err, "problem finding nearest neighbours")
	}

	return &CandidateScorer{
		matrix:     wm,
		neighbours: neighbours,
		order:      rand.New(rand.NewSource(opts.Seed)).Perm(wm.Rows()),
		folds:      opts.Folds,
		k:          opts.Neighbours,
	}, nil
}

// Score returns the ROC AUC of the cross validated classifier for the
// split at row t, in [0,1]. Rows before t are labelled 0, the rest 1.
// When either side has fewer rows than there are folds some fold holds
// a single class and the score is ChanceScore. Rows outside (0, rows)
// score NaN.
func (s *CandidateScorer) Score(t int) float64 {
	return s.score(t, s.newScratch())
}

type scorerScratch struct {
	fold   []int
	counts []scoreGroup
	groups []scoreGroup
}

func (s *CandidateScorer) newScratch() *scorerScratch {
	return &scorerScratch{
		fold:   make([]int, s.matrix.Rows()),
		counts: make([]scoreGroup, (s.k+1)*(s.k+1)),
		groups: make([]scoreGroup, 0, (s.k+1)*(s.k+1)),
	}
}

func (s *CandidateScorer) score(t int, scratch *scorerScratch) float64 {
	rows := s.matrix.Rows()
	if t <= 0 || t >= rows {
		return math.NaN()
	}
	if t < s.folds || rows-t < s.folds {
		return ChanceScore
	}

	// stratified folds: deal each class round-robin in the seeded order
	var before, after int
	for _, r := range s.order {
		if r < t {
			scratch.fold[r] = before % s.folds
			before++
		} else {
			scratch.fold[r] = after % s.folds
			after++
		}
	}

	for i := range scratch.counts {
		scratch.counts[i] = scoreGroup{}
	}

	for i := 0; i < rows; i++ {
		votes, ones := 0, 0
		for _, j := range s.neighbours[i] {
			if scratch.fold[j] == scratch.fold[i] {
				continue
			}
			votes++
			if j >= t {
				ones++
			}
			if votes == s.k {
				break
			}
		}

		cell := &scratch.counts[votes*(s.k+1)+ones]
		if i >= t {
			cell.positives++
		} else {
			cell.negatives++
		}
	}

	scratch.groups = scratch.groups[:0]
	for votes := 0; votes <= s.k; votes++ {
		for ones := 0; ones <= votes; ones++ {
			cell := scratch.counts[votes*(s.k+1)+ones]
			if cell.positives == 0 && cell.negatives == 0 {
				continue
			}
			cell.score = ChanceScore
			if votes > 0 {
				cell.score = float64(ones) / float64(votes)
			}
			scratch.groups = append(scratch.groups, cell)
		}
	}

	return rocAUC(scratch.groups)
}
