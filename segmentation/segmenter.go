package segmentation

import (
	"container/heap"
	"context"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

// Segmenter finds change points with a best-first search: every region
// of the sequence still eligible for splitting waits in a single queue
// ordered by its best profile score, and the best region overall is
// split next.
type Segmenter struct {
	opts Options
}

// NewSegmenter validates the options and fills in their defaults.
func NewSegmenter(opts Options) (*Segmenter, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid segmentation options")
	}

	return &Segmenter{opts: opts}, nil
}

// Options returns the validated options.
func (s *Segmenter) Options() Options { return s.opts }

// Segment returns the change points of series. The series is not
// modified and must not be modified while Segment runs.
func (s *Segmenter) Segment(ctx context.Context, series []float64) (*Result, error) {
	w := s.opts.PeriodLength
	if w == 0 {
		var err error
		w, err = PeriodEstimator{MinWindow: s.opts.MinWindow, Detrend: s.opts.Detrend}.Estimate(series)
		if err != nil {
			return nil, errors.Wrap(err, "problem estimating window length")
		}
	}

	if _, err := NewWindowMatrix(series, w); err != nil {
		return nil, errors.WithStack(err)
	}

	search := &splitSearch{
		opts:   s.opts,
		series: series,
		width:  w,
		radius: s.opts.ExclusionRadius(w),
		result: &Result{
			ChangePoints: ChangePointSet{},
			Scores:       map[int]float64{},
			PValues:      map[int]float64{},
			WindowLength: w,
			SeriesLength: len(series),
			Format:       s.opts.Format,
			Info:         s.opts.Info(w),
		},
	}

	if err := search.run(ctx); err != nil {
		return nil, err
	}

	grip.Info(message.Fields{
		"message":       "segmentation complete",
		"algorithm":     algorithmName,
		"length":        len(series),
		"window":        w,
		"requested":     s.opts.NChangePoints,
		"change_points": search.result.ChangePoints,
		"profiles":      len(search.result.Profiles),
	})

	return search.result, nil
}

type splitSearch struct {
	opts   Options
	series []float64
	width  int
	radius int
	queue  regionQueue
	result *Result
}

func (s *splitSearch) run(ctx context.Context) error {
	if err := s.evaluate(ctx, 0, len(s.series)); err != nil {
		return err
	}

	budget := s.opts.NChangePoints
	for budget > 0 && s.queue.Len() > 0 {
		r := heap.Pop(&s.queue).(*region)
		cp := r.start + r.profile.ArgMax

		if !(r.profile.Max > s.opts.AcceptanceThreshold) {
			// every region left in the queue scores at most this much
			grip.Debug(message.Fields{
				"message":   "best region below acceptance threshold",
				"start":     r.start,
				"end":       r.end,
				"candidate": cp,
				"score":     r.profile.Max,
				"threshold": s.opts.AcceptanceThreshold,
			})
			break
		}

		pvalue, err := s.significance(ctx, r)
		if err != nil {
			return err
		}
		if s.opts.Permutations > 0 && pvalue > s.opts.SignificanceLevel {
			grip.Debug(message.Fields{
				"message":   "rejected split that shuffled data scores as well",
				"start":     r.start,
				"end":       r.end,
				"candidate": cp,
				"score":     r.profile.Max,
				"p_value":   pvalue,
			})
			continue
		}

		s.result.ChangePoints = NewChangePointSet(append(s.result.ChangePoints, cp)...)
		s.result.Scores[cp] = r.profile.Max
		if s.opts.Permutations > 0 {
			s.result.PValues[cp] = pvalue
		}
		budget--

		grip.Debug(message.Fields{
			"message":      "accepted change point",
			"change_point": cp,
			"score":        r.profile.Max,
			"p_value":      pvalue,
			"start":        r.start,
			"end":          r.end,
			"remaining":    budget,
		})

		if budget == 0 {
			break
		}

		if err := s.evaluate(ctx, r.start, cp); err != nil {
			return err
		}
		if err := s.evaluate(ctx, cp, r.end); err != nil {
			return err
		}
	}

	return nil
}

// evaluate builds the profile of series[start:end] and queues the region
// if it has a candidate to offer.
func (s *splitSearch) evaluate(ctx context.Context, start, end int) error {
	if end-start < 2*s.width {
		grip.Debug(message.Fields{
			"message": "region too short to split",
			"start":   start,
			"end":     end,
			"window":  s.width,
		})
		return nil
	}

	radius := s.radius
	if start == 0 && end == len(s.series) {
		// the sequence ends may not exclude every candidate
		if limit := (end - start - s.width) / 2; radius > limit {
			radius = limit
		}
	}

	profile, err := s.profile(ctx, s.series[start:end], radius)
	if err != nil {
		return errors.Wrapf(err, "problem building profile for [%d,%d)", start, end)
	}

	s.result.Profiles = append(s.result.Profiles, RegionProfile{Start: start, End: end, Profile: profile})

	if !profile.Valid() {
		grip.Debug(message.Fields{
			"message": "region has no candidates outside the exclusion zones",
			"start":   start,
			"end":     end,
			"radius":  radius,
		})
		return nil
	}

	heap.Push(&s.queue, &region{start: start, end: end, radius: radius, profile: profile})
	return nil
}

func (s *splitSearch) profile(ctx context.Context, series []float64, radius int) (*ScoreProfile, error) {
	wm, err := NewWindowMatrix(series, s.width)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return BuildProfile(ctx, wm, ProfileOptions{
		ExclusionRadius: radius,
		Scorer: ScorerOptions{
			Folds:      s.opts.Folds,
			Neighbours: s.opts.Neighbours,
			Seed:       s.opts.Seed,
			Workers:    s.opts.Workers,
		},
	})
}

type region struct {
	start   int
	end     int
	radius  int
	profile *ScoreProfile
}

// regionQueue is a max-heap on the profile maximum. Equal maxima pop
// the region that starts first.
type regionQueue []*region

func (q regionQueue) Len() int { return len(q) }
func (q regionQueue) Less(i, j int) bool {
	if q[i].profile.Max != q[j].profile.Max {
		return q[i].profile.Max > q[j].profile.Max
	}
	return q[i].start < q[j].start
}
func (q regionQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *regionQueue) Push(x interface{}) { *q = append(*q, x.(*region)) }

func (q *regionQueue) Pop() interface{} {
	old := *q
	n := len(old)
	out := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return out
}
