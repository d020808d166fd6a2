package segmentation

// RegionProfile is the score profile of one sub-range [Start, End) of
// the sequence. Profile indexes are relative to Start.
type RegionProfile struct {
	Start   int
	End     int
	Profile *ScoreProfile
}

// Result is the outcome of a segmentation.
type Result struct {
	ChangePoints ChangePointSet
	// Scores holds the profile score of every accepted change point.
	Scores map[int]float64
	// PValues holds the permutation p-value of every accepted change
	// point when the permutation test ran.
	PValues map[int]float64
	// Profiles lists every region profile built during the search, in
	// the order they were built. The first one covers the whole
	// sequence.
	Profiles     []RegionProfile
	WindowLength int
	SeriesLength int
	Format       Format
	Info         AlgorithmInfo
}

// Output renders the change points in the requested format.
func (r *Result) Output() []int {
	return r.ChangePoints.Render(r.Format, r.SeriesLength)
}

// ScoreList returns the scores in change point order.
func (r *Result) ScoreList() []float64 {
	out := make([]float64, 0, len(r.ChangePoints))
	for _, cp := range r.ChangePoints {
		out = append(out, r.Scores[cp])
	}
	return out
}

// PValueList returns the permutation p-values in change point order,
// or nil when the permutation test did not run.
func (r *Result) PValueList() []float64 {
	if len(r.PValues) == 0 {
		return nil
	}

	out := make([]float64, 0, len(r.ChangePoints))
	for _, cp := range r.ChangePoints {
		out = append(out, r.PValues[cp])
	}
	return out
}

// Profile returns the score profile over the whole sequence, or nil
// when none was built.
func (r *Result) Profile() []float64 {
	if len(r.Profiles) == 0 || r.Profiles[0].Profile == nil {
		return nil
	}
	return r.Profiles[0].Profile.Scores
}

// Segments returns the segments delimited by the change points.
func (r *Result) Segments() []Segment {
	return r.ChangePoints.Segments(r.SeriesLength)
}
