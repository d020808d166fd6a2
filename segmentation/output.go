package segmentation

import "sort"

// ChangePointSet is a strictly increasing list of change point indexes.
type ChangePointSet []int

// NewChangePointSet sorts and deduplicates the indexes.
func NewChangePointSet(indexes ...int) ChangePointSet {
	out := append(ChangePointSet{}, indexes...)
	sort.Ints(out)

	deduped := out[:0]
	for i, cp := range out {
		if i > 0 && cp == out[i-1] {
			continue
		}
		deduped = append(deduped, cp)
	}
	return deduped
}

// Sparse returns a copy of the indexes.
func (s ChangePointSet) Sparse() []int { return append([]int{}, s...) }

// Dense returns, for every index of a sequence of length n, the number
// of change points at or before it: the segment id of that sample.
func (s ChangePointSet) Dense(n int) []int {
	out := make([]int, n)
	next := 0
	for i := range out {
		for next < len(s) && s[next] <= i {
			next++
		}
		out[i] = next
	}
	return out
}

// Render produces the sparse or dense form.
func (s ChangePointSet) Render(f Format, n int) []int {
	if f == FormatDense {
		return s.Dense(n)
	}
	return s.Sparse()
}

// FromDense recovers the change points from a dense segment id
// sequence: every index where the id changes, plus index 0 when the
// first sample already belongs to a later segment.
func FromDense(dense []int) ChangePointSet {
	out := ChangePointSet{}
	for i, id := range dense {
		if (i == 0 && id > 0) || (i > 0 && id != dense[i-1]) {
			out = append(out, i)
		}
	}
	return out
}

// Segment is the half open interval [Start, End) of one segment.
type Segment struct {
	Start int `bson:"start" json:"start" yaml:"start"`
	End   int `bson:"end" json:"end" yaml:"end"`
}

// Segments splits [0,n) at the change points.
func (s ChangePointSet) Segments(n int) []Segment {
	out := make([]Segment, 0, len(s)+1)
	start := 0
	for _, cp := range s {
		if cp <= start || cp >= n {
			continue
		}
		out = append(out, Segment{Start: start, End: cp})
		start = cp
	}
	return append(out, Segment{Start: start, End: n})
}
