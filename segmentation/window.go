package segmentation

import "github.com/pkg/errors"

// WindowMatrix is a read-only view over a sequence where row i is the
// subsequence series[i:i+w]. Rows alias the underlying sequence, so a
// matrix is safe to share between scoring workers as long as nobody
// writes to the sequence.
type WindowMatrix struct {
	series []float64
	width  int
}

// NewWindowMatrix builds the sliding window embedding of series with
// windows of length w.
func NewWindowMatrix(series []float64, w int) (*WindowMatrix, error) {
	if w < 1 {
		return nil, errors.Wrapf(ErrInvalidWindowLength, "window length %d", w)
	}
	if len(series) < 2*w {
		return nil, errors.Wrapf(ErrInsufficientLength, "%d samples cannot hold two windows of length %d", len(series), w)
	}

	return &WindowMatrix{series: series, width: w}, nil
}

// Rows returns the number of windows, n-w+1.
func (m *WindowMatrix) Rows() int { return len(m.series) - m.width + 1 }

// Width returns the window length.
func (m *WindowMatrix) Width() int { return m.width }

// Len returns the length of the underlying sequence.
func (m *WindowMatrix) Len() int { return len(m.series) }

// Row returns window i. The returned slice must not be modified.
func (m *WindowMatrix) Row(i int) []float64 { return m.series[i : i+m.width : i+m.width] }
