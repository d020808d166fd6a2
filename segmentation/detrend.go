package segmentation

// maxDetrendWidth caps the rolling median window so detrending stays
// linear in the sequence length for long inputs.
const maxDetrendWidth = 501

// detrend subtracts a centered rolling median of the given width from
// the series and returns the residual in a new slice. Widths are forced
// odd; the window shrinks at the edges of the series.
func detrend(series []float64, width int) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 {
		return out
	}
	if width > maxDetrendWidth {
		width = maxDetrendWidth
	}
	if width < 1 {
		width = 1
	}
	half := width / 2

	window := make(sortedList, 0, 2*half+1)
	end := half + 1
	if end > len(series) {
		end = len(series)
	}
	window.Insert(series[:end]...)

	for i := range series {
		out[i] = series[i] - window.Median()

		if next := i + half + 1; next < len(series) {
			window.Insert(series[next])
		}
		if prev := i - half; prev >= 0 {
			window.Remove(series[prev])
		}
	}

	return out
}
