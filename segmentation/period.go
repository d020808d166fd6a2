package segmentation

import (
	"math"
	"math/cmplx"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// PeriodEstimator picks a window length from the dominant frequency of
// a sequence.
type PeriodEstimator struct {
	// MinWindow is the smallest window length returned, and half the
	// minimum sequence length accepted.
	MinWindow int
	// Detrend removes a rolling median before the transform so slow
	// drifts do not dominate the spectrum.
	Detrend bool
}

// EstimatePeriod is a shorthand for a PeriodEstimator without
// detrending.
func EstimatePeriod(series []float64, minWindow int) (int, error) {
	return PeriodEstimator{MinWindow: minWindow}.Estimate(series)
}

// Estimate returns round(n/k) for the strongest non-zero frequency bin
// k, clamped to [MinWindow, n/4]. The lowest bin wins ties.
func (p PeriodEstimator) Estimate(series []float64) (int, error) {
	minWindow := p.MinWindow
	if minWindow < 1 {
		minWindow = DefaultMinWindow
	}

	n := len(series)
	if n < 2*minWindow {
		return 0, errors.Wrapf(ErrSequenceTooShort, "%d samples, need at least %d", n, 2*minWindow)
	}

	var signal []float64
	if p.Detrend {
		signal = detrend(series, n/4)
	} else {
		mean := stat.Mean(series, nil)
		signal = make([]float64, n)
		for i, v := range series {
			signal[i] = v - mean
		}
	}

	coeffs := fourier.NewFFT(n).Coefficients(nil, signal)

	bin := 1
	best := -1.0
	for k := 1; k < len(coeffs); k++ {
		if mag := cmplx.Abs(coeffs[k]); mag > best {
			best = mag
			bin = k
		}
	}

	period := int(math.Round(float64(n) / float64(bin)))
	if upper := n / 4; period > upper {
		period = upper
	}
	if period < minWindow {
		period = minWindow
	}

	return period, nil
}
