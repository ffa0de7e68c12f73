package spectral

import (
	"fmt"
	"math"
	"math/cmplx"
	"time"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Mode selects which periodic components are removed before downstream
// analysis.
type Mode string

const (
	ModeNone     Mode = "none"
	ModeDiurnal  Mode = "diurnal"
	ModeSeasonal Mode = "seasonal"
	ModeBoth     Mode = "both"
)

// Valid reports whether the mode is one of the supported selectors.
func (m Mode) Valid() bool {
	switch m {
	case ModeNone, ModeDiurnal, ModeSeasonal, ModeBoth:
		return true
	}
	return false
}

// DefaultSeasonalPercentile is the magnitude percentile above which
// frequency components are considered dominant ("seasonal") and removed.
const DefaultSeasonalPercentile = 90

// FilterResult pairs a filtered sequence with the time-domain component
// that was removed from it. Both have the same length as the input, and
// Filtered + Component reconstructs the input up to floating-point
// round-off.
type FilterResult struct {
	Filtered  []float64 `json:"filtered"`
	Component []float64 `json:"component"`
}

// RemoveDiurnalCycle extracts the 24-hour periodic component from a
// temperature sequence and returns the detrended remainder alongside the
// component itself.
//
// The sampling interval is derived from the full time span,
// (times[n−1]−times[0])/(n−1) in hours, and the frequency bin closest to
// 1/24 cycles per hour is isolated. Conjugate symmetry is implicit in the
// half-complex spectrum, so the reconstructed component is real-valued and
// detrended + component == values within round-off.
func RemoveDiurnalCycle(values []float64, times []time.Time) (detrended, component []float64) {
	n := len(values)
	if n < 2 || len(times) != n {
		return cloneValues(values), make([]float64, n)
	}

	dt := times[n-1].Sub(times[0]).Hours() / float64(n-1)
	if dt <= 0 {
		dt = 1.0
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, values)

	// Target frequency in cycles per sample: one cycle per 24 hours.
	target := dt / 24.0
	best := 0
	bestDist := math.Inf(1)
	for i := range coeff {
		if d := math.Abs(fft.Freq(i) - target); d < bestDist {
			bestDist = d
			best = i
		}
	}

	componentSpectrum := make([]complex128, len(coeff))
	componentSpectrum[best] = coeff[best]

	component = fft.Sequence(nil, componentSpectrum)
	scale := 1.0 / float64(n)
	detrended = make([]float64, n)
	for i := range component {
		component[i] *= scale
		detrended[i] = values[i] - component[i]
	}
	return detrended, component
}

// RemoveSeasonality zeroes every frequency bin whose (smoothed) magnitude
// exceeds the given percentile of the magnitude spectrum and reconstructs
// the remainder. It returns the deseasonalized sequence and, per
// coefficient, the magnitude that was removed (0 for kept bins).
//
// The magnitude spectrum is smoothed with a 5-point boxcar before
// thresholding when the sequence is long enough, so isolated noisy bins do
// not distort the percentile.
func RemoveSeasonality(values []float64, percentile float64) (deseasonalized, removedMagnitude []float64) {
	n := len(values)
	if n < 2 {
		return cloneValues(values), nil
	}
	if percentile <= 0 {
		percentile = DefaultSeasonalPercentile
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, values)

	magnitude := make([]float64, len(coeff))
	for i, c := range coeff {
		magnitude[i] = cmplx.Abs(c)
	}

	smoothed := magnitude
	if n > 5 {
		smoothed = boxcarSmooth(magnitude, 5)
	}

	threshold, err := stats.Percentile(stats.Float64Data(smoothed), percentile)
	if err != nil {
		// Percentile only fails on empty input; keep the sequence untouched.
		return cloneValues(values), make([]float64, len(coeff))
	}

	removedMagnitude = make([]float64, len(coeff))
	kept := make([]complex128, len(coeff))
	copy(kept, coeff)
	for i := range kept {
		if smoothed[i] > threshold {
			removedMagnitude[i] = magnitude[i]
			kept[i] = 0
		}
	}

	deseasonalized = fft.Sequence(nil, kept)
	scale := 1.0 / float64(n)
	for i := range deseasonalized {
		deseasonalized[i] *= scale
	}
	return deseasonalized, removedMagnitude
}

// Apply runs the selected filter over a temperature sequence. ModeBoth
// removes the diurnal cycle first and deseasonalizes the detrended result;
// the order is significant. ModeNone returns the input values unchanged
// with a zero component.
func Apply(values []float64, times []time.Time, mode Mode) (FilterResult, error) {
	switch mode {
	case ModeNone, "":
		return FilterResult{
			Filtered:  cloneValues(values),
			Component: make([]float64, len(values)),
		}, nil
	case ModeDiurnal:
		filtered, component := RemoveDiurnalCycle(values, times)
		return FilterResult{Filtered: filtered, Component: component}, nil
	case ModeSeasonal:
		filtered, _ := RemoveSeasonality(values, DefaultSeasonalPercentile)
		return FilterResult{Filtered: filtered, Component: residual(values, filtered)}, nil
	case ModeBoth:
		detrended, _ := RemoveDiurnalCycle(values, times)
		filtered, _ := RemoveSeasonality(detrended, DefaultSeasonalPercentile)
		return FilterResult{Filtered: filtered, Component: residual(values, filtered)}, nil
	}
	return FilterResult{}, fmt.Errorf("unknown filter mode %q", mode)
}

// boxcarSmooth convolves magnitudes with a width-point moving average,
// zero-padded at the edges so output length equals input length.
func boxcarSmooth(values []float64, width int) []float64 {
	half := width / 2
	smoothed := make([]float64, len(values))
	for i := range values {
		sum := 0.0
		for j := i - half; j <= i+half; j++ {
			if j >= 0 && j < len(values) {
				sum += values[j]
			}
		}
		smoothed[i] = sum / float64(width)
	}
	return smoothed
}

func residual(values, filtered []float64) []float64 {
	component := make([]float64, len(values))
	for i := range values {
		component[i] = values[i] - filtered[i]
	}
	return component
}

func cloneValues(values []float64) []float64 {
	cloned := make([]float64, len(values))
	copy(cloned, values)
	return cloned
}
