package spectral

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Spectrum computes the one-sided magnitude spectrum of a sequence for
// seasonality inspection. Frequencies are in cycles per sample, running
// from 0 (DC) to 0.5 (Nyquist); divide by the sampling interval to obtain
// cycles per hour.
func Spectrum(values []float64) (frequencies, magnitudes []float64) {
	n := len(values)
	if n == 0 {
		return nil, nil
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, values)

	frequencies = make([]float64, len(coeff))
	magnitudes = make([]float64, len(coeff))
	for i, c := range coeff {
		frequencies[i] = fft.Freq(i)
		magnitudes[i] = cmplx.Abs(c)
	}
	return frequencies, magnitudes
}
