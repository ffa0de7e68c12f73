package shipping

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/orestischaral/water-temp-analysis/domain/core"
)

// CrossCorrelationResult reports how a temperature sequence co-varies with
// ship presence across time lags. A positive MaxLag means the temperature
// response follows ship presence by that many hours. Correlation is
// normalized by its maximum absolute value, so the peak is ±1 unless the
// signals are degenerate.
type CrossCorrelationResult struct {
	Lags             []float64 `json:"lags"`
	Correlation      []float64 `json:"correlation"`
	MaxCorrelation   float64   `json:"max_correlation"`
	MaxLag           float64   `json:"max_lag"`
	Presence         []int     `json:"presence"`
	PresenceFraction float64   `json:"presence_fraction"`
}

// CrossCorrelate computes the linear (non-circular) cross-correlation
// between a temperature sequence and the binary presence signal derived
// from ship visits, restricted to a symmetric window of ±maxLagHours
// samples around zero lag (hourly sampling assumed).
//
// Both signals are zero-meaned first. The result is absent — a nil result
// with a wrapped sentinel error — when no visits are supplied or none of
// them overlap the timestamp range.
func CrossCorrelate(temperatures []float64, times []time.Time, visits []Visit, maxLagHours int) (*CrossCorrelationResult, error) {
	if len(visits) == 0 {
		return nil, fmt.Errorf("%w: no visits supplied", core.ErrNoShipData)
	}
	n := len(temperatures)
	if n < 2 || len(times) != n {
		return nil, fmt.Errorf("%w: %d temperature points", core.ErrInsufficientData, n)
	}

	presence := BuildPresence(times, visits)
	presentCount := 0
	for _, p := range presence {
		presentCount += p
	}
	if presentCount == 0 {
		return nil, fmt.Errorf("%w: %d visits all outside %s – %s",
			core.ErrNoPresenceOverlap, len(visits), times[0].Format(time.RFC3339), times[n-1].Format(time.RFC3339))
	}

	tempCentered := zeroMean(temperatures)
	presenceCentered := zeroMeanInts(presence)

	// Assume ~1 sample per hour; never scan further than half the series.
	maxLag := maxLagHours
	if half := n / 2; maxLag > half {
		maxLag = half
	}

	lags := make([]float64, 0, 2*maxLag+1)
	correlation := make([]float64, 0, 2*maxLag+1)
	for lag := -maxLag; lag <= maxLag; lag++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			j := i - lag
			if j < 0 || j >= n {
				continue
			}
			sum += tempCentered[i] * presenceCentered[j]
		}
		lags = append(lags, float64(lag))
		correlation = append(correlation, sum)
	}

	if maxAbs := floats.Norm(correlation, math.Inf(1)); maxAbs > 0 {
		floats.Scale(1/maxAbs, correlation)
	}

	peak := 0
	for i, c := range correlation {
		if math.Abs(c) > math.Abs(correlation[peak]) {
			peak = i
		}
	}

	return &CrossCorrelationResult{
		Lags:             lags,
		Correlation:      correlation,
		MaxCorrelation:   correlation[peak],
		MaxLag:           lags[peak],
		Presence:         presence,
		PresenceFraction: float64(presentCount) / float64(n),
	}, nil
}

func zeroMean(values []float64) []float64 {
	mean := floats.Sum(values) / float64(len(values))
	centered := make([]float64, len(values))
	for i, v := range values {
		centered[i] = v - mean
	}
	return centered
}

func zeroMeanInts(values []int) []float64 {
	sum := 0
	for _, v := range values {
		sum += v
	}
	mean := float64(sum) / float64(len(values))
	centered := make([]float64, len(values))
	for i, v := range values {
		centered[i] = float64(v) - mean
	}
	return centered
}
