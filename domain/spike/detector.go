package spike

import (
	"fmt"
	"time"

	"github.com/orestischaral/water-temp-analysis/domain/core"
)

// Sampling-interval tolerance for the strict policy: a step is continuous
// when it falls within 0.5–1.5 times the expected interval. Anything
// outside that window is a data gap, not a spike.
const (
	minStepFactor = 0.5
	maxStepFactor = 1.5
)

// Detect scans a single value sequence for threshold-triggered excursions
// in one direction.
//
// direction "up":
//
//	trigger when values[i+1] − values[i] ≥ cfg.UpJump
//	extend while value > base + cfg.UpRelax
//
// direction "down":
//
//	trigger when values[i+1] − values[i] ≤ −cfg.DownJump
//	extend while value < base − cfg.DownRelax
//
// Under PolicyStrict the trigger additionally requires the step
// times[i+1]−times[i] to be continuous, continuity must hold at every
// extension step (the first break terminates the spike one index early),
// and a spike must span at least two points. PolicyPermissive applies none
// of those checks.
//
// Sequences shorter than two points, or constant sequences, yield zero
// spikes and no error. Spikes never overlap: scanning resumes past the end
// of each recorded excursion.
func Detect(times []time.Time, values []float64, direction Direction, cfg Config) ([]Spike, error) {
	if !direction.Valid() {
		return nil, fmt.Errorf("%w, got %q", core.ErrInvalidDirection, direction)
	}
	if len(times) != len(values) {
		return nil, core.NewValidationError("times", fmt.Sprintf("length %d does not match values length %d", len(times), len(values)))
	}

	n := len(values)
	if n < 2 {
		return nil, nil
	}

	strict := cfg.Policy != PolicyPermissive
	step := cfg.ExpectedStep
	if step <= 0 {
		step = time.Hour
	}
	minStep := time.Duration(minStepFactor * float64(step))
	maxStep := time.Duration(maxStepFactor * float64(step))

	var spikes []Spike
	i := 0
	for i < n-1 {
		delta := values[i+1] - values[i]

		var triggered bool
		var cutoff float64
		base := values[i]
		if direction == Up {
			triggered = delta >= cfg.UpJump
			cutoff = base + cfg.UpRelax
		} else {
			triggered = delta <= -cfg.DownJump
			cutoff = base - cfg.DownRelax
		}
		if strict && triggered {
			triggered = stepContinuous(times[i], times[i+1], minStep, maxStep)
		}
		if !triggered {
			i++
			continue
		}

		start := i
		end := start + 1
		for end < n {
			if strict && !stepContinuous(times[end-1], times[end], minStep, maxStep) {
				// Data gap: step back to the last continuous point.
				end--
				break
			}
			if direction == Up && values[end] <= cutoff {
				break
			}
			if direction == Down && values[end] >= cutoff {
				break
			}
			end++
		}
		if end == n {
			// Never relaxed: the spike runs to the end of the sequence.
			end = n - 1
		}

		if !strict || end > start {
			spikes = append(spikes, newSpike(times, values, direction, start, end, base))
		}
		i = end + 1
	}

	return spikes, nil
}

// newSpike captures the [start, end] window as a fresh Spike. Max and min
// are taken over the whole window so that every point of the excursion,
// base and relaxation points included, lies within [MinValue, MaxValue].
func newSpike(times []time.Time, values []float64, direction Direction, start, end int, base float64) Spike {
	window := values[start : end+1]
	maxV, minV := window[0], window[0]
	for _, v := range window[1:] {
		if v > maxV {
			maxV = v
		}
		if v < minV {
			minV = v
		}
	}

	capturedTimes := make([]time.Time, end-start+1)
	copy(capturedTimes, times[start:end+1])
	capturedValues := make([]float64, end-start+1)
	copy(capturedValues, window)

	return Spike{
		Direction:  direction,
		StartIndex: start,
		EndIndex:   end,
		StartTime:  times[start],
		EndTime:    times[end],
		BaseValue:  base,
		MaxValue:   maxV,
		MinValue:   minV,
		NumPoints:  end - start + 1,
		Times:      capturedTimes,
		Values:     capturedValues,
	}
}

func stepContinuous(from, to time.Time, minStep, maxStep time.Duration) bool {
	d := to.Sub(from)
	return d >= minStep && d <= maxStep
}
