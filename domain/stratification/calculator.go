// Package stratification computes temperature differentials between pairs
// of monitoring locations whose series were sampled independently.
package stratification

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/orestischaral/water-temp-analysis/domain/core"
)

// Result is the aligned differential between two named locations.
// Diff holds loc1 − loc2 at each common timestamp; its length always
// equals len(Timestamps) and CommonPoints.
type Result struct {
	Loc1Name        string      `json:"loc1_name"`
	Loc2Name        string      `json:"loc2_name"`
	Timestamps      []time.Time `json:"timestamps"`
	Diff            []float64   `json:"diff"`
	MeanDiff        float64     `json:"mean_diff"`
	MaxDiff         float64     `json:"max_diff"`
	MinDiff         float64     `json:"min_diff"`
	StdDiff         float64     `json:"std_diff"`
	Loc1WarmerCount int         `json:"loc1_warmer_count"`
	Loc2WarmerCount int         `json:"loc2_warmer_count"`
	CommonPoints    int         `json:"common_points"`
	SkippedCount    int         `json:"skipped_count"`
	RoundedMatch    bool        `json:"rounded_match"`
}

// Compute aligns two independently sampled series on their common
// timestamps and returns the pointwise and aggregate differential
// (loc1 − loc2).
//
// Exact timestamp intersection is attempted first. Only when it yields
// nothing are both series re-keyed on timestamps rounded to the nearest
// minute; rounding is never applied once exact matching has succeeded, so
// distinct timestamps are not silently merged. If even the rounded
// intersection is empty, or either input is empty, the result is absent:
// a nil Result with a wrapped core sentinel error.
func Compute(loc1, loc2 core.Series) (*Result, error) {
	if loc1.IsEmpty() || loc2.IsEmpty() {
		return nil, fmt.Errorf("%w: missing temperature data for %q or %q",
			core.ErrInsufficientData, loc1.Name, loc2.Name)
	}

	timestamps, values1, values2 := intersect(loc1, loc2, false)
	rounded := false
	if len(timestamps) == 0 {
		timestamps, values1, values2 = intersect(loc1, loc2, true)
		rounded = true
		if len(timestamps) == 0 {
			return nil, fmt.Errorf("%w: %q and %q do not align even at minute resolution",
				core.ErrNoCommonTimestamps, loc1.Name, loc2.Name)
		}
	}

	diff := make([]float64, len(timestamps))
	loc1Warmer, loc2Warmer := 0, 0
	for i := range diff {
		diff[i] = values1[i] - values2[i]
		switch {
		case diff[i] > 0:
			loc1Warmer++
		case diff[i] < 0:
			loc2Warmer++
		}
	}

	data := stats.Float64Data(diff)
	meanDiff, err := stats.Mean(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInsufficientData, err)
	}
	maxDiff, _ := stats.Max(data)
	minDiff, _ := stats.Min(data)
	stdDiff, _ := stats.StandardDeviationPopulation(data)

	common := len(timestamps)
	return &Result{
		Loc1Name:        loc1.Name,
		Loc2Name:        loc2.Name,
		Timestamps:      timestamps,
		Diff:            diff,
		MeanDiff:        meanDiff,
		MaxDiff:         maxDiff,
		MinDiff:         minDiff,
		StdDiff:         stdDiff,
		Loc1WarmerCount: loc1Warmer,
		Loc2WarmerCount: loc2Warmer,
		CommonPoints:    common,
		SkippedCount:    loc1.Len() + loc2.Len() - 2*common,
		RoundedMatch:    rounded,
	}, nil
}

// intersect returns the common timestamps of the two series in ascending
// order with the corresponding values from each. With round set, both
// series are keyed on timestamps rounded to the nearest minute. When a
// series carries duplicate keys the first occurrence wins.
func intersect(loc1, loc2 core.Series, round bool) ([]time.Time, []float64, []float64) {
	key := func(t time.Time) int64 {
		if round {
			t = t.Round(time.Minute)
		}
		return t.UnixNano()
	}

	byTime := make(map[int64]float64, loc2.Len())
	for i := 0; i < loc2.Len(); i++ {
		k := key(loc2.Times[i])
		if _, ok := byTime[k]; !ok {
			byTime[k] = loc2.Values[i]
		}
	}

	var (
		timestamps []time.Time
		values1    []float64
		values2    []float64
	)
	seen := make(map[int64]bool)
	for i := 0; i < loc1.Len(); i++ {
		k := key(loc1.Times[i])
		v2, ok := byTime[k]
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		t := loc1.Times[i]
		if round {
			t = t.Round(time.Minute)
		}
		timestamps = append(timestamps, t)
		values1 = append(values1, loc1.Values[i])
		values2 = append(values2, v2)
	}
	return timestamps, values1, values2
}
