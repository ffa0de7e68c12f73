package stratification

import (
	"testing"
	"time"

	"github.com/orestischaral/water-temp-analysis/domain/core"
)

func makeSeries(name string, start time.Time, step time.Duration, values []float64) core.Series {
	s := core.Series{Name: name}
	for i, v := range values {
		s.Times = append(s.Times, start.Add(time.Duration(i)*step))
		s.Values = append(s.Values, v)
	}
	return s
}

func TestCompute_ConstantDifferential(t *testing.T) {
	// Surface holds 5 °C, bottom holds 3 °C over identical timestamps:
	// mean 2.0, zero spread, surface warmer every time.
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	surface := makeSeries("surface", start, time.Hour, []float64{5, 5, 5, 5})
	bottom := makeSeries("bottom", start, time.Hour, []float64{3, 3, 3, 3})

	result, err := Compute(surface, bottom)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if result.MeanDiff != 2.0 {
		t.Errorf("expected mean diff 2.0, got %.3f", result.MeanDiff)
	}
	if result.StdDiff != 0 {
		t.Errorf("expected zero std, got %.3f", result.StdDiff)
	}
	if result.MaxDiff != 2.0 || result.MinDiff != 2.0 {
		t.Errorf("expected constant diff 2.0, got min %.3f max %.3f", result.MinDiff, result.MaxDiff)
	}
	if result.Loc1WarmerCount != 4 || result.Loc2WarmerCount != 0 {
		t.Errorf("expected 4/0 warmer counts, got %d/%d", result.Loc1WarmerCount, result.Loc2WarmerCount)
	}
	if result.CommonPoints != 4 || result.SkippedCount != 0 {
		t.Errorf("expected 4 common, 0 skipped, got %d/%d", result.CommonPoints, result.SkippedCount)
	}
	if result.RoundedMatch {
		t.Error("exact intersection must not report rounded matching")
	}
	if len(result.Diff) != len(result.Timestamps) {
		t.Errorf("diff length %d does not match timestamps length %d", len(result.Diff), len(result.Timestamps))
	}
}

func TestCompute_PartialOverlap(t *testing.T) {
	// The bottom series starts two hours later: only the overlapping
	// window contributes, the rest is counted as skipped.
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	surface := makeSeries("surface", start, time.Hour, []float64{5, 6, 7, 8})
	bottom := makeSeries("bottom", start.Add(2*time.Hour), time.Hour, []float64{3, 4, 5, 6})

	result, err := Compute(surface, bottom)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if result.CommonPoints != 2 {
		t.Fatalf("expected 2 common points, got %d", result.CommonPoints)
	}
	// 4 + 4 points total, 2 matched on each side.
	if result.SkippedCount != 4 {
		t.Errorf("expected 4 skipped points, got %d", result.SkippedCount)
	}
	if result.Diff[0] != 7-3 || result.Diff[1] != 8-4 {
		t.Errorf("unexpected diffs %v", result.Diff)
	}
}

func TestCompute_MinuteRoundingFallback(t *testing.T) {
	// Logger clocks drifted by a few seconds: no exact matches, but
	// minute rounding aligns them.
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	surface := makeSeries("surface", start.Add(5*time.Second), time.Hour, []float64{5, 5})
	bottom := makeSeries("bottom", start.Add(-10*time.Second), time.Hour, []float64{3, 3})

	result, err := Compute(surface, bottom)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if !result.RoundedMatch {
		t.Error("expected rounded matching to be reported")
	}
	if result.CommonPoints != 2 {
		t.Errorf("expected 2 common points after rounding, got %d", result.CommonPoints)
	}
	if result.MeanDiff != 2.0 {
		t.Errorf("expected mean diff 2.0, got %.3f", result.MeanDiff)
	}
}

func TestCompute_ExactMatchSuppressesRounding(t *testing.T) {
	// One exact match exists, so rounding must not kick in and merge the
	// off-by-seconds pair.
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	surface := core.Series{
		Name:   "surface",
		Times:  []time.Time{start, start.Add(time.Hour).Add(5 * time.Second)},
		Values: []float64{5, 6},
	}
	bottom := core.Series{
		Name:   "bottom",
		Times:  []time.Time{start, start.Add(time.Hour)},
		Values: []float64{3, 4},
	}

	result, err := Compute(surface, bottom)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if result.RoundedMatch {
		t.Error("exact intersection found, rounding must not be applied")
	}
	if result.CommonPoints != 1 {
		t.Errorf("expected only the exact match, got %d common points", result.CommonPoints)
	}
}

func TestCompute_NoCommonTimestamps(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	surface := makeSeries("surface", start, time.Hour, []float64{5, 5})
	bottom := makeSeries("bottom", start.Add(30*time.Minute), time.Hour, []float64{3, 3})

	result, err := Compute(surface, bottom)
	if result != nil {
		t.Error("expected nil result when nothing aligns")
	}
	if !core.IsAbsent(err) {
		t.Errorf("expected absent-result error, got %v", err)
	}
}

func TestCompute_EmptyInput(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	surface := makeSeries("surface", start, time.Hour, []float64{5, 5})

	result, err := Compute(surface, core.Series{Name: "bottom"})
	if result != nil {
		t.Error("expected nil result for empty input")
	}
	if !core.IsAbsent(err) {
		t.Errorf("expected absent-result error, got %v", err)
	}
}

func TestCompute_Symmetry(t *testing.T) {
	// Swapping the locations negates the mean differential and swaps the
	// warmer counts.
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	surface := makeSeries("surface", start, time.Hour, []float64{5, 6, 4, 7})
	bottom := makeSeries("bottom", start, time.Hour, []float64{3, 7, 4, 5})

	forward, err := Compute(surface, bottom)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	reverse, err := Compute(bottom, surface)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if forward.MeanDiff != -reverse.MeanDiff {
		t.Errorf("mean diff not antisymmetric: %.3f vs %.3f", forward.MeanDiff, reverse.MeanDiff)
	}
	if forward.Loc1WarmerCount != reverse.Loc2WarmerCount ||
		forward.Loc2WarmerCount != reverse.Loc1WarmerCount {
		t.Errorf("warmer counts not swapped: %d/%d vs %d/%d",
			forward.Loc1WarmerCount, forward.Loc2WarmerCount,
			reverse.Loc1WarmerCount, reverse.Loc2WarmerCount)
	}
}

func TestCompute_MixedSigns(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	surface := makeSeries("surface", start, time.Hour, []float64{5, 3, 4})
	bottom := makeSeries("bottom", start, time.Hour, []float64{3, 5, 4})

	result, err := Compute(surface, bottom)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if result.Loc1WarmerCount != 1 || result.Loc2WarmerCount != 1 {
		t.Errorf("expected 1/1 warmer counts, got %d/%d", result.Loc1WarmerCount, result.Loc2WarmerCount)
	}
	if result.MaxDiff != 2 || result.MinDiff != -2 {
		t.Errorf("expected diff range [-2,2], got [%.1f,%.1f]", result.MinDiff, result.MaxDiff)
	}
}
