package spike

import (
	"testing"
)

// Inner passes use a higher relaxation offset so that ripples riding on
// the outer excursion separate into distinct inner spikes.
func innerConfig() Config {
	return Config{
		Thresholds: Thresholds{UpJump: 0.5, UpRelax: 0.25, DownJump: 0.5, DownRelax: 0.25},
		Policy:     PolicyPermissive,
	}
}

func TestAddInnerSpikes_FindsStructureInsideOuterWindow(t *testing.T) {
	// A broad excursion with two jumps riding on top. Outer detection
	// sees one spike; the inner pass resolves the two ripples.
	values := []float64{10.0, 10.75, 10.25, 10.25, 10.875, 10.5, 10.1}
	times := hourlyTimes(len(values))

	outer, err := Detect(times, values, Up, Config{Thresholds: DefaultThresholds(), Policy: PolicyPermissive})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(outer) != 1 {
		t.Fatalf("expected 1 outer spike, got %d", len(outer))
	}

	if err := AddInnerSpikes(outer, Up, innerConfig()); err != nil {
		t.Fatalf("AddInnerSpikes failed: %v", err)
	}

	inner := outer[0].Inner
	if inner == nil {
		t.Fatal("expected inner analysis to be attached")
	}
	if inner.Count() != 2 {
		t.Fatalf("expected 2 inner spikes, got %d", inner.Count())
	}
	if inner.Strongest == nil {
		t.Fatal("expected a strongest inner spike")
	}
	// First ripple: 10.0 → 10.75, amplitude 0.75. Second: 10.25 → 10.875,
	// amplitude 0.625.
	if inner.StrongestAmplitude != 0.75 {
		t.Errorf("expected strongest amplitude 0.75, got %.3f", inner.StrongestAmplitude)
	}
	if inner.Strongest.StartIndex != 0 {
		t.Errorf("expected strongest to start at window index 0, got %d", inner.Strongest.StartIndex)
	}
	if inner.StrongestAmplitude != inner.Strongest.Amplitude() {
		t.Errorf("strongest amplitude %.3f does not match spike amplitude %.3f",
			inner.StrongestAmplitude, inner.Strongest.Amplitude())
	}
}

func TestAddInnerSpikes_TieKeepsFirst(t *testing.T) {
	// Both ripples have amplitude exactly 0.75; the first in scan order
	// must win.
	values := []float64{10.0, 10.75, 10.25, 10.25, 11.0, 10.5, 10.1}
	times := hourlyTimes(len(values))

	outer, err := Detect(times, values, Up, Config{Thresholds: DefaultThresholds(), Policy: PolicyPermissive})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(outer) != 1 {
		t.Fatalf("expected 1 outer spike, got %d", len(outer))
	}

	if err := AddInnerSpikes(outer, Up, innerConfig()); err != nil {
		t.Fatalf("AddInnerSpikes failed: %v", err)
	}

	inner := outer[0].Inner
	if inner.Count() != 2 {
		t.Fatalf("expected 2 inner spikes, got %d", inner.Count())
	}
	if inner.Spikes[0].Amplitude() != inner.Spikes[1].Amplitude() {
		t.Fatalf("test data should tie: %.3f vs %.3f",
			inner.Spikes[0].Amplitude(), inner.Spikes[1].Amplitude())
	}
	if inner.Strongest.StartIndex != inner.Spikes[0].StartIndex {
		t.Error("tie on amplitude should keep the first inner spike")
	}
}

func TestAddInnerSpikes_NoInnerStructure(t *testing.T) {
	// With inner thresholds far above anything in the window, no inner
	// spikes are found but the analysis is still attached.
	values := []float64{10, 10.6, 10.0}
	times := hourlyTimes(len(values))

	outer, err := Detect(times, values, Up, Config{Thresholds: DefaultThresholds(), Policy: PolicyPermissive})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(outer) != 1 {
		t.Fatalf("expected 1 outer spike, got %d", len(outer))
	}

	cfg := Config{
		Thresholds: Thresholds{UpJump: 5, UpRelax: 1, DownJump: 5, DownRelax: 1},
		Policy:     PolicyPermissive,
	}
	if err := AddInnerSpikes(outer, Up, cfg); err != nil {
		t.Fatalf("AddInnerSpikes failed: %v", err)
	}

	inner := outer[0].Inner
	if inner == nil {
		t.Fatal("inner analysis should be attached even when empty")
	}
	if inner.Count() != 0 {
		t.Errorf("expected 0 inner spikes, got %d", inner.Count())
	}
	if inner.Strongest != nil {
		t.Error("expected nil strongest when no inner spikes found")
	}
	if inner.StrongestAmplitude != 0 {
		t.Errorf("expected amplitude 0, got %.3f", inner.StrongestAmplitude)
	}
}
