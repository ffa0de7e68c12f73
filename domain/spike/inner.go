package spike

// AddInnerSpikes re-runs detection over each outer spike's captured window
// with its own, independently configurable thresholds, then attaches the
// results. The strongest inner spike is the one with the largest amplitude;
// ties keep the first encountered in scan order. Outer spikes with no inner
// structure get an InnerAnalysis with a nil Strongest and amplitude 0.
//
// This is the only mutation a Spike sees after creation.
func AddInnerSpikes(outer []Spike, direction Direction, cfg Config) error {
	for idx := range outer {
		inner, err := Detect(outer[idx].Times, outer[idx].Values, direction, cfg)
		if err != nil {
			return err
		}

		analysis := &InnerAnalysis{Spikes: inner}
		for j := range analysis.Spikes {
			amp := analysis.Spikes[j].Amplitude()
			if analysis.Strongest == nil || amp > analysis.StrongestAmplitude {
				analysis.Strongest = &analysis.Spikes[j]
				analysis.StrongestAmplitude = amp
			}
		}
		outer[idx].Inner = analysis
	}
	return nil
}
