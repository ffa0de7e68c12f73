package spike

import (
	"time"
)

// Direction of a temperature excursion.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Valid reports whether the direction is one of the two supported values.
func (d Direction) Valid() bool {
	return d == Up || d == Down
}

// Policy selects between the two detector behaviors found in the analyzed
// data set's history. The strict policy enforces sampling-interval
// continuity and a two-point minimum spike length; the permissive policy
// records every triggered excursion, including ones that never relax before
// the sequence ends. Downstream ship-correlation joins depend on the
// permissive policy retaining short excursions.
type Policy string

const (
	PolicyStrict     Policy = "strict"
	PolicyPermissive Policy = "permissive"
)

// Thresholds carries the four detection parameters (°C). All must be
// positive. Outer and inner detection passes are configured independently;
// there is no shared default state.
type Thresholds struct {
	UpJump    float64 `json:"up_jump_threshold"`
	UpRelax   float64 `json:"up_relax_offset"`
	DownJump  float64 `json:"down_jump_threshold"`
	DownRelax float64 `json:"down_relax_offset"`
}

// DefaultThresholds returns the thresholds used by the monitoring campaign
// this tool was built for: 0.5 °C jumps with a 0.2 °C relaxation offset.
func DefaultThresholds() Thresholds {
	return Thresholds{
		UpJump:    0.5,
		UpRelax:   0.2,
		DownJump:  0.5,
		DownRelax: 0.2,
	}
}

// Config parameterizes one detection pass. The zero value of Policy means
// strict. ExpectedStep is the nominal sampling interval; steps outside
// 0.5–1.5 times it are treated as data gaps under the strict policy.
// A zero ExpectedStep defaults to one hour.
type Config struct {
	Thresholds
	Policy       Policy        `json:"policy"`
	ExpectedStep time.Duration `json:"expected_step"`
}

// Spike is one detected excursion. It captures its own sub-sequence of the
// scanned series so that a second, recursive pass can run over it.
// MaxValue and MinValue cover the full captured window, base and end points
// included. A Spike is never mutated after creation except for the
// documented attachment of Inner by AddInnerSpikes.
type Spike struct {
	Direction  Direction   `json:"direction"`
	StartIndex int         `json:"start_index"`
	EndIndex   int         `json:"end_index"`
	StartTime  time.Time   `json:"start_time"`
	EndTime    time.Time   `json:"end_time"`
	BaseValue  float64     `json:"base_value"`
	MaxValue   float64     `json:"max_value"`
	MinValue   float64     `json:"min_value"`
	NumPoints  int         `json:"num_points"`
	Times      []time.Time `json:"times"`
	Values     []float64   `json:"values"`

	// Inner is attached by AddInnerSpikes; nil until that pass runs.
	Inner *InnerAnalysis `json:"inner,omitempty"`
}

// Amplitude is the excursion height: max−base for up spikes, base−min for
// down spikes.
func (s *Spike) Amplitude() float64 {
	if s.Direction == Down {
		return s.BaseValue - s.MinValue
	}
	return s.MaxValue - s.BaseValue
}

// InnerAnalysis summarizes the recursive detection pass over one outer
// spike's captured window. Strongest points into Spikes; it is nil and
// StrongestAmplitude is 0 when no inner spikes were found.
type InnerAnalysis struct {
	Spikes             []Spike `json:"spikes"`
	Strongest          *Spike  `json:"strongest,omitempty"`
	StrongestAmplitude float64 `json:"strongest_amplitude"`
}

// Count returns the number of inner spikes.
func (a *InnerAnalysis) Count() int {
	if a == nil {
		return 0
	}
	return len(a.Spikes)
}
