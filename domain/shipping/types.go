// Package shipping correlates temperature anomalies with ship traffic:
// arrival/departure intervals become a binary presence signal that is
// cross-correlated against temperature, and individual spikes are joined
// to the visits overlapping them.
package shipping

import (
	"time"
)

// Visit is one ship call: the interval between estimated arrival (ETA) and
// departure (ETD). The name is display text passed through untouched.
// A visit with a missing bound is skipped by all consumers.
type Visit struct {
	Ship string    `json:"ship"`
	ETA  time.Time `json:"eta"`
	ETD  time.Time `json:"etd"`
}

// Valid reports whether both bounds are present and ordered.
func (v Visit) Valid() bool {
	return !v.ETA.IsZero() && !v.ETD.IsZero() && !v.ETD.Before(v.ETA)
}

// Covers reports whether t falls within the visit interval, bounds
// inclusive.
func (v Visit) Covers(t time.Time) bool {
	return !t.Before(v.ETA) && !t.After(v.ETD)
}

// BuildPresence derives the binary ship-presence signal aligned with the
// given timestamps: 1 where any valid visit covers the timestamp, 0
// elsewhere.
func BuildPresence(times []time.Time, visits []Visit) []int {
	presence := make([]int, len(times))
	for _, v := range visits {
		if !v.Valid() {
			continue
		}
		for i, t := range times {
			if v.Covers(t) {
				presence[i] = 1
			}
		}
	}
	return presence
}
