package shipping

import (
	"time"

	"github.com/orestischaral/water-temp-analysis/domain/spike"
)

// SpikeRelation joins one detected spike to the ships whose visit interval
// intersected it. Ships is empty, not nil, when no visit overlapped.
type SpikeRelation struct {
	SeriesLabel string    `json:"series_label"`
	SpikeID     int       `json:"spike_id"`
	SpikeStart  time.Time `json:"spike_start"`
	SpikeEnd    time.Time `json:"spike_end"`
	Ships       []string  `json:"overlapping_ships"`
}

// BuildSpikeRelations relates spikes to ship visits: a visit overlaps a
// spike when [ETA, ETD] intersects [spike start, spike end]. Spike IDs are
// 1-based in scan order. With no visits the result is empty; invalid
// visits are skipped.
func BuildSpikeRelations(spikes []spike.Spike, visits []Visit, label string) []SpikeRelation {
	relations := make([]SpikeRelation, 0, len(spikes))
	if len(visits) == 0 {
		return relations
	}

	for i := range spikes {
		s := &spikes[i]
		ships := []string{}
		for _, v := range visits {
			if !v.Valid() {
				continue
			}
			if !v.ETA.After(s.EndTime) && !v.ETD.Before(s.StartTime) {
				ships = append(ships, v.Ship)
			}
		}
		relations = append(relations, SpikeRelation{
			SeriesLabel: label,
			SpikeID:     i + 1,
			SpikeStart:  s.StartTime,
			SpikeEnd:    s.EndTime,
			Ships:       ships,
		})
	}
	return relations
}
