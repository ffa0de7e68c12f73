// Package run defines the result model of one analysis run: everything the
// reporting, persistence, and HTTP layers consume.
package run

import (
	"time"

	"github.com/orestischaral/water-temp-analysis/domain/core"
	"github.com/orestischaral/water-temp-analysis/domain/shipping"
	"github.com/orestischaral/water-temp-analysis/domain/spectral"
	"github.com/orestischaral/water-temp-analysis/domain/spike"
	"github.com/orestischaral/water-temp-analysis/domain/stratification"
)

// LocationResult carries everything computed for a single location. Error
// is a human-readable reason when this location's analysis failed or
// produced no result; other locations are unaffected.
type LocationResult struct {
	Location   string        `json:"location"`
	Points     int           `json:"points"`
	FilterMode spectral.Mode `json:"filter_mode"`

	UpSpikes   []spike.Spike `json:"up_spikes"`
	DownSpikes []spike.Spike `json:"down_spikes"`

	UpRelations   []shipping.SpikeRelation `json:"up_relations,omitempty"`
	DownRelations []shipping.SpikeRelation `json:"down_relations,omitempty"`

	CrossCorrelation *shipping.CrossCorrelationResult `json:"cross_correlation,omitempty"`

	Error string `json:"error,omitempty"`
}

// Run is the complete output of one analysis invocation.
type Run struct {
	ID             core.RunID               `json:"id"`
	StartedAt      time.Time                `json:"started_at"`
	FinishedAt     time.Time                `json:"finished_at"`
	FilterMode     spectral.Mode            `json:"filter_mode"`
	Locations      []LocationResult         `json:"locations"`
	Stratification []*stratification.Result `json:"stratification,omitempty"`
}

// Location returns the result for the named location, or nil.
func (r *Run) Location(name string) *LocationResult {
	for i := range r.Locations {
		if r.Locations[i].Location == name {
			return &r.Locations[i]
		}
	}
	return nil
}
