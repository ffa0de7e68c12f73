// Package ports declares the interfaces between the analysis core and its
// external collaborators: data ingestion and result persistence.
package ports

import (
	"context"

	"github.com/orestischaral/water-temp-analysis/domain/core"
	"github.com/orestischaral/water-temp-analysis/domain/shipping"
)

// TemperatureReader supplies one merged, time-sorted series per configured
// location. Merging of multiple raw sources, column selection, and file
// parsing are the reader's responsibility, not the core's.
type TemperatureReader interface {
	ReadLocations(ctx context.Context) (map[string]core.Series, error)
}

// ShipScheduleReader supplies the ship visit intervals used for
// correlation and spike joins.
type ShipScheduleReader interface {
	ReadVisits(ctx context.Context) ([]shipping.Visit, error)
}
