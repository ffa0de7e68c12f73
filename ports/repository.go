package ports

import (
	"context"

	"github.com/orestischaral/water-temp-analysis/domain/run"
)

// ResultRepository persists completed analysis runs and serves them back
// to the reporting layers.
type ResultRepository interface {
	SaveRun(ctx context.Context, r *run.Run) error
	LatestRun(ctx context.Context) (*run.Run, error)
}
