package excel

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/orestischaral/water-temp-analysis/domain/shipping"
	"github.com/orestischaral/water-temp-analysis/internal"
	"github.com/orestischaral/water-temp-analysis/internal/errors"
)

// ShipScheduleReader reads the port authority schedule workbook.
type ShipScheduleReader struct {
	cfg    ShipsConfig
	logger *internal.Logger
}

// NewShipScheduleReader creates a reader over the given schedule config.
func NewShipScheduleReader(cfg ShipsConfig, logger *internal.Logger) *ShipScheduleReader {
	if cfg.Sheet == "" {
		cfg.Sheet = DefaultShipsConfig().Sheet
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ShipScheduleReader{cfg: cfg, logger: logger}
}

// ReadVisits parses the schedule into visit intervals. A missing or
// unconfigured schedule file yields an empty slice, not an error, so
// the temperature analysis can still run without ship data.
func (r *ShipScheduleReader) ReadVisits(ctx context.Context) ([]shipping.Visit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.cfg.File == "" {
		return nil, nil
	}
	if _, err := os.Stat(r.cfg.File); os.IsNotExist(err) {
		r.logger.Warn("ship schedule file not found: %s", r.cfg.File)
		return nil, nil
	}

	f, err := excelize.OpenFile(r.cfg.File)
	if err != nil {
		return nil, errors.IngestError(r.cfg.File, err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.cfg.Sheet)
	if err != nil {
		return nil, errors.IngestError(r.cfg.File, fmt.Errorf("failed to read sheet %s: %w", r.cfg.Sheet, err))
	}

	visits := parseScheduleRows(rows, r.cfg)
	r.logger.Info("loaded %d ship visits from %s", len(visits), r.cfg.File)
	return visits, nil
}

// parseScheduleRows converts raw schedule rows into visits. The first
// row is a header. Rows with a missing or reversed interval are skipped.
func parseScheduleRows(rows [][]string, cfg ShipsConfig) []shipping.Visit {
	var visits []shipping.Visit
	if len(rows) < 2 {
		return visits
	}

	maxCol := cfg.NameCol
	if cfg.ETACol > maxCol {
		maxCol = cfg.ETACol
	}
	if cfg.ETDCol > maxCol {
		maxCol = cfg.ETDCol
	}

	for _, row := range rows[1:] {
		if maxCol >= len(row) {
			continue
		}
		eta, err := parseTimestamp(strings.TrimSpace(row[cfg.ETACol]))
		if err != nil {
			continue
		}
		etd, err := parseTimestamp(strings.TrimSpace(row[cfg.ETDCol]))
		if err != nil {
			continue
		}
		visit := shipping.Visit{
			Ship: strings.TrimSpace(row[cfg.NameCol]),
			ETA:  eta,
			ETD:  etd,
		}
		if !visit.Valid() {
			continue
		}
		visits = append(visits, visit)
	}
	return visits
}
