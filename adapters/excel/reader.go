// Package excel ingests temperature logger exports and ship schedules
// from xlsx workbooks.
package excel

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/orestischaral/water-temp-analysis/domain/core"
	"github.com/orestischaral/water-temp-analysis/internal"
	"github.com/orestischaral/water-temp-analysis/internal/errors"
)

// Logger timestamps show up either as formatted strings or as raw
// Excel serial numbers, depending on how the export was produced.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"01-02-06 15:04:05",
	time.RFC3339,
}

// TemperatureReader reads the configured logger exports and merges them
// into one time-sorted series per location.
type TemperatureReader struct {
	cfg    *DataSourcesConfig
	logger *internal.Logger
}

// NewTemperatureReader creates a reader over the given sources config.
func NewTemperatureReader(cfg *DataSourcesConfig, logger *internal.Logger) *TemperatureReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &TemperatureReader{cfg: cfg, logger: logger}
}

// ReadLocations reads every configured source and groups the resulting
// series by location. Sources sharing a location are merged and sorted
// by timestamp.
func (r *TemperatureReader) ReadLocations(ctx context.Context) (map[string]core.Series, error) {
	byLocation := make(map[string][]core.Series)

	for _, src := range r.cfg.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		series, err := r.readSource(src)
		if err != nil {
			return nil, errors.IngestError(src.ExcelFile, err)
		}
		r.logger.Info("ingested %d points from %s (%s)", series.Len(), src.ExcelFile, src.Location)
		byLocation[src.Location] = append(byLocation[src.Location], series)
	}

	out := make(map[string]core.Series, len(byLocation))
	for location, parts := range byLocation {
		out[location] = core.MergeSeries(location, parts...)
	}
	return out, nil
}

func (r *TemperatureReader) readSource(src SourceConfig) (core.Series, error) {
	if _, err := os.Stat(src.ExcelFile); os.IsNotExist(err) {
		return core.Series{}, fmt.Errorf("excel file not found: %s", src.ExcelFile)
	}

	f, err := excelize.OpenFile(src.ExcelFile)
	if err != nil {
		return core.Series{}, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(src.SheetName)
	if err != nil {
		return core.Series{}, fmt.Errorf("failed to read sheet %s: %w", src.SheetName, err)
	}

	return parseSourceRows(rows, src)
}

// parseSourceRows converts raw sheet rows into a series. The first row
// is a header and the second carries units, so data starts at row 3.
// Rows with unparseable timestamps or values are skipped with a count.
func parseSourceRows(rows [][]string, src SourceConfig) (core.Series, error) {
	if len(rows) < 3 {
		return core.Series{}, fmt.Errorf("sheet %s has no data rows", src.SheetName)
	}

	name := src.Series
	if name == "" {
		name = src.Location
	}
	series := core.Series{Name: name}
	skipped := 0

	for _, row := range rows[2:] {
		if src.DtCol >= len(row) || src.TempCol >= len(row) {
			skipped++
			continue
		}
		ts, err := parseTimestamp(strings.TrimSpace(row[src.DtCol]))
		if err != nil {
			skipped++
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(row[src.TempCol]), 64)
		if err != nil {
			skipped++
			continue
		}
		series.Times = append(series.Times, ts)
		series.Values = append(series.Values, value)
	}

	if series.IsEmpty() {
		return core.Series{}, fmt.Errorf("no parseable rows in sheet %s", src.SheetName)
	}
	if skipped > 0 {
		internal.DefaultLogger.Warn("skipped %d unparseable rows in %s", skipped, src.ExcelFile)
	}
	return series, nil
}

// parseTimestamp tries the known string layouts first, then falls back
// to interpreting the cell as an Excel serial date number.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}
