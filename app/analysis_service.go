// Package app orchestrates ingestion, filtering, detection, and
// persistence into complete analysis runs.
package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orestischaral/water-temp-analysis/domain/core"
	"github.com/orestischaral/water-temp-analysis/domain/run"
	"github.com/orestischaral/water-temp-analysis/domain/shipping"
	"github.com/orestischaral/water-temp-analysis/domain/spectral"
	"github.com/orestischaral/water-temp-analysis/domain/spike"
	"github.com/orestischaral/water-temp-analysis/domain/stratification"
	"github.com/orestischaral/water-temp-analysis/internal"
	"github.com/orestischaral/water-temp-analysis/internal/config"
	"github.com/orestischaral/water-temp-analysis/ports"
)

// AnalysisService runs the full pipeline: read every location, filter,
// detect outer and inner spikes, correlate with ship presence, compute
// stratification between configured pairs, and optionally persist.
type AnalysisService struct {
	temps  ports.TemperatureReader
	ships  ports.ShipScheduleReader
	repo   ports.ResultRepository
	cfg    config.AnalysisConfig
	logger *internal.Logger
}

// NewAnalysisService wires the service. repo may be nil, in which case
// runs are not persisted.
func NewAnalysisService(temps ports.TemperatureReader, ships ports.ShipScheduleReader, repo ports.ResultRepository, cfg config.AnalysisConfig, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{temps: temps, ships: ships, repo: repo, cfg: cfg, logger: logger}
}

// Run executes one complete analysis over all configured locations.
// Per-location failures are recorded on the location result and do not
// abort the run; only ingestion failures and context cancellation do.
func (s *AnalysisService) Run(ctx context.Context) (*run.Run, error) {
	mode, err := s.cfg.FilterMode()
	if err != nil {
		return nil, err
	}

	started := time.Now()
	locations, err := s.temps.ReadLocations(ctx)
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, fmt.Errorf("%w: no locations ingested", core.ErrInsufficientData)
	}

	visits, err := s.ships.ReadVisits(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("analyzing %d locations with %d ship visits, filter=%s", len(locations), len(visits), mode)

	names := make([]string, 0, len(locations))
	for name := range locations {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]run.LocationResult, len(names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := s.analyzeLocation(name, locations[name], visits, mode)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rn := &run.Run{
		ID:         core.NewRunID(),
		StartedAt:  started,
		FilterMode: mode,
		Locations:  results,
	}
	rn.Stratification = s.computeStratification(locations)
	rn.FinishedAt = time.Now()

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, rn); err != nil {
			return nil, err
		}
		s.logger.Info("run %s persisted", rn.ID)
	}
	return rn, nil
}

// analyzeLocation runs the single-location pipeline. Errors become part
// of the result rather than propagating; an expected absence (no ship
// overlap, no ship data) leaves the correlation nil without marking the
// location as failed.
func (s *AnalysisService) analyzeLocation(name string, series core.Series, visits []shipping.Visit, mode spectral.Mode) run.LocationResult {
	res := run.LocationResult{
		Location:   name,
		Points:     series.Len(),
		FilterMode: mode,
	}

	filtered, err := spectral.Apply(series.Values, series.Times, mode)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	outerCfg := s.cfg.OuterDetection()
	innerCfg := s.cfg.InnerDetection()

	for _, direction := range []spike.Direction{spike.Up, spike.Down} {
		spikes, err := spike.Detect(series.Times, filtered.Filtered, direction, outerCfg)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		if err := spike.AddInnerSpikes(spikes, direction, innerCfg); err != nil {
			res.Error = err.Error()
			return res
		}
		label := name + "/" + string(direction)
		relations := shipping.BuildSpikeRelations(spikes, visits, label)
		if direction == spike.Up {
			res.UpSpikes = spikes
			res.UpRelations = relations
		} else {
			res.DownSpikes = spikes
			res.DownRelations = relations
		}
	}

	corr, err := shipping.CrossCorrelate(filtered.Filtered, series.Times, visits, s.cfg.MaxLagHours)
	switch {
	case err == nil:
		res.CrossCorrelation = corr
	case core.IsAbsent(err):
		s.logger.Debug("no ship correlation for %s: %v", name, err)
	default:
		res.Error = err.Error()
		return res
	}

	s.logger.Info("%s: %d up spikes, %d down spikes over %d points",
		name, len(res.UpSpikes), len(res.DownSpikes), res.Points)
	return res
}

// computeStratification evaluates every configured location pair over
// the raw (unfiltered) series. Pairs that share no timestamps are
// skipped with a log line rather than failing the run.
func (s *AnalysisService) computeStratification(locations map[string]core.Series) []*stratification.Result {
	var out []*stratification.Result
	for _, pair := range s.cfg.StratificationPairs {
		loc1, ok1 := locations[pair[0]]
		loc2, ok2 := locations[pair[1]]
		if !ok1 || !ok2 {
			s.logger.Warn("stratification pair %s/%s references unknown location", pair[0], pair[1])
			continue
		}
		result, err := stratification.Compute(loc1, loc2)
		if err != nil {
			if core.IsAbsent(err) {
				s.logger.Info("no stratification for %s/%s: %v", pair[0], pair[1], err)
			} else {
				s.logger.Warn("stratification %s/%s failed: %v", pair[0], pair[1], err)
			}
			continue
		}
		out = append(out, result)
	}
	return out
}

func (s *AnalysisService) workers() int {
	if s.cfg.Workers > 0 {
		return s.cfg.Workers
	}
	return 4
}
