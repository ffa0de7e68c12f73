package app

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orestischaral/water-temp-analysis/domain/core"
	"github.com/orestischaral/water-temp-analysis/domain/run"
	"github.com/orestischaral/water-temp-analysis/domain/shipping"
	"github.com/orestischaral/water-temp-analysis/internal/config"
)

type fakeTemps struct {
	locations map[string]core.Series
	err       error
}

func (f *fakeTemps) ReadLocations(ctx context.Context) (map[string]core.Series, error) {
	return f.locations, f.err
}

type fakeShips struct {
	visits []shipping.Visit
	err    error
}

func (f *fakeShips) ReadVisits(ctx context.Context) ([]shipping.Visit, error) {
	return f.visits, f.err
}

type fakeRepo struct {
	mu    sync.Mutex
	saved []*run.Run
}

func (f *fakeRepo) SaveRun(ctx context.Context, r *run.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, r)
	return nil
}

func (f *fakeRepo) LatestRun(ctx context.Context) (*run.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saved) == 0 {
		return nil, core.ErrRunNotFound
	}
	return f.saved[len(f.saved)-1], nil
}

func spikySeries(name string, start time.Time) core.Series {
	// A flat baseline with one clean up-excursion and one down-excursion;
	// the recovery from the dip is gradual so it does not re-trigger.
	values := []float64{15, 15, 15.7, 15.8, 15, 15, 14.3, 14.2, 14.6, 15}
	s := core.Series{Name: name}
	for i, v := range values {
		s.Times = append(s.Times, start.Add(time.Duration(i)*time.Hour))
		s.Values = append(s.Values, v)
	}
	return s
}

func testAnalysisConfig() config.AnalysisConfig {
	cfg := config.DefaultAnalysisConfig()
	cfg.FilterType = "none"
	cfg.Workers = 2
	return cfg
}

func TestAnalysisService_RunEndToEnd(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	temps := &fakeTemps{locations: map[string]core.Series{
		"harbor": spikySeries("harbor", start),
		"bay":    spikySeries("bay", start),
	}}
	ships := &fakeShips{visits: []shipping.Visit{
		{Ship: "MV Aurora", ETA: start.Add(time.Hour), ETD: start.Add(4 * time.Hour)},
	}}
	repo := &fakeRepo{}

	service := NewAnalysisService(temps, ships, repo, testAnalysisConfig(), nil)
	rn, err := service.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, rn.ID.IsEmpty())
	assert.False(t, rn.FinishedAt.Before(rn.StartedAt))
	require.Len(t, rn.Locations, 2)

	// Locations come back in deterministic (sorted) order.
	assert.Equal(t, "bay", rn.Locations[0].Location)
	assert.Equal(t, "harbor", rn.Locations[1].Location)

	harbor := rn.Location("harbor")
	require.NotNil(t, harbor)
	assert.Empty(t, harbor.Error)
	assert.Len(t, harbor.UpSpikes, 1)
	assert.Len(t, harbor.DownSpikes, 1)
	require.Len(t, harbor.UpRelations, 1)
	assert.Contains(t, harbor.UpRelations[0].Ships, "MV Aurora")
	require.NotNil(t, harbor.UpSpikes[0].Inner)
	require.NotNil(t, harbor.CrossCorrelation)
	assert.LessOrEqual(t, math.Abs(harbor.CrossCorrelation.MaxCorrelation), 1.0)

	// The run was persisted.
	require.Len(t, repo.saved, 1)
	assert.Equal(t, rn.ID, repo.saved[0].ID)
}

func TestAnalysisService_NoShipsLeavesCorrelationNil(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	temps := &fakeTemps{locations: map[string]core.Series{
		"harbor": spikySeries("harbor", start),
	}}

	service := NewAnalysisService(temps, &fakeShips{}, nil, testAnalysisConfig(), nil)
	rn, err := service.Run(context.Background())
	require.NoError(t, err)

	harbor := rn.Location("harbor")
	require.NotNil(t, harbor)
	// Absent ship data is not a location failure.
	assert.Empty(t, harbor.Error)
	assert.Nil(t, harbor.CrossCorrelation)
	assert.NotEmpty(t, harbor.UpSpikes)
}

func TestAnalysisService_InvalidFilterModeAbortsRun(t *testing.T) {
	cfg := testAnalysisConfig()
	cfg.FilterType = "fortnightly"

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	temps := &fakeTemps{locations: map[string]core.Series{
		"harbor": spikySeries("harbor", start),
	}}

	service := NewAnalysisService(temps, &fakeShips{}, nil, cfg, nil)
	_, err := service.Run(context.Background())
	assert.Error(t, err)
}

func TestAnalysisService_IngestionFailureAbortsRun(t *testing.T) {
	temps := &fakeTemps{err: errors.New("workbook corrupted")}
	service := NewAnalysisService(temps, &fakeShips{}, nil, testAnalysisConfig(), nil)

	_, err := service.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workbook corrupted")
}

func TestAnalysisService_StratificationPairs(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	surface := spikySeries("surface", start)
	bottom := spikySeries("bottom", start)
	for i := range bottom.Values {
		bottom.Values[i] -= 2
	}

	cfg := testAnalysisConfig()
	cfg.StratificationPairs = [][2]string{
		{"surface", "bottom"},
		{"surface", "missing"},
	}

	temps := &fakeTemps{locations: map[string]core.Series{
		"surface": surface,
		"bottom":  bottom,
	}}

	service := NewAnalysisService(temps, &fakeShips{}, nil, cfg, nil)
	rn, err := service.Run(context.Background())
	require.NoError(t, err)

	// The pair with an unknown location is skipped, not fatal.
	require.Len(t, rn.Stratification, 1)
	st := rn.Stratification[0]
	assert.Equal(t, "surface", st.Loc1Name)
	assert.InDelta(t, 2.0, st.MeanDiff, 1e-9)
	assert.Equal(t, 10, st.CommonPoints)
}

func TestAnalysisService_EmptyIngestion(t *testing.T) {
	service := NewAnalysisService(&fakeTemps{locations: map[string]core.Series{}}, &fakeShips{}, nil, testAnalysisConfig(), nil)
	_, err := service.Run(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsAbsent(err))
}

func TestRenderReport_ContainsRunSections(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	temps := &fakeTemps{locations: map[string]core.Series{
		"harbor": spikySeries("harbor", start),
	}}
	ships := &fakeShips{visits: []shipping.Visit{
		{Ship: "MV Aurora", ETA: start.Add(time.Hour), ETD: start.Add(4 * time.Hour)},
	}}

	service := NewAnalysisService(temps, ships, nil, testAnalysisConfig(), nil)
	rn, err := service.Run(context.Background())
	require.NoError(t, err)

	report := RenderReport(rn)
	assert.True(t, strings.HasPrefix(report, "# Water Temperature Analysis Run"))
	assert.Contains(t, report, "## harbor")
	assert.Contains(t, report, "Up spikes")
	assert.Contains(t, report, "Down spikes")
	assert.Contains(t, report, "MV Aurora")
}
