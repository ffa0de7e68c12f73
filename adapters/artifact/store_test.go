package artifact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orestischaral/water-temp-analysis/domain/core"
	"github.com/orestischaral/water-temp-analysis/domain/run"
	"github.com/orestischaral/water-temp-analysis/domain/spectral"
)

func TestStore_SaveAndLoadLatest(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	first := &run.Run{ID: core.NewRunID(), StartedAt: now, FinishedAt: now, FilterMode: spectral.ModeNone}
	second := &run.Run{ID: core.NewRunID(), StartedAt: now.Add(time.Hour), FinishedAt: now.Add(time.Hour), FilterMode: spectral.ModeBoth}

	require.NoError(t, store.SaveRun(ctx, first))
	require.NoError(t, store.SaveRun(ctx, second))

	latest, err := store.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, spectral.ModeBoth, latest.FilterMode)
}

func TestStore_LatestRunWithoutSaves(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.LatestRun(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrRunNotFound))
}
