// Package postgres persists analysis runs for later retrieval by the
// report server.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/orestischaral/water-temp-analysis/domain/core"
	"github.com/orestischaral/water-temp-analysis/domain/run"
	"github.com/orestischaral/water-temp-analysis/domain/spike"
	"github.com/orestischaral/water-temp-analysis/internal/errors"
	"github.com/orestischaral/water-temp-analysis/ports"
)

// ResultRepositoryImpl implements ResultRepository for PostgreSQL.
// The full run is stored as a JSON payload; spike rows are duplicated
// into their own table so they can be queried without unpacking runs.
type ResultRepositoryImpl struct {
	db *sqlx.DB
}

// NewResultRepository creates a new PostgreSQL result repository
func NewResultRepository(db *sqlx.DB) ports.ResultRepository {
	return &ResultRepositoryImpl{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id TEXT PRIMARY KEY,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	filter_mode TEXT NOT NULL,
	payload JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS detected_spikes (
	run_id TEXT NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
	location TEXT NOT NULL,
	direction TEXT NOT NULL,
	spike_index INT NOT NULL,
	start_time TIMESTAMPTZ NOT NULL,
	end_time TIMESTAMPTZ NOT NULL,
	base_value DOUBLE PRECISION NOT NULL,
	amplitude DOUBLE PRECISION NOT NULL,
	num_points INT NOT NULL,
	PRIMARY KEY (run_id, location, direction, spike_index)
);
`

// EnsureSchema creates the result tables if they do not exist.
func (r *ResultRepositoryImpl) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to create result schema")
	}
	return nil
}

// SaveRun stores a completed run and its spike rows in one transaction.
func (r *ResultRepositoryImpl) SaveRun(ctx context.Context, rn *run.Run) error {
	payload, err := json.Marshal(rn)
	if err != nil {
		return errors.Wrap(err, "failed to encode run payload")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO analysis_runs (id, started_at, finished_at, filter_mode, payload)
		VALUES ($1, $2, $3, $4, $5)
	`, rn.ID.String(), rn.StartedAt, rn.FinishedAt, string(rn.FilterMode), payload)
	if err != nil {
		return errors.Wrap(err, "failed to insert run")
	}

	for _, loc := range rn.Locations {
		if err := insertSpikes(ctx, tx, rn.ID, loc.Location, loc.UpSpikes); err != nil {
			return err
		}
		if err := insertSpikes(ctx, tx, rn.ID, loc.Location, loc.DownSpikes); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit run")
	}
	return nil
}

func insertSpikes(ctx context.Context, tx *sqlx.Tx, runID core.RunID, location string, spikes []spike.Spike) error {
	for i, s := range spikes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO detected_spikes (run_id, location, direction, spike_index, start_time, end_time, base_value, amplitude, num_points)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, runID.String(), location, string(s.Direction), i+1, s.StartTime, s.EndTime, s.BaseValue, s.Amplitude(), s.NumPoints)
		if err != nil {
			return errors.Wrap(err, "failed to insert spike")
		}
	}
	return nil
}

// LatestRun returns the most recently finished run, decoded from its
// JSON payload.
func (r *ResultRepositoryImpl) LatestRun(ctx context.Context) (*run.Run, error) {
	var payload []byte
	err := r.db.GetContext(ctx, &payload, `
		SELECT payload
		FROM analysis_runs
		ORDER BY finished_at DESC
		LIMIT 1
	`)
	if err == sql.ErrNoRows {
		return nil, core.ErrRunNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query latest run")
	}

	var rn run.Run
	if err := json.Unmarshal(payload, &rn); err != nil {
		return nil, errors.Wrap(err, "failed to decode run payload")
	}
	return &rn, nil
}
