// Package artifact persists runs as JSON files on disk, for setups
// without a database.
package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/orestischaral/water-temp-analysis/domain/core"
	"github.com/orestischaral/water-temp-analysis/domain/run"
	"github.com/orestischaral/water-temp-analysis/internal/errors"
)

const latestFile = "latest_run.json"

// Store writes each run to its own file and mirrors the most recent one
// to latest_run.json. It satisfies the same interface as the Postgres
// repository, so the two are interchangeable.
type Store struct {
	dir string
}

// NewStore creates the output directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", dir)
	}
	return &Store{dir: dir}, nil
}

// SaveRun writes the run JSON under its run ID and updates the latest
// pointer file.
func (s *Store) SaveRun(ctx context.Context, rn *run.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rn, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode run")
	}

	path := filepath.Join(s.dir, fmt.Sprintf("run-%s.json", rn.ID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	latest := filepath.Join(s.dir, latestFile)
	if err := os.WriteFile(latest, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", latest)
	}
	return nil
}

// LatestRun reads the latest pointer file.
func (s *Store) LatestRun(ctx context.Context) (*run.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, latestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrRunNotFound
		}
		return nil, errors.Wrap(err, "failed to read latest run artifact")
	}
	var rn run.Run
	if err := json.Unmarshal(data, &rn); err != nil {
		return nil, errors.Wrap(err, "failed to decode latest run artifact")
	}
	return &rn, nil
}
