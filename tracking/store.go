// Package tracking implements the experiment run registry: an SQLite-backed
// store recording run parameters, metrics and artifacts, queryable by run
// identifier. The store has an explicit lifecycle, opened at stage start and
// closed at stage end, and is passed around as a handle; there is no global
// session state.
package tracking

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/obesitylab/obego/pkg/errors"
	"github.com/obesitylab/obego/pkg/log"
)

// Run statuses.
const (
	StatusRunning  = "RUNNING"
	StatusFinished = "FINISHED"
	StatusFailed   = "FAILED"
)

// Artifact kinds recorded by the experiment stage.
const (
	KindConfusionMatrix      = "confusion_matrix"
	KindClassificationReport = "classification_report"
	KindModel                = "model"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	status     TEXT NOT NULL,
	start_time INTEGER NOT NULL,
	end_time   INTEGER
);
CREATE TABLE IF NOT EXISTS params (
	run_id TEXT NOT NULL REFERENCES runs(id),
	key    TEXT NOT NULL,
	value  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS metrics (
	run_id TEXT NOT NULL REFERENCES runs(id),
	key    TEXT NOT NULL,
	value  REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS artifacts (
	run_id TEXT NOT NULL REFERENCES runs(id),
	name   TEXT NOT NULL,
	kind   TEXT NOT NULL,
	path   TEXT NOT NULL
);`

// Store is an open run registry. All methods are safe for sequential use;
// the workflow is single-threaded by design.
type Store struct {
	db           *sql.DB
	artifactRoot string
	logger       zerolog.Logger
}

// Artifact references one stored artifact file.
type Artifact struct {
	Name string
	Kind string
	Path string
}

// RunInfo is the queryable state of one run.
type RunInfo struct {
	ID        string
	Name      string
	Status    string
	StartTime time.Time
	EndTime   time.Time
	Params    map[string]string
	Metrics   map[string]float64
	Artifacts []Artifact
}

// Duration returns the wall-clock run time, zero while the run is still
// running.
func (r *RunInfo) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// Open opens (creating if necessary) the registry database at dbPath and
// uses artifactRoot as the directory artifact contents are written to.
func Open(ctx context.Context, dbPath, artifactRoot string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating tracking directory for %s", dbPath)
	}
	if err := os.MkdirAll(artifactRoot, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating artifact root %s", artifactRoot)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening tracking store %s", dbPath)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating tracking schema")
	}

	logger := log.Component("tracking")
	logger.Debug().Str("db", dbPath).Str("artifact_root", artifactRoot).Msg("tracking store opened")

	return &Store{db: db, artifactRoot: artifactRoot, logger: logger}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return errors.ErrStoreClosed
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) ready() error {
	if s.db == nil {
		return errors.ErrStoreClosed
	}
	return nil
}

// StartRun registers a new run and returns its identifier.
func (s *Store) StartRun(ctx context.Context, name string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, name, status, start_time) VALUES (?, ?, ?, ?)`,
		id, name, StatusRunning, time.Now().UnixMilli())
	if err != nil {
		return "", errors.Wrapf(err, "starting run %q", name)
	}
	s.logger.Info().Str("run_id", id).Str("run_name", name).Msg("run started")
	return id, nil
}

// LogParam records one hyperparameter of a run.
func (s *Store) LogParam(ctx context.Context, runID, key, value string) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO params (run_id, key, value) VALUES (?, ?, ?)`, runID, key, value)
	return errors.Wrapf(err, "logging param %s", key)
}

// LogMetric records one scalar metric of a run.
func (s *Store) LogMetric(ctx context.Context, runID, key string, value float64) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO metrics (run_id, key, value) VALUES (?, ?, ?)`, runID, key, value)
	return errors.Wrapf(err, "logging metric %s", key)
}

// LogArtifact writes content under the artifact root and records it against
// the run. It is the single recording path for every artifact kind. The
// written file path is returned.
func (s *Store) LogArtifact(ctx context.Context, runID, name, kind string, content []byte) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	path := filepath.Join(s.artifactRoot, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", errors.Wrapf(err, "writing artifact %s", name)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artifacts (run_id, name, kind, path) VALUES (?, ?, ?, ?)`,
		runID, name, kind, path)
	if err != nil {
		return "", errors.Wrapf(err, "recording artifact %s", name)
	}
	s.logger.Debug().Str("run_id", runID).Str("artifact", name).Str("kind", kind).Msg("artifact recorded")
	return path, nil
}

// EndRun closes a run with the given status.
func (s *Store) EndRun(ctx context.Context, runID, status string) error {
	if err := s.ready(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, end_time = ? WHERE id = ?`,
		status, time.Now().UnixMilli(), runID)
	if err != nil {
		return errors.Wrapf(err, "ending run %s", runID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Newf("ending run %s: no such run", runID)
	}
	s.logger.Info().Str("run_id", runID).Str("status", status).Msg("run ended")
	return nil
}

// GetRun loads the full state of one run.
func (s *Store) GetRun(ctx context.Context, runID string) (*RunInfo, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	info := &RunInfo{ID: runID, Params: map[string]string{}, Metrics: map[string]float64{}}
	var start int64
	var end sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT name, status, start_time, end_time FROM runs WHERE id = ?`, runID).
		Scan(&info.Name, &info.Status, &start, &end)
	if err == sql.ErrNoRows {
		return nil, errors.Newf("run %s not found", runID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading run %s", runID)
	}
	info.StartTime = time.UnixMilli(start)
	if end.Valid {
		info.EndTime = time.UnixMilli(end.Int64)
	}

	if err := s.loadKV(ctx, runID, info); err != nil {
		return nil, err
	}
	return info, nil
}

func (s *Store) loadKV(ctx context.Context, runID string, info *RunInfo) error {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM params WHERE run_id = ?`, runID)
	if err != nil {
		return errors.Wrapf(err, "loading params of %s", runID)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return errors.WithStack(err)
		}
		info.Params[k] = v
	}
	if err := rows.Err(); err != nil {
		return errors.WithStack(err)
	}

	mrows, err := s.db.QueryContext(ctx, `SELECT key, value FROM metrics WHERE run_id = ?`, runID)
	if err != nil {
		return errors.Wrapf(err, "loading metrics of %s", runID)
	}
	defer mrows.Close()
	for mrows.Next() {
		var k string
		var v float64
		if err := mrows.Scan(&k, &v); err != nil {
			return errors.WithStack(err)
		}
		info.Metrics[k] = v
	}
	if err := mrows.Err(); err != nil {
		return errors.WithStack(err)
	}

	arows, err := s.db.QueryContext(ctx, `SELECT name, kind, path FROM artifacts WHERE run_id = ?`, runID)
	if err != nil {
		return errors.Wrapf(err, "loading artifacts of %s", runID)
	}
	defer arows.Close()
	for arows.Next() {
		var a Artifact
		if err := arows.Scan(&a.Name, &a.Kind, &a.Path); err != nil {
			return errors.WithStack(err)
		}
		info.Artifacts = append(info.Artifacts, a)
	}
	return errors.WithStack(arows.Err())
}

// ListRuns returns every run ordered by start time.
func (s *Store) ListRuns(ctx context.Context) ([]*RunInfo, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs ORDER BY start_time, id`)
	if err != nil {
		return nil, errors.Wrap(err, "listing runs")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.WithStack(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	infos := make([]*RunInfo, 0, len(ids))
	for _, id := range ids {
		info, err := s.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// ArtifactRoot returns the directory artifacts are written to.
func (s *Store) ArtifactRoot() string {
	return s.artifactRoot
}
