// Package store implements the repo-local SQLite store backing the release
// run journal and the package index lookup cache. The store is advisory:
// commands treat a missing or stale cache entry as a miss, never as a
// failure.
package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dukaforge/cicd/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// FileName is the database file inside the store directory.
const FileName = "cicd.db"

// Release run statuses.
const (
	RunStarted   = "started"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// now is swappable for tests.
var now = time.Now

// ReleaseRun is one journaled release invocation.
type ReleaseRun struct {
	RunID      string
	Tag        string
	Version    string
	PackageDir string
	Status     string
	FailedStep string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store wraps the SQLite database. Safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	open bool
}

// Open creates the store directory if needed, opens the database and
// applies the schema.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying store schema: %w", err)
	}

	return &Store{db: db, open: true}, nil
}

// Close releases the database. Further calls return ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil
	}
	s.open = false
	return s.db.Close()
}

func (s *Store) checkOpen() error {
	if !s.open {
		return types.ErrStoreClosed
	}
	return nil
}

// BeginRun journals the start of a release run and returns its id.
func (s *Store) BeginRun(tag, version, packageDir string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return "", err
	}

	runID := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO release_runs (run_id, tag, version, package_dir, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, tag, version, packageDir, RunStarted, now().Unix())
	if err != nil {
		return "", fmt.Errorf("journaling run start: %w", err)
	}
	return runID, nil
}

// FinishRun records the outcome of a run. failedStep is empty on success.
func (s *Store) FinishRun(runID, status, failedStep string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	res, err := s.db.Exec(
		`UPDATE release_runs SET status = ?, failed_step = ?, finished_at = ? WHERE run_id = ?`,
		status, failedStep, now().Unix(), runID)
	if err != nil {
		return fmt.Errorf("journaling run finish: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", runID, types.ErrNotFound)
	}
	return nil
}

// Runs returns the most recent release runs, newest first.
func (s *Store) Runs(limit int) ([]ReleaseRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT run_id, tag, version, package_dir, status, failed_step, started_at, finished_at
		 FROM release_runs ORDER BY started_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []ReleaseRun
	for rows.Next() {
		var run ReleaseRun
		var started, finished int64
		if err := rows.Scan(&run.RunID, &run.Tag, &run.Version, &run.PackageDir,
			&run.Status, &run.FailedStep, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.StartedAt = time.Unix(started, 0)
		if finished > 0 {
			run.FinishedAt = time.Unix(finished, 0)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CachedLatest returns the cached latest version for a package, treating
// entries older than ttl as misses. A ttl of zero disables the cache.
func (s *Store) CachedLatest(pkg string, ttl time.Duration) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return "", false, err
	}
	if ttl <= 0 {
		return "", false, nil
	}

	var version string
	var fetchedAt int64
	err := s.db.QueryRow(
		`SELECT latest_version, fetched_at FROM index_cache WHERE package = ?`, pkg).
		Scan(&version, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying index cache: %w", err)
	}

	if now().Sub(time.Unix(fetchedAt, 0)) > ttl {
		return "", false, nil
	}
	return version, true, nil
}

// StoreLatest caches the latest version for a package.
func (s *Store) StoreLatest(pkg, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	_, err := s.db.Exec(
		`INSERT INTO index_cache (package, latest_version, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT (package) DO UPDATE SET latest_version = excluded.latest_version,
		 fetched_at = excluded.fetched_at`,
		pkg, version, now().Unix())
	if err != nil {
		return fmt.Errorf("caching index lookup: %w", err)
	}
	return nil
}
