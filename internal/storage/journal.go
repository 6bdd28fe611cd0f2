// Package storage persists per-build diagnostics in a SQLite journal at
// .stacklens/stacklens.db, so cache behavior and failure modes can be
// inspected across runs.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"stacklens/internal/errors"
	"stacklens/internal/logging"
)

// BuildRecord is one journaled build outcome.
type BuildRecord struct {
	ID             string    `json:"id"`
	RepositoryID   string    `json:"repositoryId"`
	Revision       string    `json:"revision"`
	RequestedFiles int       `json:"requestedFiles"`
	RetrievedFiles int       `json:"retrievedFiles"`
	CacheHits      int       `json:"cacheHits"`
	CacheMisses    int       `json:"cacheMisses"`
	FailureCode    string    `json:"failureCode,omitempty"`
	DurationMs     int64     `json:"durationMs"`
	RecordedAt     time.Time `json:"recordedAt"`
}

// Aggregates summarizes the journal for one repository (or all, when the
// repository filter is empty).
type Aggregates struct {
	Builds        int     `json:"builds"`
	Failures      int     `json:"failures"`
	CacheHitRate  float64 `json:"cacheHitRate"`
	AvgDurationMs float64 `json:"avgDurationMs"`
	AvgRetrieved  float64 `json:"avgRetrieved"`
}

// Journal provides persistence for build diagnostics.
type Journal struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// OpenJournal opens or creates the diagnostics database at
// <dir>/stacklens.db.
func OpenJournal(dir string, logger *logging.Logger) (*Journal, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.New(errors.StorageError, "failed to create storage directory", err)
	}

	dbPath := filepath.Join(dir, "stacklens.db")

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.New(errors.StorageError, "failed to open diagnostics database", err)
	}

	// Set pragmas for performance
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, errors.New(errors.StorageError, "failed to set pragma", err)
		}
	}

	j := &Journal{
		conn:   conn,
		logger: logger,
		dbPath: dbPath,
	}

	if err := j.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, errors.New(errors.StorageError, "failed to initialize journal schema", err)
	}

	return j, nil
}

func (j *Journal) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS build_metrics (
			id TEXT PRIMARY KEY,
			repository_id TEXT NOT NULL,
			revision TEXT,
			requested_files INTEGER NOT NULL,
			retrieved_files INTEGER NOT NULL,
			cache_hits INTEGER NOT NULL,
			cache_misses INTEGER NOT NULL,
			failure_code TEXT,
			duration_ms INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_build_metrics_repo ON build_metrics(repository_id);
		CREATE INDEX IF NOT EXISTS idx_build_metrics_recorded ON build_metrics(recorded_at);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.conn.Close()
}

// RecordBuild journals one build outcome and returns the record ID.
func (j *Journal) RecordBuild(rec BuildRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}

	_, err := j.conn.Exec(`
		INSERT INTO build_metrics (
			id, repository_id, revision, requested_files, retrieved_files,
			cache_hits, cache_misses, failure_code, duration_ms, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.RepositoryID, rec.Revision, rec.RequestedFiles, rec.RetrievedFiles,
		rec.CacheHits, rec.CacheMisses, rec.FailureCode, rec.DurationMs,
		rec.RecordedAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", errors.New(errors.StorageError, "failed to record build", err)
	}

	if j.logger != nil {
		j.logger.Debug("Journaled build", map[string]interface{}{
			"id":         rec.ID,
			"repository": rec.RepositoryID,
		})
	}
	return rec.ID, nil
}

// Recent returns the most recent records, newest first.
func (j *Journal) Recent(repositoryID string, limit int) ([]BuildRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, repository_id, revision, requested_files, retrieved_files,
		       cache_hits, cache_misses, COALESCE(failure_code, ''), duration_ms, recorded_at
		FROM build_metrics
	`
	args := []interface{}{}
	if repositoryID != "" {
		query += " WHERE repository_id = ?"
		args = append(args, repositoryID)
	}
	query += " ORDER BY recorded_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := j.conn.Query(query, args...)
	if err != nil {
		return nil, errors.New(errors.StorageError, "failed to query journal", err)
	}
	defer rows.Close()

	var records []BuildRecord
	for rows.Next() {
		var rec BuildRecord
		var recordedAt string
		if err := rows.Scan(
			&rec.ID, &rec.RepositoryID, &rec.Revision,
			&rec.RequestedFiles, &rec.RetrievedFiles,
			&rec.CacheHits, &rec.CacheMisses,
			&rec.FailureCode, &rec.DurationMs, &recordedAt,
		); err != nil {
			return nil, errors.New(errors.StorageError, "failed to scan record", err)
		}
		if t, err := time.Parse(time.RFC3339, recordedAt); err == nil {
			rec.RecordedAt = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Aggregate summarizes journaled builds. The hit rate is computed over the
// summed cache counters; an empty journal yields all zeroes.
func (j *Journal) Aggregate(repositoryID string) (*Aggregates, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN failure_code IS NOT NULL AND failure_code != '' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(cache_hits), 0),
		       COALESCE(SUM(cache_misses), 0),
		       COALESCE(AVG(duration_ms), 0),
		       COALESCE(AVG(retrieved_files), 0)
		FROM build_metrics
	`
	args := []interface{}{}
	if repositoryID != "" {
		query += " WHERE repository_id = ?"
		args = append(args, repositoryID)
	}

	var agg Aggregates
	var hits, misses int64
	err := j.conn.QueryRow(query, args...).Scan(
		&agg.Builds, &agg.Failures, &hits, &misses,
		&agg.AvgDurationMs, &agg.AvgRetrieved,
	)
	if err != nil {
		return nil, errors.New(errors.StorageError, "failed to aggregate journal", err)
	}

	if total := hits + misses; total > 0 {
		agg.CacheHitRate = float64(hits) / float64(total)
	}
	return &agg, nil
}

// CleanupOld deletes records older than the retention window and returns the
// number removed.
func (j *Journal) CleanupOld(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Format(time.RFC3339)

	res, err := j.conn.Exec("DELETE FROM build_metrics WHERE recorded_at < ?", cutoff)
	if err != nil {
		return 0, errors.New(errors.StorageError, "failed to clean up journal", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
