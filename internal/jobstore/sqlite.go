package jobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jhkim09/insuuniverse/internal/config"
)

const schemaVersion = 1

const schemaSQL = `
CREATE TABLE schema_version (version INTEGER NOT NULL);
CREATE TABLE jobs (
    id TEXT PRIMARY KEY,
    customer_name TEXT NOT NULL,
    customer_phone TEXT,
    analysis_id INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    error_message TEXT,
    record_count INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    expires_at TEXT NOT NULL
);
CREATE INDEX idx_jobs_created_at ON jobs (created_at DESC);
CREATE INDEX idx_jobs_expires_at ON jobs (expires_at);
`

// ErrSchemaMismatch indicates the job database was created by an
// incompatible version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// SQLite is the durable Store backed by a SQLite database. A file lock
// next to the database guards against two collector processes sharing it.
type SQLite struct {
	db        *sql.DB
	path      string
	lock      *flock.Flock
	retention time.Duration
}

var _ Store = (*SQLite)(nil)

// Open connects to the job database, applies the schema, and takes the
// instance lock.
func Open(cfg config.JobStore) (*SQLite, error) {
	path, err := config.ExpandPath(cfg.Path)
	if err != nil {
		return nil, err
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire job store lock: %w", err)
	}
	if !locked {
		return nil, errors.New("job store is in use by another collector instance")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	retention := time.Duration(cfg.RetentionMinutes) * time.Minute
	if retention <= 0 {
		retention = 30 * time.Minute
	}

	store := &SQLite{db: db, path: path, lock: lock, retention: retention}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

func (s *SQLite) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// Path returns the database file location.
func (s *SQLite) Path() string {
	return s.path
}

// Close closes the database and releases the instance lock.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

const jobColumns = "id, customer_name, customer_phone, analysis_id, status, error_message, record_count, created_at, updated_at, expires_at"

func (s *SQLite) Create(ctx context.Context, customerName, customerPhone string) (*Job, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	id := uuid.NewString()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (
            id, customer_name, customer_phone, status, created_at, updated_at, expires_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		customerName,
		nullableString(customerPhone),
		StatusPending,
		timestamp,
		timestamp,
		now.Add(s.retention).Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *SQLite) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

func (s *SQLite) Apply(ctx context.Context, id string, update Update) (*Job, error) {
	setClauses := "updated_at = ?"
	args := []any{time.Now().UTC().Format(time.RFC3339Nano)}
	if update.Status != nil {
		setClauses += ", status = ?"
		args = append(args, string(*update.Status))
	}
	if update.ErrorMessage != nil {
		setClauses += ", error_message = ?"
		args = append(args, nullableString(*update.ErrorMessage))
	}
	if update.AnalysisID != nil {
		setClauses += ", analysis_id = ?"
		args = append(args, *update.AnalysisID)
	}
	if update.RecordCount != nil {
		setClauses += ", record_count = ?"
		args = append(args, *update.RecordCount)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, "UPDATE jobs SET "+setClauses+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *SQLite) List(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+jobColumns+" FROM jobs ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

func (s *SQLite) Expire(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM jobs WHERE expires_at < ?",
		now.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("expire jobs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id            string
		customerName  string
		customerPhone sql.NullString
		analysisID    int64
		statusStr     string
		errorMessage  sql.NullString
		recordCount   int
		createdRaw    string
		updatedRaw    string
		expiresRaw    string
	)
	if err := scanner.Scan(
		&id,
		&customerName,
		&customerPhone,
		&analysisID,
		&statusStr,
		&errorMessage,
		&recordCount,
		&createdRaw,
		&updatedRaw,
		&expiresRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:            id,
		CustomerName:  customerName,
		CustomerPhone: customerPhone.String,
		AnalysisID:    analysisID,
		Status:        Status(statusStr),
		ErrorMessage:  errorMessage.String,
		RecordCount:   recordCount,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		job.UpdatedAt = updated
	}
	if expires, err := parseTimeString(expiresRaw); err == nil {
		job.ExpiresAt = expires
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
