package joblog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed job ledger. One store owns the ledger file
// exclusively for its lifetime; concurrent processes fail fast at Open
// instead of corrupting each other's batch state.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the ledger under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, "jobs.lock"))
	held, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire ledger lock: %w", err)
	}
	if !held {
		return nil, errors.New("another sc2dataset process holds the ledger")
	}

	dbPath := filepath.Join(dir, "jobs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open ledger db: %w", err)
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

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close releases the database and the ledger lock.
func (s *Store) Close() error {
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

// Path returns the ledger database location.
func (s *Store) Path() string { return s.path }

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

const jobColumns = `id, job_id, source_path, status, row_count, column_count,
	duration_seconds, output_path, error_message, retryable, created_at, updated_at`

// Add records a new pending job for a recording and returns it. The same
// source may be added again; each submission is its own ledger entry.
func (s *Store) Add(ctx context.Context, source string) (*Job, error) {
	now := time.Now().UTC()
	job := &Job{
		JobID:     uuid.NewString(),
		Source:    source,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := s.execWithRetry(ctx,
		`INSERT INTO jobs (job_id, source_path, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		job.JobID, job.Source, string(job.Status), formatTime(now), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	job.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read job id: %w", err)
	}
	return job, nil
}

// GetByJobID fetches one ledger entry.
func (s *Store) GetByJobID(ctx context.Context, jobID string) (*Job, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT "+jobColumns+" FROM jobs WHERE job_id = ?", jobID)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return job, err
}

// List returns ledger entries in insertion order, optionally filtered by
// status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	query := "SELECT " + jobColumns + " FROM jobs"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// MarkRunning transitions a job to running.
func (s *Store) MarkRunning(ctx context.Context, jobID string) error {
	return s.setStatus(ctx, jobID, StatusRunning,
		"UPDATE jobs SET status = ?, updated_at = ? WHERE job_id = ?")
}

// MarkCompleted records a successful extraction.
func (s *Store) MarkCompleted(ctx context.Context, jobID string, rows, columns int64, duration time.Duration, outputPath string) error {
	_, err := s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, row_count = ?, column_count = ?, duration_seconds = ?,
		 output_path = ?, error_message = '', updated_at = ? WHERE job_id = ?`,
		string(StatusCompleted), rows, columns, duration.Seconds(),
		outputPath, formatTime(time.Now().UTC()), jobID)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

// MarkFailed records a failure and whether a retry could succeed.
func (s *Store) MarkFailed(ctx context.Context, jobID, message string, retryable bool) error {
	_, err := s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, error_message = ?, retryable = ?, updated_at = ?
		 WHERE job_id = ?`,
		string(StatusFailed), message, boolInt(retryable), formatTime(time.Now().UTC()), jobID)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// RetryFailed resets retryable failed jobs to pending and returns them.
// With job IDs given only that subset is reset; otherwise every retryable
// failure is. Non-retryable failures stay failed; re-running a bad
// configuration just fails the same way again.
func (s *Store) RetryFailed(ctx context.Context, jobIDs ...string) ([]*Job, error) {
	query := `UPDATE jobs SET status = ?, error_message = '', updated_at = ?
		 WHERE status = ? AND retryable = 1`
	args := []any{string(StatusPending), formatTime(time.Now().UTC()), string(StatusFailed)}
	if len(jobIDs) > 0 {
		placeholders := make([]string, len(jobIDs))
		for i, id := range jobIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		query += " AND job_id IN (" + strings.Join(placeholders, ", ") + ")"
	}
	_, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("retry failed jobs: %w", err)
	}
	return s.List(ctx, StatusPending)
}

// Clear removes terminal entries, or everything when no statuses are given.
func (s *Store) Clear(ctx context.Context, statuses ...Status) (int64, error) {
	query := "DELETE FROM jobs"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns job counts per status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		"SELECT status, COUNT(1) FROM jobs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int, len(allStatuses))
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[Status(status)] = count
	}
	return stats, rows.Err()
}

// Health verifies the ledger file is reachable and writable.
func (s *Store) Health(ctx context.Context) error {
	var one int
	if err := s.db.QueryRowContext(ensureContext(ctx), "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("ledger unreachable: %w", err)
	}
	return nil
}

func (s *Store) setStatus(ctx context.Context, jobID string, status Status, query string) error {
	_, err := s.execWithRetry(ctx, query, string(status), formatTime(time.Now().UTC()), jobID)
	if err != nil {
		return fmt.Errorf("set status %s: %w", status, err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanJob(row scannable) (*Job, error) {
	var (
		job        Job
		status     string
		retryable  int
		createdRaw string
		updatedRaw string
	)
	err := row.Scan(&job.ID, &job.JobID, &job.Source, &status, &job.RowCount,
		&job.ColumnCount, &job.DurationSeconds, &job.OutputPath,
		&job.ErrorMessage, &retryable, &createdRaw, &updatedRaw)
	if err != nil {
		return nil, err
	}
	job.Status = Status(status)
	job.Retryable = retryable != 0
	job.CreatedAt = parseTime(createdRaw)
	job.UpdatedAt = parseTime(updatedRaw)
	return &job, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
