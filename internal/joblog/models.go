package joblog

import (
	"strings"
	"time"
)

// Status is the lifecycle of one extraction job in the ledger.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{StatusPending, StatusRunning, StatusCompleted, StatusFailed}

// ParseStatus normalizes a user-supplied status name.
func ParseStatus(raw string) (Status, bool) {
	candidate := Status(strings.ToLower(strings.TrimSpace(raw)))
	for _, status := range allStatuses {
		if candidate == status {
			return status, true
		}
	}
	return "", false
}

// Job is one ledger entry. JobID is stable across retries; the numeric ID is
// the insertion key.
type Job struct {
	ID     int64
	JobID  string
	Source string
	Status Status

	RowCount        int64
	ColumnCount     int64
	DurationSeconds float64
	OutputPath      string

	ErrorMessage string
	Retryable    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Terminal reports whether the job has finished, successfully or not.
func (j *Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}
