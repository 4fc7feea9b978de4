package jobstore

import (
	"context"
	"errors"
	"time"
)

// Status describes where a job is in its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ErrNotFound indicates the requested job does not exist or has expired.
var ErrNotFound = errors.New("job not found")

// Job is one tracked collection run.
type Job struct {
	ID            string
	CustomerName  string
	CustomerPhone string
	AnalysisID    int64
	Status        Status
	ErrorMessage  string
	RecordCount   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ExpiresAt     time.Time
}

// Update carries the mutable fields of a job. Nil fields are left as-is.
type Update struct {
	Status       *Status
	ErrorMessage *string
	AnalysisID   *int64
	RecordCount  *int
}

// Store persists jobs. Implementations must be safe for concurrent use.
type Store interface {
	// Create registers a new pending job and returns it with its
	// identifier and timestamps filled in.
	Create(ctx context.Context, customerName, customerPhone string) (*Job, error)
	// Get returns a job by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Job, error)
	// Apply updates a job's mutable fields, or returns ErrNotFound.
	Apply(ctx context.Context, id string, update Update) (*Job, error)
	// List returns all unexpired jobs, newest first.
	List(ctx context.Context) ([]*Job, error)
	// Expire removes jobs whose retention window has passed and reports
	// how many were removed.
	Expire(ctx context.Context, now time.Time) (int, error)
	// Close releases the store's resources.
	Close() error
}

// StatusPtr aids building Updates.
func StatusPtr(status Status) *Status { return &status }

// StringPtr aids building Updates.
func StringPtr(value string) *string { return &value }

// Int64Ptr aids building Updates.
func Int64Ptr(value int64) *int64 { return &value }

// IntPtr aids building Updates.
func IntPtr(value int) *int { return &value }
