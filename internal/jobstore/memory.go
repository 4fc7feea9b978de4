package jobstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Store for tests and single-shot runs.
type Memory struct {
	mu        sync.Mutex
	jobs      map[string]*Job
	retention time.Duration
}

var _ Store = (*Memory)(nil)

// NewMemory creates an in-memory store with the given retention window.
func NewMemory(retention time.Duration) *Memory {
	if retention <= 0 {
		retention = 30 * time.Minute
	}
	return &Memory{jobs: make(map[string]*Job), retention: retention}
}

func (m *Memory) Create(_ context.Context, customerName, customerPhone string) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	job := &Job{
		ID:            uuid.NewString(),
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
		ExpiresAt:     now.Add(m.retention),
	}
	m.jobs[job.ID] = job
	copied := *job
	return &copied, nil
}

func (m *Memory) Get(_ context.Context, id string) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (m *Memory) Apply(_ context.Context, id string, update Update) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if update.Status != nil {
		job.Status = *update.Status
	}
	if update.ErrorMessage != nil {
		job.ErrorMessage = *update.ErrorMessage
	}
	if update.AnalysisID != nil {
		job.AnalysisID = *update.AnalysisID
	}
	if update.RecordCount != nil {
		job.RecordCount = *update.RecordCount
	}
	job.UpdatedAt = time.Now().UTC()
	copied := *job
	return &copied, nil
}

func (m *Memory) List(_ context.Context) ([]*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	jobs := make([]*Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		copied := *job
		jobs = append(jobs, &copied)
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID > jobs[j].ID
		}
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}

func (m *Memory) Expire(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, job := range m.jobs {
		if job.ExpiresAt.Before(now) {
			delete(m.jobs, id)
			removed++
		}
	}
	return removed, nil
}

func (m *Memory) Close() error { return nil }
