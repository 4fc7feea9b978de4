package jobstore_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jhkim09/insuuniverse/internal/config"
	"github.com/jhkim09/insuuniverse/internal/jobstore"
)

func openSQLite(t *testing.T) jobstore.Store {
	t.Helper()
	store, err := jobstore.Open(config.JobStore{
		Path:             filepath.Join(t.TempDir(), "jobs.db"),
		RetentionMinutes: 30,
	})
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func stores(t *testing.T) map[string]jobstore.Store {
	t.Helper()
	return map[string]jobstore.Store{
		"sqlite": openSQLite(t),
		"memory": jobstore.NewMemory(30 * time.Minute),
	}
}

func TestCreateAndGet(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			created, err := store.Create(ctx, "김지훈", "010-2022-1053")
			if err != nil {
				t.Fatalf("Create returned error: %v", err)
			}
			if created.ID == "" {
				t.Fatal("expected generated job id")
			}
			if created.Status != jobstore.StatusPending {
				t.Errorf("status = %s, want pending", created.Status)
			}
			if created.ExpiresAt.Before(created.CreatedAt) {
				t.Error("expiry must be after creation")
			}

			fetched, err := store.Get(ctx, created.ID)
			if err != nil {
				t.Fatalf("Get returned error: %v", err)
			}
			if fetched.CustomerName != "김지훈" || fetched.CustomerPhone != "010-2022-1053" {
				t.Errorf("customer fields lost: %+v", fetched)
			}
		})
	}
}

func TestGetMissingJob(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(context.Background(), "no-such-job")
			if !errors.Is(err, jobstore.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestApplyUpdatesLifecycleFields(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			created, err := store.Create(ctx, "김지훈", "")
			if err != nil {
				t.Fatalf("Create returned error: %v", err)
			}

			updated, err := store.Apply(ctx, created.ID, jobstore.Update{
				Status:      jobstore.StatusPtr(jobstore.StatusRunning),
				AnalysisID:  jobstore.Int64Ptr(4521),
				RecordCount: jobstore.IntPtr(12),
			})
			if err != nil {
				t.Fatalf("Apply returned error: %v", err)
			}
			if updated.Status != jobstore.StatusRunning {
				t.Errorf("status = %s", updated.Status)
			}
			if updated.AnalysisID != 4521 || updated.RecordCount != 12 {
				t.Errorf("fields not applied: %+v", updated)
			}

			failed, err := store.Apply(ctx, created.ID, jobstore.Update{
				Status:       jobstore.StatusPtr(jobstore.StatusFailed),
				ErrorMessage: jobstore.StringPtr("signin rejected"),
			})
			if err != nil {
				t.Fatalf("Apply returned error: %v", err)
			}
			if failed.ErrorMessage != "signin rejected" {
				t.Errorf("error message = %q", failed.ErrorMessage)
			}
			if failed.AnalysisID != 4521 {
				t.Error("untouched fields must survive partial updates")
			}

			if _, err := store.Apply(ctx, "no-such-job", jobstore.Update{}); !errors.Is(err, jobstore.ErrNotFound) {
				t.Errorf("expected ErrNotFound for missing job, got %v", err)
			}
		})
	}
}

func TestListNewestFirst(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first, err := store.Create(ctx, "고객1", "")
			if err != nil {
				t.Fatalf("Create returned error: %v", err)
			}
			time.Sleep(5 * time.Millisecond)
			second, err := store.Create(ctx, "고객2", "")
			if err != nil {
				t.Fatalf("Create returned error: %v", err)
			}

			jobs, err := store.List(ctx)
			if err != nil {
				t.Fatalf("List returned error: %v", err)
			}
			if len(jobs) != 2 {
				t.Fatalf("expected 2 jobs, got %d", len(jobs))
			}
			if jobs[0].ID != second.ID || jobs[1].ID != first.ID {
				t.Errorf("expected newest first, got %s then %s", jobs[0].ID, jobs[1].ID)
			}
		})
	}
}

func TestExpireRemovesOldJobs(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			created, err := store.Create(ctx, "김지훈", "")
			if err != nil {
				t.Fatalf("Create returned error: %v", err)
			}

			removed, err := store.Expire(ctx, time.Now())
			if err != nil {
				t.Fatalf("Expire returned error: %v", err)
			}
			if removed != 0 {
				t.Errorf("fresh job should survive, removed %d", removed)
			}

			removed, err = store.Expire(ctx, time.Now().Add(24*time.Hour))
			if err != nil {
				t.Fatalf("Expire returned error: %v", err)
			}
			if removed != 1 {
				t.Errorf("expected 1 expired job, removed %d", removed)
			}
			if _, err := store.Get(ctx, created.ID); !errors.Is(err, jobstore.ErrNotFound) {
				t.Errorf("expired job should be gone, got %v", err)
			}
		})
	}
}
